package domain

// Catalog is the 88 IAU constellations with their visible latitude bands.
var Catalog = []StarSystem{
	{Name: "Andromeda", Meaning: "Andromeda", AreaSqDeg: 722.278, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Antlia", Meaning: "Air Pump", AreaSqDeg: 238.901, Quadrant: "SQ2", LatitudeMax: 45, LatitudeMin: 90},
	{Name: "Apus", Meaning: "Bird of Paradise", AreaSqDeg: 206.327, Quadrant: "SQ3", LatitudeMax: 5, LatitudeMin: 90},
	{Name: "Aquarius", Meaning: "Water Bearer", AreaSqDeg: 979.854, Quadrant: "SQ4", LatitudeMax: 65, LatitudeMin: 90},
	{Name: "Aquila", Meaning: "Eagle", AreaSqDeg: 652.473, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 75},
	{Name: "Ara", Meaning: "Altar", AreaSqDeg: 237.057, Quadrant: "SQ3", LatitudeMax: 25, LatitudeMin: 90},
	{Name: "Aries", Meaning: "Ram", AreaSqDeg: 441.395, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 60},
	{Name: "Auriga", Meaning: "Charioteer", AreaSqDeg: 657.438, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Boötes", Meaning: "Herdsman", AreaSqDeg: 906.831, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 50},
	{Name: "Caelum", Meaning: "Chisel", AreaSqDeg: 124.865, Quadrant: "SQ1", LatitudeMax: 40, LatitudeMin: 90},
	{Name: "Camelopardalis", Meaning: "Giraffe", AreaSqDeg: 756.828, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 10},
	{Name: "Cancer", Meaning: "Crab", AreaSqDeg: 505.872, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 60},
	{Name: "Canes Venatici", Meaning: "Hunting Dogs", AreaSqDeg: 465.194, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Canis Major", Meaning: "Greater Dog", AreaSqDeg: 380.118, Quadrant: "SQ2", LatitudeMax: 60, LatitudeMin: 90},
	{Name: "Canis Minor", Meaning: "Lesser Dog", AreaSqDeg: 183.367, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 75},
	{Name: "Capricornus", Meaning: "Sea Goat", AreaSqDeg: 413.947, Quadrant: "SQ4", LatitudeMax: 60, LatitudeMin: 90},
	{Name: "Carina", Meaning: "Keel", AreaSqDeg: 494.184, Quadrant: "SQ2", LatitudeMax: 20, LatitudeMin: 90},
	{Name: "Cassiopeia", Meaning: "Cassiopeia", AreaSqDeg: 598.407, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 20},
	{Name: "Centaurus", Meaning: "Centaur", AreaSqDeg: 1060.422, Quadrant: "SQ3", LatitudeMax: 25, LatitudeMin: 90},
	{Name: "Cepheus", Meaning: "Cepheus", AreaSqDeg: 587.787, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 10},
	{Name: "Cetus", Meaning: "Whale (or Sea Monster)", AreaSqDeg: 1231.411, Quadrant: "SQ1", LatitudeMax: 70, LatitudeMin: 90},
	{Name: "Chamaeleon", Meaning: "Chameleon", AreaSqDeg: 131.592, Quadrant: "SQ2", LatitudeMax: 0, LatitudeMin: 90},
	{Name: "Circinus", Meaning: "Compass (drafting tool)", AreaSqDeg: 93.353, Quadrant: "SQ3", LatitudeMax: 30, LatitudeMin: 90},
	{Name: "Columba", Meaning: "Dove", AreaSqDeg: 270.184, Quadrant: "SQ1", LatitudeMax: 45, LatitudeMin: 90},
	{Name: "Coma Berenices", Meaning: "Berenice's Hair", AreaSqDeg: 386.475, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 70},
	{Name: "Corona Australis", Meaning: "Southern Crown", AreaSqDeg: 127.696, Quadrant: "SQ4", LatitudeMax: 40, LatitudeMin: 90},
	{Name: "Corona Borealis", Meaning: "Northern Crown", AreaSqDeg: 178.710, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 50},
	{Name: "Corvus", Meaning: "Crow", AreaSqDeg: 183.801, Quadrant: "SQ3", LatitudeMax: 60, LatitudeMin: 90},
	{Name: "Crater", Meaning: "Cup", AreaSqDeg: 282.398, Quadrant: "SQ2", LatitudeMax: 65, LatitudeMin: 90},
	{Name: "Crux", Meaning: "Southern Cross", AreaSqDeg: 68.447, Quadrant: "SQ3", LatitudeMax: 20, LatitudeMin: 90},
	{Name: "Cygnus", Meaning: "Swan", AreaSqDeg: 803.983, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Delphinus", Meaning: "Dolphin", AreaSqDeg: 188.549, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 70},
	{Name: "Dorado", Meaning: "Dolphinfish", AreaSqDeg: 179.173, Quadrant: "SQ1", LatitudeMax: 20, LatitudeMin: 90},
	{Name: "Draco", Meaning: "Dragon", AreaSqDeg: 1082.952, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 15},
	{Name: "Equuleus", Meaning: "Little Horse (Foal)", AreaSqDeg: 71.641, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 80},
	{Name: "Eridanus", Meaning: "Eridanus (river)", AreaSqDeg: 1137.919, Quadrant: "SQ1", LatitudeMax: 32, LatitudeMin: 90},
	{Name: "Fornax", Meaning: "Furnace", AreaSqDeg: 397.502, Quadrant: "SQ1", LatitudeMax: 50, LatitudeMin: 90},
	{Name: "Gemini", Meaning: "Twins", AreaSqDeg: 513.761, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 60},
	{Name: "Grus", Meaning: "Crane", AreaSqDeg: 365.513, Quadrant: "SQ4", LatitudeMax: 34, LatitudeMin: 90},
	{Name: "Hercules", Meaning: "Hercules", AreaSqDeg: 1225.148, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 50},
	{Name: "Horologium", Meaning: "Pendulum Clock", AreaSqDeg: 248.885, Quadrant: "SQ1", LatitudeMax: 30, LatitudeMin: 90},
	{Name: "Hydra", Meaning: "Hydra", AreaSqDeg: 1302.844, Quadrant: "SQ2", LatitudeMax: 54, LatitudeMin: 83},
	{Name: "Hydrus", Meaning: "Water Snake", AreaSqDeg: 243.035, Quadrant: "SQ1", LatitudeMax: 8, LatitudeMin: 90},
	{Name: "Indus", Meaning: "Indian", AreaSqDeg: 294.006, Quadrant: "SQ4", LatitudeMax: 15, LatitudeMin: 90},
	{Name: "Lacerta", Meaning: "Lizard", AreaSqDeg: 200.688, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Leo", Meaning: "Lion", AreaSqDeg: 946.964, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 65},
	{Name: "Leo Minor", Meaning: "Lesser Lion", AreaSqDeg: 231.956, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 45},
	{Name: "Lepus", Meaning: "Hare", AreaSqDeg: 290.291, Quadrant: "SQ1", LatitudeMax: 63, LatitudeMin: 90},
	{Name: "Libra", Meaning: "Scales", AreaSqDeg: 538.052, Quadrant: "SQ3", LatitudeMax: 65, LatitudeMin: 90},
	{Name: "Lupus", Meaning: "Wolf", AreaSqDeg: 333.683, Quadrant: "SQ3", LatitudeMax: 35, LatitudeMin: 90},
	{Name: "Lynx", Meaning: "Lynx", AreaSqDeg: 545.386, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 55},
	{Name: "Lyra", Meaning: "Lyre", AreaSqDeg: 286.476, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 40},
	{Name: "Mensa", Meaning: "Table Mountain", AreaSqDeg: 153.484, Quadrant: "SQ1", LatitudeMax: 49, LatitudeMin: 90},
	{Name: "Microscopium", Meaning: "Microscope", AreaSqDeg: 209.513, Quadrant: "SQ4", LatitudeMax: 45, LatitudeMin: 90},
	{Name: "Monoceros", Meaning: "Unicorn", AreaSqDeg: 481.569, Quadrant: "NQ2", LatitudeMax: 75, LatitudeMin: 90},
	{Name: "Musca", Meaning: "Fly", AreaSqDeg: 138.355, Quadrant: "SQ3", LatitudeMax: 10, LatitudeMin: 90},
	{Name: "Norma", Meaning: "Level", AreaSqDeg: 165.290, Quadrant: "SQ3", LatitudeMax: 30, LatitudeMin: 90},
	{Name: "Octans", Meaning: "Octant", AreaSqDeg: 291.045, Quadrant: "SQ4", LatitudeMax: 0, LatitudeMin: 90},
	{Name: "Ophiuchus", Meaning: "Serpent Bearer", AreaSqDeg: 948.340, Quadrant: "SQ3", LatitudeMax: 80, LatitudeMin: 80},
	{Name: "Orion", Meaning: "Orion (the Hunter)", AreaSqDeg: 594.120, Quadrant: "NQ1", LatitudeMax: 85, LatitudeMin: 75},
	{Name: "Pavo", Meaning: "Peacock", AreaSqDeg: 377.666, Quadrant: "SQ4", LatitudeMax: 30, LatitudeMin: 90},
	{Name: "Pegasus", Meaning: "Pegasus", AreaSqDeg: 1120.794, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 60},
	{Name: "Perseus", Meaning: "Perseus", AreaSqDeg: 614.997, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 35},
	{Name: "Phoenix", Meaning: "Phoenix", AreaSqDeg: 469.319, Quadrant: "SQ1", LatitudeMax: 32, LatitudeMin: 80},
	{Name: "Pictor", Meaning: "Easel", AreaSqDeg: 246.739, Quadrant: "SQ1", LatitudeMax: 26, LatitudeMin: 90},
	{Name: "Pisces", Meaning: "Fishes", AreaSqDeg: 889.417, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 65},
	{Name: "Piscis Austrinus", Meaning: "Southern Fish", AreaSqDeg: 245.375, Quadrant: "SQ4", LatitudeMax: 55, LatitudeMin: 90},
	{Name: "Puppis", Meaning: "Stern", AreaSqDeg: 673.434, Quadrant: "SQ2", LatitudeMax: 40, LatitudeMin: 90},
	{Name: "Pyxis", Meaning: "Compass", AreaSqDeg: 220.833, Quadrant: "SQ2", LatitudeMax: 50, LatitudeMin: 90},
	{Name: "Reticulum", Meaning: "Reticle", AreaSqDeg: 113.936, Quadrant: "SQ1", LatitudeMax: 23, LatitudeMin: 90},
	{Name: "Sagitta", Meaning: "Arrow", AreaSqDeg: 79.932, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 70},
	{Name: "Sagittarius", Meaning: "Archer", AreaSqDeg: 867.432, Quadrant: "SQ4", LatitudeMax: 55, LatitudeMin: 90},
	{Name: "Scorpius", Meaning: "Scorpion", AreaSqDeg: 496.783, Quadrant: "SQ3", LatitudeMax: 40, LatitudeMin: 90},
	{Name: "Sculptor", Meaning: "Sculptor", AreaSqDeg: 474.764, Quadrant: "SQ1", LatitudeMax: 50, LatitudeMin: 90},
	{Name: "Scutum", Meaning: "Shield (of Sobieski)", AreaSqDeg: 109.114, Quadrant: "SQ4", LatitudeMax: 80, LatitudeMin: 90},
	{Name: "Serpens", Meaning: "Snake", AreaSqDeg: 636.928, Quadrant: "NQ3", LatitudeMax: 80, LatitudeMin: 80},
	{Name: "Sextans", Meaning: "Sextant", AreaSqDeg: 313.515, Quadrant: "SQ2", LatitudeMax: 80, LatitudeMin: 90},
	{Name: "Taurus", Meaning: "Bull", AreaSqDeg: 797.249, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 65},
	{Name: "Telescopium", Meaning: "Telescope", AreaSqDeg: 251.512, Quadrant: "SQ4", LatitudeMax: 40, LatitudeMin: 90},
	{Name: "Triangulum", Meaning: "Triangle", AreaSqDeg: 131.847, Quadrant: "NQ1", LatitudeMax: 90, LatitudeMin: 60},
	{Name: "Triangulum Australe", Meaning: "Southern Triangle", AreaSqDeg: 109.978, Quadrant: "SQ3", LatitudeMax: 25, LatitudeMin: 90},
	{Name: "Tucana", Meaning: "Toucan", AreaSqDeg: 294.557, Quadrant: "SQ4", LatitudeMax: 25, LatitudeMin: 90},
	{Name: "Ursa Major", Meaning: "Great Bear", AreaSqDeg: 1279.660, Quadrant: "NQ2", LatitudeMax: 90, LatitudeMin: 30},
	{Name: "Ursa Minor", Meaning: "Little Bear", AreaSqDeg: 255.864, Quadrant: "NQ3", LatitudeMax: 90, LatitudeMin: 10},
	{Name: "Vela", Meaning: "Sails", AreaSqDeg: 499.649, Quadrant: "SQ2", LatitudeMax: 30, LatitudeMin: 90},
	{Name: "Virgo", Meaning: "Virgin (Maiden)", AreaSqDeg: 1294.428, Quadrant: "SQ3", LatitudeMax: 80, LatitudeMin: 80},
	{Name: "Volans", Meaning: "Flying Fish", AreaSqDeg: 141.354, Quadrant: "SQ2", LatitudeMax: 15, LatitudeMin: 90},
	{Name: "Vulpecula", Meaning: "Fox", AreaSqDeg: 268.165, Quadrant: "NQ4", LatitudeMax: 90, LatitudeMin: 55},
}
