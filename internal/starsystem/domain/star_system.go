package domain

import "strings"

// StarSystem is a catalogued constellation that a science plan can target.
// A site at latitude φ can observe it when -LatitudeMin <= φ <= LatitudeMax.
type StarSystem struct {
	ID          int     `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Meaning     string  `db:"meaning" json:"meaning"`
	AreaSqDeg   float64 `db:"area_sq_deg" json:"area_sq_deg"`
	Quadrant    string  `db:"quadrant" json:"quadrant"`
	LatitudeMax int     `db:"latitude_max" json:"latitude_max"`
	LatitudeMin int     `db:"latitude_min" json:"latitude_min"`
}

// VisibleFrom reports whether the constellation rises above the horizon at the given latitude (degrees, north positive).
func (s *StarSystem) VisibleFrom(latitude float64) bool {
	return latitude >= -float64(s.LatitudeMin) && latitude <= float64(s.LatitudeMax)
}

// Hemisphere returns "north" for NQ quadrants and "south" for SQ quadrants.
func (s *StarSystem) Hemisphere() string {
	if strings.HasPrefix(s.Quadrant, "SQ") {
		return "south"
	}
	return "north"
}
