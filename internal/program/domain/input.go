package domain

import (
	"slices"
	"strings"

	"gemini-observatory/backend/internal/platform/validation"
)

var (
	CalibrationUnits = []string{"Argon", "CuAr", "ThAr", "Xenon"}
	LightTypes       = []string{"CerroPachonSkyEmission", "MaunaKeaSkyEmission"}
	FoldMirrorTypes  = []string{"CASSEGRAIN_FOCUS", "REFLECTIVE_CONVERGING_BEAM"}
	Directions       = []string{"North", "East", "South", "West"}
)

// Input is the instrument configuration supplied when submitting a plan.
type Input struct {
	CalibrationUnit       string   `json:"calibration_unit"`
	LightType             string   `json:"light_type"`
	FoldMirrorType        string   `json:"fold_mirror_type"`
	TelepositionDegree    *float64 `json:"teleposition_degree"`
	TelepositionDirection string   `json:"teleposition_direction"`
}

// Problems returns every missing or invalid field.
func (in *Input) Problems() []string {
	in.CalibrationUnit = strings.TrimSpace(in.CalibrationUnit)
	in.LightType = strings.TrimSpace(in.LightType)
	in.FoldMirrorType = strings.TrimSpace(in.FoldMirrorType)
	in.TelepositionDirection = strings.TrimSpace(in.TelepositionDirection)

	var out []string
	enum := func(field, value, invalid string, allowed []string) {
		switch {
		case value == "":
			out = append(out, validation.Missing(field))
		case !slices.Contains(allowed, value):
			out = append(out, invalid)
		}
	}
	enum("calibration_unit", in.CalibrationUnit, "Invalid calibration unit.", CalibrationUnits)
	enum("light_type", in.LightType, "Invalid light type.", LightTypes)
	enum("fold_mirror_type", in.FoldMirrorType, "Invalid fold mirror type.", FoldMirrorTypes)
	if in.TelepositionDegree == nil {
		out = append(out, validation.Missing("teleposition_degree"))
	} else if d := *in.TelepositionDegree; d < 0 || d > 360 {
		out = append(out, "Teleposition degree must be between 0 and 360.")
	}
	enum("teleposition_direction", in.TelepositionDirection, "Invalid teleposition direction.", Directions)
	return out
}
