package telescope

import (
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	plandomain "gemini-observatory/backend/internal/plan/domain"
)

//go:embed sites.yaml
var defaultSites []byte

// Site is the operational profile of one telescope.
type Site struct {
	Location           plandomain.TelescopeLocation `yaml:"location" json:"location"`
	Name               string                       `yaml:"name" json:"name"`
	Mountain           string                       `yaml:"mountain" json:"mountain"`
	Latitude           float64                      `yaml:"latitude" json:"latitude"`
	Longitude          float64                      `yaml:"longitude" json:"longitude"`
	MaxExposure        int                          `yaml:"max_exposure" json:"max_exposure"`
	SaturationExposure int                          `yaml:"saturation_exposure" json:"saturation_exposure"`
	AllocationHours    float64                      `yaml:"allocation_hours" json:"allocation_hours"`
	MinFunding         float64                      `yaml:"min_funding" json:"min_funding"`
	RecommendedFunding float64                      `yaml:"recommended_funding" json:"recommended_funding"`
}

type siteFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadSites decodes site profiles from YAML.
func LoadSites(r io.Reader) ([]Site, error) {
	var f siteFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}
	if len(f.Sites) == 0 {
		return nil, errors.New("decode sites: no sites defined")
	}
	seen := make(map[plandomain.TelescopeLocation]bool, len(f.Sites))
	for _, s := range f.Sites {
		if s.Location == "" {
			return nil, errors.New("decode sites: site without location")
		}
		if seen[s.Location] {
			return nil, fmt.Errorf("decode sites: duplicate location %q", s.Location)
		}
		if s.Latitude < -90 || s.Latitude > 90 {
			return nil, fmt.Errorf("decode sites: %s latitude out of range", s.Location)
		}
		seen[s.Location] = true
	}
	return f.Sites, nil
}
