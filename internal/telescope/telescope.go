// Package telescope is the rule-based virtual telescope that dry-runs and validates science plans.
package telescope

import (
	"bytes"
	"fmt"
	"math"

	plandomain "gemini-observatory/backend/internal/plan/domain"
	stardomain "gemini-observatory/backend/internal/starsystem/domain"
)

const (
	msgSimulationOK  = "Simulation successful. No technical issues detected."
	msgValidationOK  = "Plan meets all validation criteria."
	warnSaturation   = "Warning: High exposure with Color mode may cause sensor saturation."
	warnClarity      = "Warning: Very low brightness and contrast may reduce image clarity."
	warnLowFunding   = "Warning: Funding below recommended operational threshold."
	lowImageSetting  = 5
	maxFramesPerPlan = 24
)

// SimulationReport is the outcome of an astronomer's dry run. It never changes plan status.
type SimulationReport struct {
	Feasible        bool     `json:"feasible"`
	Messages        []string `json:"messages"`
	Warnings        []string `json:"warnings"`
	EstimatedFrames int      `json:"estimated_frames"`
	DurationHours   float64  `json:"duration_hours"`
}

// All returns problems followed by warnings, the form stored in validation history.
func (r SimulationReport) All() []string {
	out := make([]string, 0, len(r.Messages)+len(r.Warnings))
	out = append(out, r.Messages...)
	return append(out, r.Warnings...)
}

// Telescope evaluates plans against the site profiles.
type Telescope struct {
	sites []Site
	byLoc map[plandomain.TelescopeLocation]Site
}

// New returns a telescope configured with the embedded Gemini North and South profiles.
func New() (*Telescope, error) {
	sites, err := LoadSites(bytes.NewReader(defaultSites))
	if err != nil {
		return nil, err
	}
	return NewWithSites(sites), nil
}

// NewWithSites returns a telescope for the given profiles.
func NewWithSites(sites []Site) *Telescope {
	t := &Telescope{sites: sites, byLoc: make(map[plandomain.TelescopeLocation]Site, len(sites))}
	for _, s := range sites {
		t.byLoc[s.Location] = s
	}
	return t
}

// Sites lists the configured sites in file order.
func (t *Telescope) Sites() []Site {
	out := make([]Site, len(t.sites))
	copy(out, t.sites)
	return out
}

// Site returns the profile for a location.
func (t *Telescope) Site(loc plandomain.TelescopeLocation) (Site, bool) {
	s, ok := t.byLoc[loc]
	return s, ok
}

// Simulate dry-runs the plan. Field and visibility problems make it infeasible; warnings do not.
func (t *Telescope) Simulate(p *plandomain.SciencePlan, star *stardomain.StarSystem) SimulationReport {
	r := SimulationReport{Messages: p.Problems()}
	site, ok := t.byLoc[p.TelescopeLocation]
	if ok {
		if msg := visibilityProblem(site, star); msg != "" {
			r.Messages = append(r.Messages, msg)
		}
	}

	satLimit, allocation, recommended := 40, 12.0, 1000.0
	if ok {
		satLimit, allocation, recommended = site.SaturationExposure, site.AllocationHours, site.RecommendedFunding
	}
	if p.Exposure > satLimit && p.ImageMode == plandomain.ImageColor {
		r.Warnings = append(r.Warnings, warnSaturation)
	}
	if p.Brightness < lowImageSetting && p.Contrast < lowImageSetting {
		r.Warnings = append(r.Warnings, warnClarity)
	}
	r.DurationHours = p.Window().Hours()
	if r.DurationHours > allocation {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"Warning: Observation window exceeds %s hours. Telescope allocation may be restricted.", formatHours(allocation)))
	}
	if p.Funding < recommended {
		r.Warnings = append(r.Warnings, warnLowFunding)
	}

	r.Feasible = len(r.Messages) == 0
	if r.Feasible {
		r.EstimatedFrames = EstimateFrames(p)
		if len(r.Warnings) == 0 {
			r.Messages = []string{msgSimulationOK}
		}
	}
	return r
}

// Validate is the science observer's official check. It reports every rejection reason.
func (t *Telescope) Validate(p *plandomain.SciencePlan, star *stardomain.StarSystem) (bool, []string) {
	if problems := p.Problems(); len(problems) > 0 {
		return false, problems
	}
	site, ok := t.byLoc[p.TelescopeLocation]
	if !ok {
		return false, []string{"Invalid telescope location."}
	}
	var reasons []string
	if msg := visibilityProblem(site, star); msg != "" {
		reasons = append(reasons, msg)
	}
	if p.Exposure > site.MaxExposure {
		reasons = append(reasons, fmt.Sprintf("Exposure exceeds maximum allowed operational limit (%d).", site.MaxExposure))
	}
	if p.Funding < site.MinFunding {
		reasons = append(reasons, "Funding below minimum requirement for approval.")
	}
	if len(reasons) > 0 {
		return false, reasons
	}
	return true, []string{msgValidationOK}
}

// EstimateFrames plans one frame per started hour of the schedule window, between 1 and 24.
func EstimateFrames(p *plandomain.SciencePlan) int {
	n := int(math.Ceil(p.Window().Hours()))
	if n < 1 {
		return 1
	}
	if n > maxFramesPerPlan {
		return maxFramesPerPlan
	}
	return n
}

func visibilityProblem(site Site, star *stardomain.StarSystem) string {
	if star == nil || star.VisibleFrom(site.Latitude) {
		return ""
	}
	return fmt.Sprintf("Star system '%s' is not visible from %s (latitude %.2f).", star.Name, site.Mountain, site.Latitude)
}

func formatHours(h float64) string {
	if h == math.Trunc(h) {
		return fmt.Sprintf("%d", int(h))
	}
	return fmt.Sprintf("%.1f", h)
}
