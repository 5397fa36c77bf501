// Package domain defines science plans and the validation history recorded against them.
package domain

import (
	"fmt"
	"strings"
	"time"

	"gemini-observatory/backend/internal/platform/validation"
)

// Status is the lifecycle state of a science plan.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusValid     Status = "VALID"
	StatusInvalid   Status = "INVALID"
	StatusSubmitted Status = "SUBMITTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusValid, StatusInvalid, StatusSubmitted:
		return true
	}
	return false
}

// TelescopeLocation names the Gemini site that will observe the plan.
type TelescopeLocation string

const (
	LocationHawaii TelescopeLocation = "Hawaii"
	LocationChile  TelescopeLocation = "Chile"
)

type FileType string

const (
	FilePNG  FileType = "PNG"
	FileJPEG FileType = "JPEG"
	FileRAW  FileType = "RAW"
)

type FileQuality string

const (
	QualityLow  FileQuality = "Low"
	QualityFine FileQuality = "Fine"
)

type ImageMode string

const (
	ImageBW    ImageMode = "B&W"
	ImageColor ImageMode = "Color"
)

const (
	MaxObjectiveLength = 500
	MinImageSetting    = 0
	MaxImageSetting    = 50
)

// SciencePlan is an astronomer's request for a target, instrument settings and schedule.
type SciencePlan struct {
	ID                string            `db:"id" json:"id"`
	OwnerID           string            `db:"owner_id" json:"owner_id"`
	Creator           string            `db:"creator" json:"creator"`
	Submitter         string            `db:"submitter" json:"submitter"`
	Funding           float64           `db:"funding" json:"funding"`
	Objective         string            `db:"objective" json:"objective"`
	StarSystemID      int               `db:"star_system_id" json:"star_system_id"`
	StarSystemName    string            `db:"star_system_name" json:"star_system"`
	ScheduleStart     time.Time         `db:"schedule_start" json:"schedule_start"`
	ScheduleEnd       time.Time         `db:"schedule_end" json:"schedule_end"`
	TelescopeLocation TelescopeLocation `db:"telescope_location" json:"telescope_location"`
	FileType          FileType          `db:"file_type" json:"file_type"`
	FileQuality       FileQuality       `db:"file_quality" json:"file_quality"`
	ImageMode         ImageMode         `db:"image_mode" json:"image_mode"`
	Exposure          int               `db:"exposure" json:"exposure"`
	Contrast          int               `db:"contrast" json:"contrast"`
	Brightness        int               `db:"brightness" json:"brightness"`
	Saturation        int               `db:"saturation" json:"saturation"`
	Status            Status            `db:"status" json:"status"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// Window is the length of the observation schedule.
func (p *SciencePlan) Window() time.Duration {
	return p.ScheduleEnd.Sub(p.ScheduleStart)
}

// Editable reports whether the plan may still be changed or deleted.
func (p *SciencePlan) Editable() bool {
	return p.Status != StatusSubmitted
}

// Problems re-runs field validation on a stored plan.
func (p *SciencePlan) Problems() []string {
	d := Draft{
		Creator:           p.Creator,
		Submitter:         p.Submitter,
		Funding:           &p.Funding,
		Objective:         p.Objective,
		StarSystem:        p.StarSystemName,
		TelescopeLocation: string(p.TelescopeLocation),
		FileType:          string(p.FileType),
		FileQuality:       string(p.FileQuality),
		ImageMode:         string(p.ImageMode),
		Exposure:          &p.Exposure,
		Contrast:          &p.Contrast,
		Brightness:        &p.Brightness,
		Saturation:        &p.Saturation,
	}
	if p.StarSystemID != 0 {
		d.StarSystemID = &p.StarSystemID
	}
	if !p.ScheduleStart.IsZero() {
		d.ScheduleStart = &p.ScheduleStart
	}
	if !p.ScheduleEnd.IsZero() {
		d.ScheduleEnd = &p.ScheduleEnd
	}
	return d.Problems()
}

// Draft is the user-supplied content of a plan. Nil pointers mark fields that were not provided.
type Draft struct {
	Creator           string     `json:"creator"`
	Submitter         string     `json:"submitter"`
	Funding           *float64   `json:"funding"`
	Objective         string     `json:"objective"`
	StarSystem        string     `json:"star_system"`
	StarSystemID      *int       `json:"star_system_id"`
	ScheduleStart     *time.Time `json:"schedule_start"`
	ScheduleEnd       *time.Time `json:"schedule_end"`
	TelescopeLocation string     `json:"telescope_location"`
	FileType          string     `json:"file_type"`
	FileQuality       string     `json:"file_quality"`
	ImageMode         string     `json:"image_mode"`
	Exposure          *int       `json:"exposure"`
	Contrast          *int       `json:"contrast"`
	Brightness        *int       `json:"brightness"`
	Saturation        *int       `json:"saturation"`

	// malformed maps a JSON key to the message for a value of the wrong type.
	malformed map[string]string
}

// Normalize trims surrounding whitespace from text fields.
func (d *Draft) Normalize() {
	for _, s := range []*string{&d.Creator, &d.Submitter, &d.Objective, &d.StarSystem,
		&d.TelescopeLocation, &d.FileType, &d.FileQuality, &d.ImageMode} {
		*s = strings.TrimSpace(*s)
	}
}

// Problems returns every field problem in the draft. Star system existence is checked by the caller.
func (d *Draft) Problems() []string {
	var out []string
	reported := make(map[string]bool)
	for _, f := range draftFields {
		if msg, ok := d.malformed[f.key]; ok && !reported[msg] {
			reported[msg] = true
			out = append(out, msg)
		}
	}
	missing := func(field string, absent bool) {
		if _, bad := d.malformed[field]; absent && !bad {
			out = append(out, validation.Missing(field))
		}
	}
	missing("creator", d.Creator == "")
	missing("submitter", d.Submitter == "")
	missing("funding", d.Funding == nil)
	missing("objective", d.Objective == "")
	missing("star_system", d.StarSystem == "" && d.StarSystemID == nil && d.malformed["star_system_id"] == "")
	missing("schedule_start", d.ScheduleStart == nil)
	missing("schedule_end", d.ScheduleEnd == nil)
	missing("telescope_location", d.TelescopeLocation == "")
	missing("file_type", d.FileType == "")
	missing("file_quality", d.FileQuality == "")
	missing("image_mode", d.ImageMode == "")
	missing("exposure", d.Exposure == nil)
	missing("contrast", d.Contrast == nil)
	missing("brightness", d.Brightness == nil)
	missing("saturation", d.Saturation == nil)

	if len([]rune(d.Objective)) > MaxObjectiveLength {
		out = append(out, fmt.Sprintf("Objective must be <= %d characters.", MaxObjectiveLength))
	}
	if d.Funding != nil && *d.Funding < 0 {
		out = append(out, "Funding must not be negative.")
	}
	if d.TelescopeLocation != "" && !validLocation(TelescopeLocation(d.TelescopeLocation)) {
		out = append(out, "Invalid telescope location.")
	}
	if d.FileType != "" && !validFileType(FileType(d.FileType)) {
		out = append(out, "Invalid file type.")
	}
	if d.FileQuality != "" && !validFileQuality(FileQuality(d.FileQuality)) {
		out = append(out, "Invalid file quality.")
	}
	if d.ImageMode != "" && !validImageMode(ImageMode(d.ImageMode)) {
		out = append(out, "Invalid image mode.")
	}
	if d.ScheduleStart != nil && d.ScheduleEnd != nil && !d.ScheduleStart.Before(*d.ScheduleEnd) {
		out = append(out, "Schedule start must be before schedule end.")
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"Exposure", d.Exposure},
		{"Contrast", d.Contrast},
		{"Brightness", d.Brightness},
		{"Saturation", d.Saturation},
	} {
		if f.v != nil && (*f.v < MinImageSetting || *f.v > MaxImageSetting) {
			out = append(out, fmt.Sprintf("%s must be between %d and %d.", f.name, MinImageSetting, MaxImageSetting))
		}
	}
	return out
}

// Validate returns a *validation.Error listing every problem, or nil.
func (d *Draft) Validate() error {
	return validation.New(d.Problems())
}

// ApplyTo copies the draft onto p. The draft must have passed Validate.
func (d *Draft) ApplyTo(p *SciencePlan) {
	p.Creator = d.Creator
	p.Submitter = d.Submitter
	p.Funding = *d.Funding
	p.Objective = d.Objective
	p.ScheduleStart = d.ScheduleStart.UTC()
	p.ScheduleEnd = d.ScheduleEnd.UTC()
	p.TelescopeLocation = TelescopeLocation(d.TelescopeLocation)
	p.FileType = FileType(d.FileType)
	p.FileQuality = FileQuality(d.FileQuality)
	p.ImageMode = ImageMode(d.ImageMode)
	p.Exposure = *d.Exposure
	p.Contrast = *d.Contrast
	p.Brightness = *d.Brightness
	p.Saturation = *d.Saturation
}

func validLocation(l TelescopeLocation) bool {
	return l == LocationHawaii || l == LocationChile
}

func validFileType(t FileType) bool {
	return t == FilePNG || t == FileJPEG || t == FileRAW
}

func validFileQuality(q FileQuality) bool {
	return q == QualityLow || q == QualityFine
}

func validImageMode(m ImageMode) bool {
	return m == ImageBW || m == ImageColor
}
