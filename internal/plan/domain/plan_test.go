package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validDraft() Draft {
	start := time.Date(2026, 11, 3, 22, 0, 0, 0, time.UTC)
	return Draft{
		Creator:           "Dr. Vera Rubin",
		Submitter:         "Dr. Vera Rubin",
		Funding:           ptr(2500.0),
		Objective:         "Map dust lanes in the galactic core.",
		StarSystem:        "Sagittarius",
		ScheduleStart:     ptr(start),
		ScheduleEnd:       ptr(start.Add(6 * time.Hour)),
		TelescopeLocation: "Chile",
		FileType:          "RAW",
		FileQuality:       "Fine",
		ImageMode:         "Color",
		Exposure:          ptr(30),
		Contrast:          ptr(10),
		Brightness:        ptr(10),
		Saturation:        ptr(20),
	}
}

func TestDraftValid(t *testing.T) {
	d := validDraft()
	assert.Empty(t, d.Problems())
	assert.NoError(t, d.Validate())
}

func TestDraftMissingFields(t *testing.T) {
	var d Draft
	problems := d.Problems()
	for _, field := range []string{"creator", "submitter", "funding", "objective", "star_system",
		"schedule_start", "schedule_end", "telescope_location", "file_type", "file_quality",
		"image_mode", "exposure", "contrast", "brightness", "saturation"} {
		assert.Contains(t, problems, "Missing required field: "+field)
	}
	assert.Len(t, problems, 15)
	assert.Error(t, d.Validate())
}

func TestDraftStarSystemByID(t *testing.T) {
	d := validDraft()
	d.StarSystem = ""
	d.StarSystemID = ptr(12)
	assert.Empty(t, d.Problems())
}

func TestDraftFieldProblems(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Draft)
		want   string
	}{
		{"long objective", func(d *Draft) { d.Objective = strings.Repeat("x", 501) }, "Objective must be <= 500 characters."},
		{"negative funding", func(d *Draft) { d.Funding = ptr(-1.0) }, "Funding must not be negative."},
		{"bad location", func(d *Draft) { d.TelescopeLocation = "Arizona" }, "Invalid telescope location."},
		{"bad file type", func(d *Draft) { d.FileType = "GIF" }, "Invalid file type."},
		{"bad quality", func(d *Draft) { d.FileQuality = "Ultra" }, "Invalid file quality."},
		{"bad image mode", func(d *Draft) { d.ImageMode = "Infrared" }, "Invalid image mode."},
		{"start equals end", func(d *Draft) { d.ScheduleEnd = ptr(*d.ScheduleStart) }, "Schedule start must be before schedule end."},
		{"start after end", func(d *Draft) { d.ScheduleEnd = ptr(d.ScheduleStart.Add(-time.Hour)) }, "Schedule start must be before schedule end."},
		{"exposure high", func(d *Draft) { d.Exposure = ptr(51) }, "Exposure must be between 0 and 50."},
		{"contrast low", func(d *Draft) { d.Contrast = ptr(-1) }, "Contrast must be between 0 and 50."},
		{"brightness high", func(d *Draft) { d.Brightness = ptr(99) }, "Brightness must be between 0 and 50."},
		{"saturation low", func(d *Draft) { d.Saturation = ptr(-5) }, "Saturation must be between 0 and 50."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			assert.Equal(t, []string{tc.want}, d.Problems())
		})
	}
}

func TestDraftBoundaryValuesAccepted(t *testing.T) {
	d := validDraft()
	d.Exposure, d.Contrast, d.Brightness, d.Saturation = ptr(0), ptr(50), ptr(0), ptr(50)
	d.Objective = strings.Repeat("é", 500)
	d.Funding = ptr(0.0)
	assert.Empty(t, d.Problems())
}

func TestDraftNormalize(t *testing.T) {
	d := validDraft()
	d.Creator = "  Dr. Vera Rubin "
	d.TelescopeLocation = " Chile\n"
	d.Normalize()
	assert.Equal(t, "Dr. Vera Rubin", d.Creator)
	assert.Empty(t, d.Problems())
}

func TestApplyToAndPlanProblems(t *testing.T) {
	d := validDraft()
	var p SciencePlan
	d.ApplyTo(&p)
	p.StarSystemID = 71
	p.StarSystemName = "Sagittarius"

	assert.Equal(t, 6*time.Hour, p.Window())
	assert.Equal(t, ImageColor, p.ImageMode)
	assert.Empty(t, p.Problems())

	p.Exposure = 60
	assert.Equal(t, []string{"Exposure must be between 0 and 50."}, p.Problems())
}

func TestEditable(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusValid, StatusInvalid} {
		assert.True(t, (&SciencePlan{Status: s}).Editable(), s)
	}
	assert.False(t, (&SciencePlan{Status: StatusSubmitted}).Editable())
}

func TestMessagesScan(t *testing.T) {
	var m Messages
	assert.NoError(t, m.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, Messages{"a", "b"}, m)
	assert.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
	assert.Error(t, m.Scan(42))

	v, err := Messages(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestDraftUnmarshalReportsWrongTypes(t *testing.T) {
	body := `{
		"creator": "Dr. Vera Rubin", "submitter": "Dr. Vera Rubin", "funding": 2500,
		"objective": "Map dust lanes.", "star_system": "Sagittarius",
		"schedule_start": "03/11/2026 22:00", "schedule_end": "2026-11-04T02:00:00Z",
		"telescope_location": "Hawaii", "file_type": "PNG", "file_quality": "Fine", "image_mode": "B&W",
		"exposure": "twenty", "contrast": 10.5, "brightness": 10, "saturation": 10
	}`
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	assert.Nil(t, d.ScheduleStart)
	assert.Nil(t, d.Exposure)
	assert.Equal(t, []string{
		"Invalid schedule format.",
		"Exposure must be an integer.",
		"Contrast must be an integer.",
	}, d.Problems())
	require.NotNil(t, d.ScheduleEnd)
	assert.Equal(t, 10, *d.Brightness)
}

func TestDraftUnmarshalKeepsMissingAndRangeProblems(t *testing.T) {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(`{"exposure": true, "contrast": 99, "star_system_id": "x"}`), &d))

	problems := d.Problems()
	assert.Equal(t, "Star system id must be an integer.", problems[0])
	assert.Equal(t, "Exposure must be an integer.", problems[1])
	assert.Contains(t, problems, "Missing required field: creator")
	assert.Contains(t, problems, "Contrast must be between 0 and 50.")
	assert.NotContains(t, problems, "Missing required field: exposure")
	assert.NotContains(t, problems, "Missing required field: star_system")
}

func TestDraftUnmarshalRejectsNonObject(t *testing.T) {
	var d Draft
	assert.Error(t, json.Unmarshal([]byte(`["not", "a", "draft"]`), &d))
}
