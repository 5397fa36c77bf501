package domain

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// draftField decodes one JSON member into the draft, reporting false when the value has the wrong type.
type draftField struct {
	key     string
	message string
	decode  func(d *Draft, raw json.RawMessage) bool
}

func stringField(key, message string, dst func(*Draft) *string) draftField {
	return draftField{key, message, func(d *Draft, raw json.RawMessage) bool {
		return json.Unmarshal(raw, dst(d)) == nil
	}}
}

func intField(key, message string, dst func(*Draft) **int) draftField {
	return draftField{key, message, func(d *Draft, raw json.RawMessage) bool {
		var v *int
		if json.Unmarshal(raw, &v) != nil {
			return false
		}
		*dst(d) = v
		return true
	}}
}

func timeField(key string, dst func(*Draft) **time.Time) draftField {
	return draftField{key, "Invalid schedule format.", func(d *Draft, raw json.RawMessage) bool {
		if bytes.Equal(raw, []byte("null")) {
			return true
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return false
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return false
		}
		*dst(d) = &t
		return true
	}}
}

var draftFields = []draftField{
	stringField("creator", "Creator must be text.", func(d *Draft) *string { return &d.Creator }),
	stringField("submitter", "Submitter must be text.", func(d *Draft) *string { return &d.Submitter }),
	{"funding", "Funding must be a number.", func(d *Draft, raw json.RawMessage) bool {
		var v *float64
		if json.Unmarshal(raw, &v) != nil {
			return false
		}
		d.Funding = v
		return true
	}},
	stringField("objective", "Objective must be text.", func(d *Draft) *string { return &d.Objective }),
	stringField("star_system", "Star system must be text.", func(d *Draft) *string { return &d.StarSystem }),
	intField("star_system_id", "Star system id must be an integer.", func(d *Draft) **int { return &d.StarSystemID }),
	timeField("schedule_start", func(d *Draft) **time.Time { return &d.ScheduleStart }),
	timeField("schedule_end", func(d *Draft) **time.Time { return &d.ScheduleEnd }),
	stringField("telescope_location", "Invalid telescope location.", func(d *Draft) *string { return &d.TelescopeLocation }),
	stringField("file_type", "Invalid file type.", func(d *Draft) *string { return &d.FileType }),
	stringField("file_quality", "Invalid file quality.", func(d *Draft) *string { return &d.FileQuality }),
	stringField("image_mode", "Invalid image mode.", func(d *Draft) *string { return &d.ImageMode }),
	intField("exposure", "Exposure must be an integer.", func(d *Draft) **int { return &d.Exposure }),
	intField("contrast", "Contrast must be an integer.", func(d *Draft) **int { return &d.Contrast }),
	intField("brightness", "Brightness must be an integer.", func(d *Draft) **int { return &d.Brightness }),
	intField("saturation", "Saturation must be an integer.", func(d *Draft) **int { return &d.Saturation }),
}

// UnmarshalJSON decodes a draft field by field. A member with the wrong type
// is left unset and reported by Problems instead of failing the whole body;
// only input that is not a JSON object is an error.
func (d *Draft) UnmarshalJSON(b []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return err
	}
	*d = Draft{}
	for _, f := range draftFields {
		raw, ok := members[f.key]
		if !ok {
			continue
		}
		if !f.decode(d, raw) {
			if d.malformed == nil {
				d.malformed = make(map[string]string)
			}
			d.malformed[f.key] = f.message
		}
	}
	return nil
}
