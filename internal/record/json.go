package record

import (
	"encoding/json"
	"sort"
)

// The wire shape is the flat map the original forms produced:
// {"fullName":"ABEBE","skillCooking":true,"photos":{"face":null,...}}.
// Strings and booleans map onto the value union; any other JSON shape for a
// data key is ignored rather than stored untyped.

type photosJSON struct {
	Face     *string `json:"face"`
	Full     *string `json:"full"`
	Passport *string `json:"passport"`
}

// MarshalJSON flattens the record into the wire map.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.values)+1)
	for k, v := range r.values {
		switch v.Kind() {
		case KindFlag:
			out[k] = v.Bool()
		default:
			out[k] = v.String()
		}
	}
	out["photos"] = photosJSON{
		Face:     nullable(r.Photos.Face),
		Full:     nullable(r.Photos.Full),
		Passport: nullable(r.Photos.Passport),
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the wire map. Stored text is taken as-is (it was
// normalized at entry); unknown value shapes are dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.values = make(map[string]Value, len(raw))

	// Deterministic iteration keeps error behavior stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		msg := raw[k]
		if k == "photos" {
			var p photosJSON
			if err := json.Unmarshal(msg, &p); err == nil {
				r.Photos = Photos{Face: deref(p.Face), Full: deref(p.Full), Passport: deref(p.Passport)}
			}
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			r.values[k] = Text(s)
			continue
		}
		var b bool
		if err := json.Unmarshal(msg, &b); err == nil {
			r.values[k] = Flag(b)
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
