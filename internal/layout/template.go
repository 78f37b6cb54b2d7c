package layout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Countries a template can target. Templates are grouped per destination
// country on the generation side.
var Countries = []string{"kuwait", "saudi", "jordan", "oman", "uae", "qatar", "bahrain"}

// IsCountry reports whether c is a known destination country.
func IsCountry(c string) bool {
	for _, known := range Countries {
		if c == known {
			return true
		}
	}
	return false
}

// Template is a named, country-scoped layout: ordered background pages plus
// a set of positioned fields. It is persisted and replaced as a whole
// document (no field-level diffing).
type Template struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OfficeName string    `json:"officeName"`
	Country    string    `json:"country"`
	Pages      []string  `json:"pages"`
	Fields     []Field   `json:"fields"`
	CreatedAt  time.Time `json:"createdAt"`
}

// New creates an empty template with a fresh id.
func New(name, officeName, country string) *Template {
	return &Template{
		ID:         uuid.NewString(),
		Name:       name,
		OfficeName: officeName,
		Country:    country,
		CreatedAt:  time.Now().UTC(),
	}
}

// FieldsOnPage returns the fields placed on the given 1-based page.
func (t *Template) FieldsOnPage(page int) []Field {
	var out []Field
	for _, f := range t.Fields {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// FieldByID returns a pointer into Fields, or nil.
func (t *Template) FieldByID(id string) *Field {
	for i := range t.Fields {
		if t.Fields[i].ID == id {
			return &t.Fields[i]
		}
	}
	return nil
}

// HasKey reports whether any field in the template uses the given data key.
func (t *Template) HasKey(key string) bool {
	for _, f := range t.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	c := *t
	c.Pages = append([]string(nil), t.Pages...)
	c.Fields = append([]Field(nil), t.Fields...)
	return &c
}

// Validate returns soft warnings for geometry that interactive editing would
// never produce (off-page or oversized fields, bad page indexes). Values are
// never corrected: externally saved templates must round-trip verbatim.
func (t *Template) Validate() []string {
	var warns []string
	for _, f := range t.Fields {
		if f.X < 0 || f.Y < 0 || f.Right() > 100 || f.Bottom() > 100 {
			warns = append(warns, fmt.Sprintf("field %s (%s): box exceeds page bounds", f.ID, f.Key))
		}
		if f.Page < 1 || f.Page > len(t.Pages) {
			warns = append(warns, fmt.Sprintf("field %s (%s): page %d out of range", f.ID, f.Key, f.Page))
		}
	}
	return warns
}

// PageAsset is one entry of the save contract's parallel page list: either a
// reference to an already-stored background or raw bytes still to upload.
type PageAsset struct {
	Ref         string
	Data        []byte
	ContentType string
}

// IsStored reports whether the asset already has a stable public reference.
func (a PageAsset) IsStored() bool { return len(a.Data) == 0 && a.Ref != "" }
