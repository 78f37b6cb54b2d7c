// Package layout defines the template model: a named, country-scoped,
// multi-page arrangement of positioned fields over background page images.
// Field geometry is stored as percentages (0-100) of the page dimensions,
// which keeps templates independent of the background image resolution.
// That percentage convention is a wire-format invariant: previously saved
// templates must load and round-trip unchanged.
package layout

import "strings"

// FieldType determines how a field's value is resolved and rendered.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldImage     FieldType = "image"
	FieldCheckmark FieldType = "checkmark"
	FieldBoolean   FieldType = "boolean"
)

// FieldCategory is an informational grouping for the editor palette.
// It never affects rendering.
type FieldCategory string

const (
	CategoryPersonal   FieldCategory = "personal"
	CategoryPassport   FieldCategory = "passport"
	CategoryExperience FieldCategory = "experience"
	CategorySkills     FieldCategory = "skills"
	CategoryContact    FieldCategory = "contact"
	CategoryCustom     FieldCategory = "custom"
)

// DateFormat selects the rendered shape of date-like values.
type DateFormat string

const (
	DateNumeric DateFormat = "numeric" // 15/06/2024
	DateAlpha   DateFormat = "alpha"   // 15 JUN 2024
)

// Align is the horizontal text anchor within a field box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Field is a single positioned, styled placeholder bound to one data key
// on one template page. X/Y/Width/Height are percentages of the page.
type Field struct {
	ID          string        `json:"id"`
	Key         string        `json:"key"`
	Label       string        `json:"label"`
	CustomLabel string        `json:"customLabel,omitempty"`
	DateFormat  DateFormat    `json:"dateFormat,omitempty"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Page        int           `json:"page"`
	Type        FieldType     `json:"type"`
	Category    FieldCategory `json:"category"`
	FontSize    float64       `json:"fontSize"`
	FontFamily  string        `json:"fontFamily"`
	Color       string        `json:"color"`
	Bold        bool          `json:"bold"`
	Italic      bool          `json:"italic"`
	Align       Align         `json:"align"`
}

// Right returns the field's right edge position.
func (f Field) Right() float64 { return f.X + f.Width }

// Bottom returns the field's bottom edge position.
func (f Field) Bottom() float64 { return f.Y + f.Height }

// CenterX returns the field's horizontal center.
func (f Field) CenterX() float64 { return f.X + f.Width/2 }

// CenterY returns the field's vertical center.
func (f Field) CenterY() float64 { return f.Y + f.Height/2 }

// IsDateKey reports whether the field's key names a date-like value:
// any key containing "date", plus the date-of-birth key.
func (f Field) IsDateKey() bool {
	return strings.Contains(strings.ToLower(f.Key), "date") || f.Key == "dob"
}

// DisplayLabel returns the custom label when one is set, else the catalog label.
func (f Field) DisplayLabel() string {
	if f.CustomLabel != "" {
		return f.CustomLabel
	}
	return f.Label
}
