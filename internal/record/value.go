// Package record holds the candidate/office data a user fills in: a dynamic
// key-to-value map keyed by the same vocabulary as template fields, plus the
// nested photo slots. Values are a small tagged union (text or flag) rather
// than untyped interface values; unknown shapes are dropped at the boundary.
package record

// Kind discriminates the value union.
type Kind int

const (
	KindText Kind = iota
	KindFlag
)

// Value is either a text string or a boolean flag.
type Value struct {
	kind Kind
	text string
	flag bool
}

// Text wraps a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Flag wraps a boolean value.
func Flag(b bool) Value { return Value{kind: KindFlag, flag: b} }

// Kind returns the union tag.
func (v Value) Kind() Kind { return v.kind }

// String returns the text content ("" for flags).
func (v Value) String() string {
	if v.kind == KindText {
		return v.text
	}
	return ""
}

// Bool returns the flag content (false for text).
func (v Value) Bool() bool {
	return v.kind == KindFlag && v.flag
}

// Truthy reports whether the value would render: a set flag or a non-empty string.
func (v Value) Truthy() bool {
	if v.kind == KindFlag {
		return v.flag
	}
	return v.text != ""
}

// Photos holds the three photo slots. Empty string means no photo.
type Photos struct {
	Face     string
	Full     string
	Passport string
}
