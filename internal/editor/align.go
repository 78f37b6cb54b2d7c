package editor

import "math"

// AlignKind names a multi-field alignment operation.
type AlignKind string

const (
	AlignLeft    AlignKind = "left"
	AlignRight   AlignKind = "right"
	AlignTop     AlignKind = "top"
	AlignBottom  AlignKind = "bottom"
	AlignHCenter AlignKind = "h-center"
	AlignVCenter AlignKind = "v-center"
)

// Align repositions every selected field's edge or center onto a single
// target computed from the selection: the extreme edge, or the mean of
// centers. Sizes and the orthogonal axis are untouched. Requires at least
// two selected fields.
func (s *Session) Align(kind AlignKind) error {
	fields := s.selectedFields()
	if len(fields) < 2 {
		return ErrMultiSelection
	}

	var target float64
	switch kind {
	case AlignLeft:
		target = math.Inf(1)
		for _, f := range fields {
			target = math.Min(target, f.X)
		}
	case AlignRight:
		target = math.Inf(-1)
		for _, f := range fields {
			target = math.Max(target, f.Right())
		}
	case AlignTop:
		target = math.Inf(1)
		for _, f := range fields {
			target = math.Min(target, f.Y)
		}
	case AlignBottom:
		target = math.Inf(-1)
		for _, f := range fields {
			target = math.Max(target, f.Bottom())
		}
	case AlignHCenter:
		for _, f := range fields {
			target += f.CenterX()
		}
		target /= float64(len(fields))
	case AlignVCenter:
		for _, f := range fields {
			target += f.CenterY()
		}
		target /= float64(len(fields))
	}

	for _, f := range fields {
		switch kind {
		case AlignLeft:
			f.X = target
		case AlignRight:
			f.X = target - f.Width
		case AlignTop:
			f.Y = target
		case AlignBottom:
			f.Y = target - f.Height
		case AlignHCenter:
			f.X = target - f.Width/2
		case AlignVCenter:
			f.Y = target - f.Height/2
		}
	}
	return nil
}
