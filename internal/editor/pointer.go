package editor

import (
	"math"

	"github.com/mekonnen/cv-studio/internal/layout"
)

// PointerDown begins an interaction. fieldID is the field under the pointer
// ("" for empty canvas), handle the resize handle hit (if any), multi
// whether a multi-select modifier is held.
func (s *Session) PointerDown(pt Point, fieldID string, handle ResizeDir, multi bool) {
	pt = clampPoint(pt)
	s.anchor = pt

	if fieldID == "" {
		s.mode = ModeMarquee
		s.marquee = Rect{X1: pt.X, Y1: pt.Y, X2: pt.X, Y2: pt.Y}
		s.marqueeOr = multi
		if !multi {
			s.selection = nil
		}
		return
	}

	// Resize handles are only shown on a sole selected field.
	if handle != "" && len(s.selection) == 1 && s.selection[0] == fieldID {
		s.mode = ModeResizing
		s.dir = handle
		s.snapshotSelection()
		return
	}

	if multi {
		if s.selected(fieldID) {
			s.removeFromSelection(fieldID)
			s.mode = ModeIdle
			return
		}
		s.selection = append(s.selection, fieldID)
	} else if !s.selected(fieldID) {
		// Clicking inside an existing multi-selection keeps it intact so the
		// group can be dragged together.
		s.selection = []string{fieldID}
	}

	s.mode = ModeDragging
	s.snapshotSelection()
}

// PointerMove advances the current interaction.
func (s *Session) PointerMove(pt Point) {
	pt = clampPoint(pt)
	switch s.mode {
	case ModeDragging:
		s.dragTo(pt)
	case ModeResizing:
		s.resizeTo(pt)
	case ModeMarquee:
		s.marquee.X2 = pt.X
		s.marquee.Y2 = pt.Y
	}
}

// PointerUp ends the interaction. Releasing a marquee selects every field on
// the current page whose box the marquee fully contains.
func (s *Session) PointerUp() {
	if s.mode == ModeMarquee {
		xMin := math.Min(s.marquee.X1, s.marquee.X2)
		xMax := math.Max(s.marquee.X1, s.marquee.X2)
		yMin := math.Min(s.marquee.Y1, s.marquee.Y2)
		yMax := math.Max(s.marquee.Y1, s.marquee.Y2)

		for _, f := range s.VisibleFields() {
			if f.X >= xMin && f.Right() <= xMax && f.Y >= yMin && f.Bottom() <= yMax && !s.selected(f.ID) {
				s.selection = append(s.selection, f.ID)
			}
		}
	}
	s.mode = ModeIdle
	s.dir = ""
	s.dragStart = nil
	s.marquee = Rect{}
}

// Marquee returns the live selection rectangle while one is being drawn.
func (s *Session) Marquee() (Rect, bool) {
	return s.marquee, s.mode == ModeMarquee
}

func (s *Session) snapshotSelection() {
	s.dragStart = make(map[string]layout.Field, len(s.selection))
	for _, f := range s.selectedFields() {
		s.dragStart[f.ID] = *f
	}
}

func (s *Session) removeFromSelection(id string) {
	out := s.selection[:0]
	for _, sel := range s.selection {
		if sel != id {
			out = append(out, sel)
		}
	}
	s.selection = out
}

func (s *Session) dragTo(pt Point) {
	dx := pt.X - s.anchor.X
	dy := pt.Y - s.anchor.Y
	for _, f := range s.selectedFields() {
		start, ok := s.dragStart[f.ID]
		if !ok {
			continue
		}
		nx := start.X + dx
		ny := start.Y + dy
		if s.snap {
			nx = snapTo(nx, DragGridStep)
			ny = snapTo(ny, DragGridStep)
		}
		f.X = clamp(nx, 0, 100-f.Width)
		f.Y = clamp(ny, 0, 100-f.Height)
	}
}

func (s *Session) resizeTo(pt Point) {
	if len(s.selection) != 1 {
		return
	}
	f := s.tpl.FieldByID(s.selection[0])
	if f == nil {
		return
	}

	dir := string(s.dir)
	if containsDir(dir, "e") {
		f.Width = math.Max(MinFieldSize, pt.X-f.X)
	}
	if containsDir(dir, "w") {
		right := f.Right()
		f.X = math.Min(pt.X, right-MinFieldSize)
		f.Width = right - f.X
	}
	if containsDir(dir, "s") {
		f.Height = math.Max(MinFieldSize, pt.Y-f.Y)
	}
	if containsDir(dir, "n") {
		bottom := f.Bottom()
		f.Y = math.Min(pt.Y, bottom-MinFieldSize)
		f.Height = bottom - f.Y
	}

	if s.snap {
		f.X = snapTo(f.X, ResizeGridStep)
		f.Y = snapTo(f.Y, ResizeGridStep)
		f.Width = math.Max(MinFieldSize, snapTo(f.Width, ResizeGridStep))
		f.Height = math.Max(MinFieldSize, snapTo(f.Height, ResizeGridStep))
	}
}

// containsDir matches a single-axis direction letter within a compound
// direction like "ne".
func containsDir(dir, axis string) bool {
	for i := 0; i < len(dir); i++ {
		if string(dir[i]) == axis {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(hi, math.Max(lo, v))
}

func clampPoint(pt Point) Point {
	return Point{X: clamp(pt.X, 0, 100), Y: clamp(pt.Y, 0, 100)}
}

func snapTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
