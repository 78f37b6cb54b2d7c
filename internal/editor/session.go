// Package editor implements the design-time layout editor as a pure geometry
// state machine. A Session owns one template and is driven by abstract
// pointer events in normalized (0-100) page coordinates; any UI toolkit can
// adapt its raw input events onto this contract.
package editor

import (
	"errors"

	"github.com/mekonnen/cv-studio/internal/layout"
)

// Mode is the current interaction state. Only one interaction can be in
// flight at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
	ModeMarquee
)

// ResizeDir names the handle being dragged during a resize.
type ResizeDir string

const (
	ResizeN  ResizeDir = "n"
	ResizeS  ResizeDir = "s"
	ResizeE  ResizeDir = "e"
	ResizeW  ResizeDir = "w"
	ResizeNE ResizeDir = "ne"
	ResizeNW ResizeDir = "nw"
	ResizeSE ResizeDir = "se"
	ResizeSW ResizeDir = "sw"
)

// Point is a position in normalized page coordinates.
type Point struct {
	X, Y float64
}

// Rect is a marquee rectangle between its anchor (X1,Y1) and the live
// pointer position (X2,Y2); edges may be unordered.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

const (
	// MinFieldSize is the floor enforced on both dimensions during resize.
	MinFieldSize = 5.0
	// DragGridStep is the snap step applied to positions while dragging.
	DragGridStep = 2.0
	// ResizeGridStep is the snap step applied to geometry while resizing.
	ResizeGridStep = 1.0
)

// ErrNoPages is returned when a field is added before any background page exists.
var ErrNoPages = errors.New("editor: template has no background page")

// ErrSingleSelection is returned by operations that require exactly one
// selected field.
var ErrSingleSelection = errors.New("editor: operation requires exactly one selected field")

// ErrMultiSelection is returned by operations that require two or more
// selected fields.
var ErrMultiSelection = errors.New("editor: operation requires at least two selected fields")

// Session is one in-memory editing session over a template. The template is
// owned exclusively by the session; persistence replaces the whole document.
type Session struct {
	tpl    *layout.Template
	assets []layout.PageAsset

	page      int
	selection []string // ordered, last entry is the primary field
	snap      bool

	mode      Mode
	dir       ResizeDir
	anchor    Point
	marquee   Rect
	marqueeOr bool // union with prior selection on release
	dragStart map[string]layout.Field
}

// NewSession starts editing the given template, or a fresh one when nil.
// Existing pages become already-stored assets.
func NewSession(tpl *layout.Template) *Session {
	if tpl == nil {
		tpl = layout.New("New Layout", "", "kuwait")
	}
	s := &Session{tpl: tpl}
	for _, ref := range tpl.Pages {
		s.assets = append(s.assets, layout.PageAsset{Ref: ref})
	}
	return s
}

// Template returns the session's template.
func (s *Session) Template() *layout.Template { return s.tpl }

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Selection returns the ordered selected field ids.
func (s *Session) Selection() []string {
	return append([]string(nil), s.selection...)
}

// Primary returns the last-selected field, or nil.
func (s *Session) Primary() *layout.Field {
	if len(s.selection) == 0 {
		return nil
	}
	return s.tpl.FieldByID(s.selection[len(s.selection)-1])
}

// SetSnap toggles grid snapping for subsequent drags and resizes.
func (s *Session) SetSnap(on bool) { s.snap = on }

// Page returns the current 0-based page index.
func (s *Session) Page() int { return s.page }

// SelectPage switches the editable page. Selection is cleared since the
// visible field set changes.
func (s *Session) SelectPage(i int) {
	if i < 0 || i >= len(s.tpl.Pages) {
		return
	}
	s.page = i
	s.selection = nil
}

// VisibleFields returns the fields on the current page.
func (s *Session) VisibleFields() []layout.Field {
	return s.tpl.FieldsOnPage(s.page + 1)
}

// AddPage appends a background page asset. Stored assets contribute their
// reference to the page list immediately; raw assets get their public
// reference substituted on save.
func (s *Session) AddPage(asset layout.PageAsset) {
	s.tpl.Pages = append(s.tpl.Pages, asset.Ref)
	s.assets = append(s.assets, asset)
}

func (s *Session) selected(id string) bool {
	for _, sel := range s.selection {
		if sel == id {
			return true
		}
	}
	return false
}

func (s *Session) selectedFields() []*layout.Field {
	out := make([]*layout.Field, 0, len(s.selection))
	for _, id := range s.selection {
		if f := s.tpl.FieldByID(id); f != nil {
			out = append(out, f)
		}
	}
	return out
}
