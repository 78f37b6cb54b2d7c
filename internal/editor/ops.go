package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mekonnen/cv-studio/internal/catalog"
	"github.com/mekonnen/cv-studio/internal/layout"
)

// AddField appends a new field for the catalog entry at the default
// placement on the current page and selects it. Fails when no background
// page exists yet.
func (s *Session) AddField(entry catalog.Entry) (*layout.Field, error) {
	if len(s.tpl.Pages) == 0 {
		return nil, ErrNoPages
	}
	w, h := 40.0, 6.0
	if entry.Type == layout.FieldCheckmark {
		w, h = 4.0, 4.0
	}
	f := layout.Field{
		ID:         uuid.NewString(),
		Key:        entry.Key,
		Label:      entry.Label,
		X:          10, Y: 10,
		Width:      w,
		Height:     h,
		Page:       s.page + 1,
		Type:       entry.Type,
		Category:   entry.Category,
		FontSize:   12,
		FontFamily: layout.DefaultFontFamily,
		Color:      "#000000",
		Align:      layout.AlignLeft,
		DateFormat: layout.DateAlpha,
	}
	s.tpl.Fields = append(s.tpl.Fields, f)
	s.selection = []string{f.ID}
	return s.tpl.FieldByID(f.ID), nil
}

// DeleteSelected removes every selected field and clears the selection.
// Returns the number of fields removed.
func (s *Session) DeleteSelected() int {
	if len(s.selection) == 0 {
		return 0
	}
	kept := s.tpl.Fields[:0]
	removed := 0
	for _, f := range s.tpl.Fields {
		if s.selected(f.ID) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	s.tpl.Fields = kept
	s.selection = nil
	return removed
}

// StyleUpdate is a batch property edit. Nil members are left untouched.
type StyleUpdate struct {
	FontSize   *float64
	FontFamily *string
	Color      *string
	Bold       *bool
	Italic     *bool
	Align      *layout.Align
}

// ApplyStyle applies the update to every selected field identically.
func (s *Session) ApplyStyle(u StyleUpdate) {
	for _, f := range s.selectedFields() {
		if u.FontSize != nil {
			f.FontSize = *u.FontSize
		}
		if u.FontFamily != nil {
			f.FontFamily = *u.FontFamily
		}
		if u.Color != nil {
			f.Color = *u.Color
		}
		if u.Bold != nil {
			f.Bold = *u.Bold
		}
		if u.Italic != nil {
			f.Italic = *u.Italic
		}
		if u.Align != nil {
			f.Align = *u.Align
		}
	}
}

// SetType switches the output mode of the sole selected field between text,
// checkmark and boolean. Image fields keep their type.
func (s *Session) SetType(t layout.FieldType) error {
	f, err := s.sole()
	if err != nil {
		return err
	}
	if f.Type == layout.FieldImage || t == layout.FieldImage {
		return errors.New("editor: image fields cannot change type")
	}
	f.Type = t
	return nil
}

// SetDateFormat sets the date output style of the sole selected field.
// Only meaningful on date-like keys.
func (s *Session) SetDateFormat(df layout.DateFormat) error {
	f, err := s.sole()
	if err != nil {
		return err
	}
	if !f.IsDateKey() {
		return errors.New("editor: field key is not date-like")
	}
	f.DateFormat = df
	return nil
}

// SetCustomLabel renames the sole selected custom-category field.
func (s *Session) SetCustomLabel(label string) error {
	f, err := s.sole()
	if err != nil {
		return err
	}
	if f.Category != layout.CategoryCustom {
		return errors.New("editor: only custom fields can be renamed")
	}
	f.CustomLabel = strings.ToUpper(label)
	return nil
}

func (s *Session) sole() (*layout.Field, error) {
	if len(s.selection) != 1 {
		return nil, ErrSingleSelection
	}
	f := s.tpl.FieldByID(s.selection[0])
	if f == nil {
		return nil, ErrSingleSelection
	}
	return f, nil
}

// Store is the save contract: the whole template plus the parallel page
// asset list, persisted atomically from the editor's point of view. The
// returned template carries stable references for newly uploaded assets.
type Store interface {
	SaveTemplate(ctx context.Context, ownerID string, tpl *layout.Template, assets []layout.PageAsset) (*layout.Template, error)
}

// ErrOfficeNameRequired rejects saving a template with no display name.
var ErrOfficeNameRequired = errors.New("editor: office name is required")

// Save persists the session's template. On failure the in-memory state is
// untouched so the user can retry; on success the saved template (with
// substituted page references) is returned and the session can end.
func (s *Session) Save(ctx context.Context, st Store, ownerID string) (*layout.Template, error) {
	if s.tpl.OfficeName == "" {
		return nil, ErrOfficeNameRequired
	}
	saved, err := st.SaveTemplate(ctx, ownerID, s.tpl.Clone(), s.assets)
	if err != nil {
		return nil, err
	}
	return saved, nil
}
