package compose

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15/06/2024", FormatDate("2024-06-15", layout.DateNumeric))
	assert.Equal(t, "15 JUN 2024", FormatDate("2024-06-15", layout.DateAlpha))
	assert.Equal(t, "01 JAN 2030", FormatDate("2030-01-01", layout.DateAlpha))
	assert.Equal(t, "03/12/2025", FormatDate("2025-12-03T10:30:00Z", layout.DateNumeric))

	// Free text passes through unchanged.
	assert.Equal(t, "UNTIL NOW", FormatDate("UNTIL NOW", layout.DateNumeric))
	assert.Equal(t, "", FormatDate("", layout.DateAlpha))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "GOLD_GH-0042_ABEBE_KEBEDE_AL_SALAM.pdf",
		Filename("gold", "GH-0042", "Abebe Kebede", "Al Salam"))

	// Defaults fill the missing segments.
	assert.Equal(t, "PIXEL_REF_CANDIDATE_OFFICE.pdf", Filename("", "", "", "office"))

	// Hostile characters are stripped.
	assert.Equal(t, "PIXEL_A-B_CANDIDATE_X-Y.pdf", Filename("", "a/b", "", `x:y`))
}

func TestFilenameSkipsEmptyOffice(t *testing.T) {
	assert.Equal(t, "PIXEL_REF_CANDIDATE.pdf", Filename("", "", "", ""))
}

func TestFitFontSizeShrinksButNeverGrows(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	long := "A VERY LONG LINE OF TEXT THAT CANNOT POSSIBLY FIT IN A NARROW BOX"
	size := fitFontSize(pdf, "helvetica", "", long, 20, 10, 12)
	assert.Less(t, size, 12.0)
	assert.GreaterOrEqual(t, size, minFontSize)

	size = fitFontSize(pdf, "helvetica", "", "OK", 50, 10, 12)
	assert.Equal(t, 12.0, size, "fitting text keeps its configured size")

	size = fitFontSize(pdf, "helvetica", "", long, 1, 10, 12)
	assert.Equal(t, minFontSize, size, "hopeless boxes bottom out at the floor")

	// A short box caps the size by height before width fitting starts.
	size = fitFontSize(pdf, "helvetica", "", "OK", 50, 3, 12)
	assert.Less(t, size, 12.0)
	assert.GreaterOrEqual(t, size, minFontSize)
}

type mapResolver map[string][]byte

func (m mapResolver) Resolve(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("unknown ref %q", ref)
	}
	return data, nil
}

// tinyPNG is a 1x1 white PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg==")

func testTemplate() *layout.Template {
	tpl := layout.New("Kuwait CV", "AL SALAM", "kuwait")
	tpl.Pages = []string{"bg"}
	tpl.Fields = []layout.Field{
		{ID: "f1", Key: "fullName", X: 10, Y: 10, Width: 40, Height: 5, Page: 1,
			Type: layout.FieldText, FontSize: 11, FontFamily: "Helvetica", Color: "#000000", Align: layout.AlignLeft},
		{ID: "f2", Key: "dob", X: 10, Y: 20, Width: 30, Height: 5, Page: 1,
			Type: layout.FieldText, FontSize: 10, DateFormat: layout.DateNumeric},
		{ID: "f3", Key: "skillCooking", X: 60, Y: 20, Width: 4, Height: 4, Page: 1,
			Type: layout.FieldCheckmark, FontSize: 10},
		{ID: "f4", Key: "hasExperience", X: 10, Y: 30, Width: 20, Height: 5, Page: 1,
			Type: layout.FieldBoolean, FontSize: 10},
		{ID: "f5", Key: "photoFace", X: 70, Y: 10, Width: 25, Height: 30, Page: 1,
			Type: layout.FieldImage},
	}
	return tpl
}

func TestComposeProducesPDF(t *testing.T) {
	resolver := mapResolver{"bg": tinyPNG, "ref-face": tinyPNG}
	c := New(resolver)

	rec := record.New()
	rec.Set("fullName", "abebe kebede")
	rec.Set("dob", "2000-06-15")
	rec.SetFlag("skillCooking", true)
	rec.SetFlag("hasExperience", true)
	rec.Set("refNo", "GH-0042")
	rec.Photos.Face = "ref-face"

	doc, err := c.Compose(context.Background(), testTemplate(), rec, "GOLD")
	require.NoError(t, err)

	assert.Equal(t, "GOLD_GH-0042_ABEBE_KEBEDE_AL_SALAM.pdf", doc.Filename)
	require.NotEmpty(t, doc.PDF)
	assert.True(t, bytes.HasPrefix(doc.PDF, []byte("%PDF")), "output is a PDF")
}

func TestComposeSkipsEmptyValues(t *testing.T) {
	resolver := mapResolver{"bg": tinyPNG}
	c := New(resolver)

	// Empty record: only the background page renders; the absent photo and
	// unset flags must not fail the document.
	rec := record.New()
	doc, err := c.Compose(context.Background(), testTemplate(), rec, "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.PDF)
}

func TestComposeRequiresPages(t *testing.T) {
	c := New(mapResolver{})
	tpl := layout.New("x", "o", "kuwait")
	_, err := c.Compose(context.Background(), tpl, record.New(), "")
	assert.Error(t, err)
}

func TestComposeFailsOnMissingBackground(t *testing.T) {
	c := New(mapResolver{})
	_, err := c.Compose(context.Background(), testTemplate(), record.New(), "")
	assert.Error(t, err)
}

func TestResolveValueSpecialKeys(t *testing.T) {
	c := New(mapResolver{})
	c.now = func() time.Time { return time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC) }

	tpl := layout.New("x", "AL SALAM", "kuwait")
	rec := record.New()

	v := c.resolveValue(tpl, rec, layout.Field{Key: "officeName"})
	assert.Equal(t, "AL SALAM", v.String())

	// currentDate prefers what the record carries, falling back to the clock.
	v = c.resolveValue(tpl, rec, layout.Field{Key: "currentDate"})
	assert.NotEmpty(t, v.String())
}

func TestResolveValueOfficeNameFallsBackToRecord(t *testing.T) {
	c := New(mapResolver{})
	tpl := layout.New("x", "", "kuwait")
	rec := record.New()
	rec.Set("officeName", "al salam")

	v := c.resolveValue(tpl, rec, layout.Field{Key: "officeName"})
	assert.Equal(t, "AL SALAM", v.String(), "empty template office name falls back to the record")

	tpl.OfficeName = "OTHER"
	v = c.resolveValue(tpl, rec, layout.Field{Key: "officeName"})
	assert.Equal(t, "OTHER", v.String(), "template office name wins when set")
}

func TestDisplayTextTrims(t *testing.T) {
	assert.Equal(t, "ABEBE", displayText(layout.Field{Type: layout.FieldText}, record.Text("  ABEBE  ")))
	assert.Equal(t, "", displayText(layout.Field{Type: layout.FieldText}, record.Text("   ")),
		"whitespace-only values skip the box")
	assert.Equal(t, "YES", displayText(layout.Field{Type: layout.FieldBoolean}, record.Flag(true)))

	// Trim happens before date detection, so padded dates still format.
	f := layout.Field{Key: "dob", Type: layout.FieldText, DateFormat: layout.DateNumeric}
	assert.Equal(t, "15/06/2024", displayText(f, record.Text(" 2024-06-15 ")))
}

func TestDataURIResolution(t *testing.T) {
	r := NewHTTPResolver()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	data, err := r.Resolve(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, data)

	_, err = r.Resolve(context.Background(), "data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestLocalResolverServesBlobDirRefs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bg.png"), tinyPNG, 0o644))

	r := &LocalResolver{Prefix: "/assets", Dir: dir, Next: NewHTTPResolver()}

	// Server-relative references resolve straight from the directory; they
	// carry no scheme, so plain HTTP fetching could never serve them.
	data, err := r.Resolve(context.Background(), "/assets/bg.png")
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, data)

	_, err = r.Resolve(context.Background(), "/assets/missing.png")
	assert.Error(t, err)

	// Everything outside the prefix is delegated.
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	data, err = r.Resolve(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, data)
}

func TestSniffImageType(t *testing.T) {
	assert.Equal(t, "PNG", sniffImageType(tinyPNG))
	assert.Equal(t, "JPG", sniffImageType([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}))
	assert.Equal(t, "PNG", sniffImageType([]byte("unknown")))
}
