// Package compose renders a filled record onto a template's background pages
// and produces the final PDF document. All geometry arrives as percentages of
// the page and is mapped onto A4 millimetres here; text that does not fit its
// box is shrunk, never clipped or wrapped.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

const (
	pageWidth  = 210.0
	pageHeight = 297.0

	// ptToMM converts a font size in points to mm for height fitting.
	ptToMM = 0.3527

	fitPadding      = 0.5
	fitStep         = 0.25
	minFontSize     = 4.0
	defaultFontSize = 10.0

	// checkGlyph is the ZapfDingbats checkmark.
	checkGlyph = "4"
)

// Document is one generated PDF plus its download filename.
type Document struct {
	Filename string
	PDF      []byte
}

// Composer renders documents. Photo and page references are resolved through
// the injected resolver; the clock is injectable for deterministic output.
type Composer struct {
	assets AssetResolver
	now    func() time.Time
}

// New returns a Composer over the given asset resolver.
func New(assets AssetResolver) *Composer {
	return &Composer{assets: assets, now: time.Now}
}

// Compose renders the record onto every page of the template. The agency
// label only affects the output filename.
func (c *Composer) Compose(ctx context.Context, tpl *layout.Template, rec *record.Record, agency string) (*Document, error) {
	if len(tpl.Pages) == 0 {
		return nil, fmt.Errorf("template %s has no pages", tpl.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, pageRef := range tpl.Pages {
		pdf.AddPage()

		bg, err := c.assets.Resolve(ctx, pageRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve page %d background: %w", i+1, err)
		}
		placeImage(pdf, fmt.Sprintf("page-%d", i), bg, 0, 0, pageWidth, pageHeight)

		for _, f := range tpl.FieldsOnPage(i + 1) {
			if err := c.renderField(ctx, pdf, tpl, rec, f); err != nil {
				return nil, fmt.Errorf("failed to render field %s (%s): %w", f.ID, f.Key, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return &Document{
		Filename: Filename(agency, rec.Text("refNo"), rec.Text("fullName"), tpl.OfficeName),
		PDF:      buf.Bytes(),
	}, nil
}

func (c *Composer) renderField(ctx context.Context, pdf *gofpdf.Fpdf, tpl *layout.Template, rec *record.Record, f layout.Field) error {
	x := f.X / 100 * pageWidth
	y := f.Y / 100 * pageHeight
	w := f.Width / 100 * pageWidth
	h := f.Height / 100 * pageHeight

	if f.Type == layout.FieldImage {
		ref := photoRef(rec, f.Key)
		if ref == "" {
			return nil
		}
		data, err := c.assets.Resolve(ctx, ref)
		if err != nil {
			// A missing photo degrades to a blank box rather than failing
			// the whole document.
			log.Printf("[compose] skipping photo %s: %v", f.Key, err)
			return nil
		}
		placeImage(pdf, "photo-"+f.ID, data, x, y, w, h)
		return nil
	}

	val := c.resolveValue(tpl, rec, f)
	if !val.Truthy() {
		return nil
	}

	setColor(pdf, f.Color)

	if f.Type == layout.FieldCheckmark {
		pdf.SetFont("zapfdingbats", "", fontSizeOrDefault(f))
		pdf.SetXY(x, y)
		pdf.CellFormat(w, h, checkGlyph, "", 0, "CM", false, 0, "")
		return nil
	}

	text := displayText(f, val)
	if text == "" {
		return nil
	}

	family := layout.MapFont(f.FontFamily)
	style := layout.FontStyle(f.Bold, f.Italic)
	size := fitFontSize(pdf, family, style, text, w, h, fontSizeOrDefault(f))
	pdf.SetFont(family, style, size)

	pdf.SetXY(x, y)
	pdf.CellFormat(w, h, text, "", 0, cellAlign(f.Align), false, 0, "")
	return nil
}

// resolveValue maps the field key onto record data, handling the computed
// keys that never live in the record itself.
func (c *Composer) resolveValue(tpl *layout.Template, rec *record.Record, f layout.Field) record.Value {
	switch f.Key {
	case "currentDate":
		if v := rec.Text("currentDate"); v != "" {
			return record.Text(v)
		}
		return record.Text(c.now().Format("2006-01-02"))
	case "officeName":
		if tpl.OfficeName != "" {
			return record.Text(tpl.OfficeName)
		}
		return record.Text(rec.Text("officeName"))
	}
	v, _ := rec.Get(f.Key)
	return v
}

// displayText converts a resolved value into the string its box renders.
// Text is trimmed before the date-length check so padded values neither shift
// alignment nor slip past the empty-value skip.
func displayText(f layout.Field, val record.Value) string {
	if f.Type == layout.FieldBoolean {
		return "YES"
	}
	text := strings.TrimSpace(val.String())
	if f.IsDateKey() && len(text) > 5 {
		text = FormatDate(text, f.DateFormat)
	}
	return text
}

// fitFontSize shrinks the starting size in quarter-point steps until the text
// fits the box width (minus padding on both sides), stopping at the floor.
// The starting size is first capped so the glyph height fits the box. Sizes
// are never grown above what the field asks for.
func fitFontSize(pdf *gofpdf.Fpdf, family, style, text string, boxWidth, boxHeight, size float64) float64 {
	if maxForHeight := (boxHeight - 2*fitPadding) / ptToMM; size > maxForHeight {
		size = maxForHeight
	}
	avail := boxWidth - 2*fitPadding
	if avail <= 0 || size < minFontSize {
		return minFontSize
	}
	for size > minFontSize {
		pdf.SetFont(family, style, size)
		if pdf.GetStringWidth(text) <= avail {
			return size
		}
		size -= fitStep
	}
	return minFontSize
}

func fontSizeOrDefault(f layout.Field) float64 {
	if f.FontSize > 0 {
		return f.FontSize
	}
	return defaultFontSize
}

func photoRef(rec *record.Record, key string) string {
	switch key {
	case "photoFace":
		return rec.Photos.Face
	case "photoFull":
		return rec.Photos.Full
	case "photoPassport":
		return rec.Photos.Passport
	}
	return ""
}

// placeImage registers the image bytes under a unique name and stretches it
// over the target box.
func placeImage(pdf *gofpdf.Fpdf, name string, data []byte, x, y, w, h float64) {
	opts := gofpdf.ImageOptions{ImageType: sniffImageType(data)}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func cellAlign(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "CM"
	case layout.AlignRight:
		return "RM"
	default:
		return "LM"
	}
}

// setColor parses a #RRGGBB color; unparseable colors degrade to black.
func setColor(pdf *gofpdf.Fpdf, hex string) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		pdf.SetTextColor(0, 0, 0)
		return
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		pdf.SetTextColor(0, 0, 0)
		return
	}
	pdf.SetTextColor(int(n>>16&0xFF), int(n>>8&0xFF), int(n&0xFF))
}
