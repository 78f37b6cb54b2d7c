package layout

import "strings"

// FontFamilies is the fixed set offered by the editor.
var FontFamilies = []string{
	"Helvetica",
	"Times New Roman",
	"Courier",
	"Arial",
	"Century",
	"Poppins",
}

// DefaultFontFamily is used when a field carries no recognizable family.
const DefaultFontFamily = "Helvetica"

// MapFont maps a stored font family name onto one of the PDF core font
// families. Unrecognized names degrade to the default sans-serif.
func MapFont(name string) string {
	font := strings.ToLower(name)
	if font == "" {
		font = strings.ToLower(DefaultFontFamily)
	}
	switch {
	case strings.Contains(font, "helvetica"), strings.Contains(font, "arial"), strings.Contains(font, "sans"):
		return "helvetica"
	case strings.Contains(font, "times"), strings.Contains(font, "serif"):
		return "times"
	case strings.Contains(font, "courier"), strings.Contains(font, "mono"):
		return "courier"
	case strings.Contains(font, "zapfdingbats"), strings.Contains(font, "symbol"):
		return "zapfdingbats"
	default:
		return "helvetica"
	}
}

// FontStyle builds the PDF style string from the bold/italic flags.
func FontStyle(bold, italic bool) string {
	switch {
	case bold && italic:
		return "BI"
	case bold:
		return "B"
	case italic:
		return "I"
	default:
		return ""
	}
}
