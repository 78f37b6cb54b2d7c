package compose

import (
	"regexp"
	"strings"
)

var (
	forbiddenChars = regexp.MustCompile(`[/\\:*?"<>|]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Filename builds the download name AGENCY_REF_NAME_OFFICE.pdf from the
// agency label, the candidate's reference number and full name, and the
// template's office name. Empty parts fall back to fixed placeholders so the
// name always has four segments.
func Filename(agency, refNo, fullName, officeName string) string {
	if agency == "" {
		agency = "PIXEL"
	}
	if refNo == "" {
		refNo = "REF"
	}
	if fullName == "" {
		fullName = "CANDIDATE"
	}
	parts := []string{clean(agency), clean(refNo), clean(fullName), clean(officeName)}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "_") + ".pdf"
}

// clean uppercases a filename segment, strips filesystem-hostile characters
// and collapses whitespace runs into single underscores.
func clean(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = forbiddenChars.ReplaceAllString(s, "-")
	s = whitespaceRun.ReplaceAllString(s, "_")
	return s
}
