package scan

import "strings"

// ParseMRZName recovers the holder's name from the first machine-readable
// zone line of a passport. The line starts with the document code and
// issuing state ("P<ETH"), then the surname, "<<", the given names, and "<"
// filler to the end. Returns "" when the line is too short to carry a name.
func ParseMRZName(line string) string {
	line = strings.ToUpper(strings.TrimSpace(line))
	if len(line) <= 5 {
		return ""
	}
	body := line[5:]

	// Trailing filler shows up as long runs of '<'.
	if i := strings.Index(body, "<<<<"); i >= 0 {
		body = body[:i]
	}

	surname := body
	given := ""
	if i := strings.Index(body, "<<"); i >= 0 {
		surname, given = body[:i], body[i+2:]
	}
	surname = strings.ReplaceAll(surname, "<", " ")
	given = strings.ReplaceAll(given, "<", " ")

	return strings.Join(strings.Fields(given+" "+surname), " ")
}

// GuardianName derives the contact/guardian name from a candidate's full
// name by the local convention: dropping the first given name leaves the
// father's and grandfather's names.
func GuardianName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) > 1 {
		return strings.Join(parts[1:], " ")
	}
	return fullName
}
