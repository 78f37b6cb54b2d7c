package compose

import (
	"fmt"
	"time"

	"github.com/mekonnen/cv-studio/internal/layout"
)

var months = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// dateLayouts are the stored shapes a date value may arrive in. ISO dates are
// what the forms produce; the timestamp layouts cover values pasted from
// other systems.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// FormatDate renders a stored date as DD/MM/YYYY (numeric) or DD MMM YYYY
// (alpha). Values that parse as none of the accepted layouts pass through
// unchanged so free-text entries like "UNTIL NOW" still print.
func FormatDate(value string, format layout.DateFormat) string {
	var parsed time.Time
	ok := false
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, value); err == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return value
	}
	if format == layout.DateNumeric {
		return fmt.Sprintf("%02d/%02d/%04d", parsed.Day(), int(parsed.Month()), parsed.Year())
	}
	return fmt.Sprintf("%02d %s %04d", parsed.Day(), months[parsed.Month()-1], parsed.Year())
}
