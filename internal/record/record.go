package record

import (
	"strconv"
	"strings"
	"time"
)

// Language selects a proficiency key group.
type Language string

const (
	LangEnglish Language = "English"
	LangArabic  Language = "Arabic"
)

// Level is a proficiency grade. The three grades per language are mutually
// exclusive flags on the record.
type Level string

const (
	LevelPoor   Level = "Poor"
	LevelFair   Level = "Fair"
	LevelFluent Level = "Fluent"
)

// Record is the mutable candidate data backing a form session. All free-text
// values are normalized to uppercase when they enter the record; the
// composition engine assumes input is already normalized.
type Record struct {
	values map[string]Value
	Photos Photos
}

// New returns a record pre-filled with the form defaults.
func New() *Record {
	r := &Record{values: make(map[string]Value)}
	r.values["religion"] = Text("MUSLIM")
	r.values["maritalStatus"] = Text("SINGLE")
	r.values["contactRelation"] = Text("FATHER")
	r.values["currentDate"] = Text(time.Now().Format("2006-01-02"))
	r.values["hasExperience"] = Flag(false)
	for _, lang := range []Language{LangEnglish, LangArabic} {
		for _, lvl := range []Level{LevelPoor, LevelFair, LevelFluent} {
			r.values[languageKey(lang, lvl)] = Flag(false)
		}
	}
	return r
}

// Get returns the stored value for a key.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Text returns the text value for a key, or "".
func (r *Record) Text(key string) string {
	return r.values[key].String()
}

// Flag returns the flag value for a key, or false.
func (r *Record) Flag(key string) bool {
	return r.values[key].Bool()
}

// Keys returns all keys currently set on the record.
func (r *Record) Keys() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	return out
}

// Set stores a free-text value, uppercasing it at the entry boundary.
// Setting dob recomputes age; setting pob seeds an empty contact address.
func (r *Record) Set(key, raw string) {
	r.values[key] = Text(strings.ToUpper(raw))
	switch key {
	case "dob":
		r.refreshAge(time.Now())
	case "pob":
		if r.Text("contactAddress") == "" {
			r.values["contactAddress"] = Text(strings.ToUpper(raw))
		}
	}
}

// SetFlag stores a boolean value. Turning hasExperience on seeds the default
// position for every empty employment record.
func (r *Record) SetFlag(key string, on bool) {
	r.values[key] = Flag(on)
	if key == "hasExperience" && on {
		for i := 1; i <= 4; i++ {
			k := "expPosition" + strconv.Itoa(i)
			if r.Text(k) == "" {
				r.values[k] = Text("HOUSEMAID")
			}
		}
	}
}

// SetLanguageLevel selects one proficiency grade for a language and clears
// the other two.
func (r *Record) SetLanguageLevel(lang Language, level Level) {
	for _, lvl := range []Level{LevelPoor, LevelFair, LevelFluent} {
		r.values[languageKey(lang, lvl)] = Flag(lvl == level)
	}
}

func languageKey(lang Language, lvl Level) string {
	return "lang" + string(lang) + string(lvl)
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{values: make(map[string]Value, len(r.values)), Photos: r.Photos}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// refreshAge recomputes the derived age from dob. Invalid or out-of-range
// results leave the stored age untouched.
func (r *Record) refreshAge(today time.Time) {
	age, ok := AgeAt(r.Text("dob"), today)
	if ok {
		r.values["age"] = Text(strconv.Itoa(age))
	}
}

// AgeAt computes whole years between an ISO date of birth and a reference
// date. Returns false for unparseable dates or ages outside [0,100).
func AgeAt(dob string, on time.Time) (int, bool) {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0, false
	}
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	if age < 0 || age >= 100 {
		return 0, false
	}
	return age, true
}

// PassportDetails is the structured result of a passport scan, as consumed
// by the record.
type PassportDetails struct {
	FullName       string
	PassportNumber string
	DOB            string
	ExpiryDate     string
	PlaceOfIssue   string
	POB            string
}

// ApplyPassport fills the record from a passport scan. The contact person is
// derived by the local naming convention: dropping the candidate's first
// given name yields the father/grandfather name.
func (r *Record) ApplyPassport(d PassportDetails) {
	r.Set("fullName", d.FullName)
	r.Set("passportNumber", d.PassportNumber)
	r.Set("dob", d.DOB)
	r.Set("expiryDate", d.ExpiryDate)
	if d.PlaceOfIssue != "" {
		r.Set("placeOfIssue", d.PlaceOfIssue)
	} else {
		r.Set("placeOfIssue", "ADDIS ABABA")
	}
	r.Set("pob", d.POB)
	r.Set("contactName", guardianName(d.FullName))
	r.values["contactAddress"] = Text(strings.ToUpper(d.POB))
	r.Set("contactRelation", "FATHER")
}

// guardianName drops the first token of a full name; a single-token name is
// returned unchanged.
func guardianName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) > 1 {
		return strings.Join(parts[1:], " ")
	}
	return fullName
}
