// Package catalog is the static field registry: every data key a template
// can bind, with its default type, category and display label. It also
// provides the pure predicates dynamic forms use to decide which inputs an
// active template set actually needs.
package catalog

import (
	"regexp"
	"strconv"

	"github.com/mekonnen/cv-studio/internal/layout"
)

// Entry describes one catalog field.
type Entry struct {
	Key      string
	Label    string
	Type     layout.FieldType
	Category layout.FieldCategory
}

// Group is an ordered palette section shown by the editor.
type Group struct {
	Title   string
	Entries []Entry
}

var groups = []Group{
	{Title: "1. Photos", Entries: []Entry{
		{Key: "photoFace", Label: "Face Photo", Type: layout.FieldImage, Category: layout.CategoryPersonal},
		{Key: "photoFull", Label: "Full Body Photo", Type: layout.FieldImage, Category: layout.CategoryPersonal},
		{Key: "photoPassport", Label: "Passport Photo", Type: layout.FieldImage, Category: layout.CategoryPersonal},
	}},
	{Title: "2. Position & Salary", Entries: []Entry{
		{Key: "currentDate", Label: "Today's Date", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "officeName", Label: "Office Name (Auto)", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "positionApplied", Label: "Applied Position", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "refNo", Label: "Ref No", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "monthlySalary", Label: "Monthly Salary", Type: layout.FieldText, Category: layout.CategoryPersonal},
	}},
	{Title: "3. Personal Details", Entries: []Entry{
		{Key: "fullName", Label: "Full Name", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "religion", Label: "Religion", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "dob", Label: "Date of Birth", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "age", Label: "Age", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "pob", Label: "Place of Birth", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "maritalStatus", Label: "Marital Status", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "children", Label: "Children", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "education", Label: "Education", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "height", Label: "Height", Type: layout.FieldText, Category: layout.CategoryPersonal},
		{Key: "weight", Label: "Weight", Type: layout.FieldText, Category: layout.CategoryPersonal},
	}},
	{Title: "4. Passport Details", Entries: []Entry{
		{Key: "passportNumber", Label: "Passport No", Type: layout.FieldText, Category: layout.CategoryPassport},
		{Key: "issueDate", Label: "Issue Date", Type: layout.FieldText, Category: layout.CategoryPassport},
		{Key: "expiryDate", Label: "Expiry Date", Type: layout.FieldText, Category: layout.CategoryPassport},
		{Key: "placeOfIssue", Label: "Place of Issue", Type: layout.FieldText, Category: layout.CategoryPassport},
	}},
	{Title: "5. Language Proficiency", Entries: []Entry{
		{Key: "langEnglishPoor", Label: "English: Poor", Type: layout.FieldBoolean, Category: layout.CategorySkills},
		{Key: "langEnglishFair", Label: "English: Fair", Type: layout.FieldBoolean, Category: layout.CategorySkills},
		{Key: "langEnglishFluent", Label: "English: Fluent", Type: layout.FieldBoolean, Category: layout.CategorySkills},
		{Key: "langArabicPoor", Label: "Arabic: Poor", Type: layout.FieldBoolean, Category: layout.CategorySkills},
		{Key: "langArabicFair", Label: "Arabic: Fair", Type: layout.FieldBoolean, Category: layout.CategorySkills},
		{Key: "langArabicFluent", Label: "Arabic: Fluent", Type: layout.FieldBoolean, Category: layout.CategorySkills},
	}},
	{Title: "6. Previous Employment", Entries: experienceEntries()},
	{Title: "7. Skills & Performance", Entries: []Entry{
		{Key: "skillWashing", Label: "Washing", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
		{Key: "skillCooking", Label: "Cooking", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
		{Key: "skillBabyCare", Label: "Baby Care", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
		{Key: "skillCleaning", Label: "Cleaning", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
		{Key: "skillIroning", Label: "Ironing", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
		{Key: "skillSewing", Label: "Sewing", Type: layout.FieldCheckmark, Category: layout.CategorySkills},
	}},
	{Title: "8. Contact Person", Entries: []Entry{
		{Key: "contactName", Label: "Contact Name", Type: layout.FieldText, Category: layout.CategoryContact},
		{Key: "contactAddress", Label: "Contact Address", Type: layout.FieldText, Category: layout.CategoryContact},
		{Key: "contactRelation", Label: "Relationship", Type: layout.FieldText, Category: layout.CategoryContact},
		{Key: "contactPhone", Label: "Contact Phone", Type: layout.FieldText, Category: layout.CategoryContact},
	}},
	{Title: "9. Custom Fields", Entries: customEntries()},
}

// MaxExperienceRecords is the number of employment history slots the
// catalog exposes.
const MaxExperienceRecords = 4

// MaxCustomFields is the number of free-form custom field slots.
const MaxCustomFields = 10

func experienceEntries() []Entry {
	var out []Entry
	for i := 1; i <= MaxExperienceRecords; i++ {
		n := strconv.Itoa(i)
		out = append(out,
			Entry{Key: "expCountry" + n, Label: "Country " + n, Type: layout.FieldText, Category: layout.CategoryExperience},
			Entry{Key: "expPeriod" + n, Label: "Period " + n, Type: layout.FieldText, Category: layout.CategoryExperience},
			Entry{Key: "expPosition" + n, Label: "Position " + n, Type: layout.FieldText, Category: layout.CategoryExperience},
		)
	}
	return out
}

func customEntries() []Entry {
	var out []Entry
	for i := 1; i <= MaxCustomFields; i++ {
		n := strconv.Itoa(i)
		out = append(out, Entry{Key: "customField" + n, Label: "Custom " + n, Type: layout.FieldText, Category: layout.CategoryCustom})
	}
	return out
}

var byKey = func() map[string]Entry {
	m := make(map[string]Entry)
	for _, g := range groups {
		for _, e := range g.Entries {
			m[e.Key] = e
		}
	}
	return m
}()

// Groups returns the ordered palette groups.
func Groups() []Group { return groups }

// Lookup returns the catalog entry for a key.
func Lookup(key string) (Entry, bool) {
	e, ok := byKey[key]
	return e, ok
}

// UsedByAny reports whether any field in any of the templates binds the key.
func UsedByAny(templates []layout.Template, key string) bool {
	for i := range templates {
		if templates[i].HasKey(key) {
			return true
		}
	}
	return false
}

// UsedByAnyOf reports whether any of the keys is bound by any template.
func UsedByAnyOf(templates []layout.Template, keys ...string) bool {
	for _, k := range keys {
		if UsedByAny(templates, k) {
			return true
		}
	}
	return false
}

var expCountryKey = regexp.MustCompile(`^expCountry(\d+)$`)

// RequiredExperienceRecords returns the highest employment-record index
// referenced by any field across the templates. Forms render exactly that
// many record blocks.
func RequiredExperienceRecords(templates []layout.Template) int {
	max := 0
	for i := range templates {
		for _, f := range templates[i].Fields {
			m := expCountryKey.FindStringSubmatch(f.Key)
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

// CustomLabel returns the first non-empty custom label any template assigns
// to the key, or "".
func CustomLabel(templates []layout.Template, key string) string {
	for i := range templates {
		for _, f := range templates[i].Fields {
			if f.Key == key && f.CustomLabel != "" {
				return f.CustomLabel
			}
		}
	}
	return ""
}
