package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekonnen/cv-studio/internal/layout"
)

func TestLookupKnownKeys(t *testing.T) {
	entry, ok := Lookup("fullName")
	require.True(t, ok)
	assert.Equal(t, "Full Name", entry.Label)
	assert.Equal(t, layout.FieldText, entry.Type)

	entry, ok = Lookup("skillCooking")
	require.True(t, ok)
	assert.Equal(t, layout.FieldCheckmark, entry.Type)
	assert.Equal(t, layout.CategorySkills, entry.Category)

	entry, ok = Lookup("photoFace")
	require.True(t, ok)
	assert.Equal(t, layout.FieldImage, entry.Type)

	_, ok = Lookup("noSuchKey")
	assert.False(t, ok)
}

func TestGroupsCoverNumberedSlots(t *testing.T) {
	for i := 1; i <= MaxExperienceRecords; i++ {
		n := strconv.Itoa(i)
		for _, key := range []string{"expCountry" + n, "expPeriod" + n, "expPosition" + n} {
			_, ok := Lookup(key)
			assert.True(t, ok, "missing %s", key)
		}
	}
	for i := 1; i <= MaxCustomFields; i++ {
		key := "customField" + strconv.Itoa(i)
		entry, ok := Lookup(key)
		require.True(t, ok, "missing %s", key)
		assert.Equal(t, layout.CategoryCustom, entry.Category)
	}
}

func TestGroupsAreOrdered(t *testing.T) {
	groups := Groups()
	require.NotEmpty(t, groups)
	assert.Equal(t, "1. Photos", groups[0].Title)
	assert.Equal(t, "9. Custom Fields", groups[len(groups)-1].Title)
}

func TestUsedByAny(t *testing.T) {
	templates := []layout.Template{
		{Fields: []layout.Field{{ID: "f1", Key: "fullName"}}},
	}
	assert.True(t, UsedByAny(templates, "fullName"))
	assert.False(t, UsedByAny(templates, "passportNumber"))
	assert.False(t, UsedByAny(nil, "fullName"))

	assert.True(t, UsedByAnyOf(templates, "passportNumber", "fullName"))
	assert.False(t, UsedByAnyOf(templates, "passportNumber", "expiryDate"))
}

func TestRequiredExperienceRecords(t *testing.T) {
	none := layout.Template{Fields: []layout.Field{{Key: "fullName"}}}
	assert.Equal(t, 0, RequiredExperienceRecords([]layout.Template{none}))

	two := layout.Template{Fields: []layout.Field{{Key: "expCountry2"}}}
	assert.Equal(t, 2, RequiredExperienceRecords([]layout.Template{none, two}))

	// Only country keys decide the record count.
	pos3 := layout.Template{Fields: []layout.Field{{Key: "expPosition3"}}}
	assert.Equal(t, 2, RequiredExperienceRecords([]layout.Template{two, pos3}))
}

func TestCustomLabel(t *testing.T) {
	templates := []layout.Template{
		{Fields: []layout.Field{{Key: "customField1", CustomLabel: "IQAMA NO"}}},
	}
	assert.Equal(t, "IQAMA NO", CustomLabel(templates, "customField1"))
	assert.Equal(t, "", CustomLabel(templates, "customField2"))
}
