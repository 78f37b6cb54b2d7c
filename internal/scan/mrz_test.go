package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMRZName(t *testing.T) {
	line := "P<ETHTULU<<ABEBE<KEBEDE<<<<<<<<<<<<<<<<<<<<<<"
	assert.Equal(t, "ABEBE KEBEDE TULU", ParseMRZName(line))
}

func TestParseMRZNameSurnameOnly(t *testing.T) {
	assert.Equal(t, "ABEBE", ParseMRZName("P<ETHABEBE<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<"))
}

func TestParseMRZNameLowercaseInput(t *testing.T) {
	assert.Equal(t, "ABEBE KEBEDE TULU", ParseMRZName("p<ethtulu<<abebe<kebede<<<<<<<<<"))
}

func TestParseMRZNameTooShort(t *testing.T) {
	assert.Equal(t, "", ParseMRZName(""))
	assert.Equal(t, "", ParseMRZName("P<ETH"))
}

func TestGuardianName(t *testing.T) {
	assert.Equal(t, "KEBEDE TULU", GuardianName("ABEBE KEBEDE TULU"))
	assert.Equal(t, "KEBEDE", GuardianName("ABEBE KEBEDE"))
	assert.Equal(t, "ABEBE", GuardianName("ABEBE"))
	assert.Equal(t, "", GuardianName(""))
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
}

func TestNormalizePrefersMRZName(t *testing.T) {
	d := PassportData{
		MRZLine1: "P<ETHTULU<<ABEBE<KEBEDE<<<<<<<<",
		FullName: "abeba kebbede",
	}
	normalize(&d)
	assert.Equal(t, "ABEBE KEBEDE TULU", d.FullName)
	assert.Equal(t, "ETHIOPIAN", d.Nationality)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "png", imageFormat("image/png"))
	assert.Equal(t, "jpeg", imageFormat("image/jpeg"))
	assert.Equal(t, "jpeg", imageFormat("application/octet-stream"))
}
