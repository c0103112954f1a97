package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"  Union   Rescue\tMission  ", "Union Rescue Mission"},
		{"Open daily!!", "Open daily"},
		{"Call first;,", "Call first"},
		{"St. Mark's", "St. Mark's"},
		{",;", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input %q", tt.in)
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"123 MAIN ST", "123 Main St"},
		{"los angeles", "Los Angeles"},
		{"500 w 5th st", "500 W 5th St"},
		{"1200 NW GLISAN ST", "1200 NW Glisan St"},
		{"p.o. box 12", "P.O. Box 12"},
		{"123 W 3RD ST", "123 W 3rd St"},
		{"1ST AVE", "1st Ave"},
		{"42ND STREET", "42nd Street"},
		{"st. mark's church", "St. Mark's Church"},
		{"(main entrance)", "(main Entrance)"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleCase(tt.in), "input %q", tt.in)
	}
}

func TestState(t *testing.T) {
	assert.Equal(t, "CA", State("ca"))
	assert.Equal(t, "CA", State(" California "))
	assert.Equal(t, "", State(""))
	assert.Equal(t, "", State("9"))
}

func TestZip(t *testing.T) {
	assert.Equal(t, "90012", Zip("90012-1234"))
	assert.Equal(t, "90012", Zip("CA 90012"))
	assert.Equal(t, "", Zip("9001"))
	assert.Equal(t, "", Zip("ABCDEFG"))
	assert.Equal(t, "", Zip(""))
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "2135551212", PhoneDigits("(213) 555-1212"))
	assert.Equal(t, "12135551212", PhoneDigits("+1 213-555-1212"))
	assert.Equal(t, "", PhoneDigits("n/a"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty())
}
