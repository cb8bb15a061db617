package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input        string
		hour, minute int
		hasError     bool
	}{
		{"15:04", 15, 4, false},
		{"3:04 PM", 15, 4, false},
		{"03:04 PM", 15, 4, false},
		{"11:30 PM", 23, 30, false},
		{"12:00 AM", 0, 0, false},
		{"12:15 PM", 12, 15, false},
		{"01:00 AM (Sunday)", 1, 0, false},
		{"25:00", 0, 0, true},
		{"13:00 PM", 0, 0, true},
		{"noon", 0, 0, true},
	}

	for _, tc := range tests {
		h, m, err := ParseClockTime(tc.input)
		if tc.hasError {
			assert.ErrorIs(t, err, ErrInvalidClockTime, "input %q", tc.input)
			continue
		}
		assert.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.hour, h, "hour for %q", tc.input)
		assert.Equal(t, tc.minute, m, "minute for %q", tc.input)
	}
}

func TestSizeNumber(t *testing.T) {
	assert.Equal(t, 15.8, SizeNumber("15.8 GB"))
	assert.Equal(t, 1.2, SizeNumber("1.2GB"))
	assert.Equal(t, 0.0, SizeNumber(""))
	assert.Equal(t, 0.0, SizeNumber("unknown"))
}

func TestInitialsAndColor(t *testing.T) {
	assert.Equal(t, "JD", Initials("John Doe"))
	assert.Equal(t, "MVB", Initials("Maria van Basten"))
	assert.Equal(t, "", Initials("   "))
	assert.Contains(t, Palette, ColorFor("project-alpha"))
	assert.Equal(t, ColorFor("x"), ColorFor("x"))
}
