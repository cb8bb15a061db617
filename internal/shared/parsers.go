package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clockRe  = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*(AM|PM)?`)
	nonNumRe = regexp.MustCompile(`[^\d.]`)
)

// ParseClockTime reads the leading clock token of a free-text schedule time.
// Accepted forms: "15:04", "3:04 PM", "03:04 PM" and anything after them,
// e.g. "01:00 AM (Sunday)".
func ParseClockTime(s string) (hour, minute int, err error) {
	matches := clockRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	hour, _ = strconv.Atoi(matches[1])
	minute, _ = strconv.Atoi(matches[2])

	switch strings.ToUpper(matches[3]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
		}
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return hour, minute, nil
}

// SizeNumber strips everything but digits and dots from a display size
// ("15.8 GB" -> 15.8). Unparseable input yields 0.
func SizeNumber(size string) float64 {
	v, err := strconv.ParseFloat(nonNumRe.ReplaceAllString(size, ""), 64)
	if err != nil {
		return 0
	}
	return v
}
