// filepath: internal/listview/parse.go
package listview

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Estimated-time buckets of the migrations page.
const (
	BucketShort  = "Short (<2h)"
	BucketMedium = "Medium (2-5h)"
	BucketLong   = "Long (>5h)"
)

// ParseLeadingFloat reads the numeric prefix of s the way a browser's
// parseFloat does: leading whitespace is skipped and trailing text ignored.
func ParseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	end := i

	// An exponent only counts when at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		// Out of range values come back as ±Inf.
		if errors.Is(err, strconv.ErrRange) {
			return v, true
		}
		return 0, false
	}
	return v, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// EstimatedTimeBucket reports whether a free-text duration such as "3 hours"
// falls into bucket. Unparseable durations match only All.
func EstimatedTimeBucket(estimated, bucket string) bool {
	if bucket == "" || bucket == All {
		return true
	}
	hours, ok := ParseLeadingFloat(estimated)
	if !ok {
		return false
	}
	switch bucket {
	case BucketShort:
		return hours < 2
	case BucketMedium:
		return hours >= 2 && hours <= 5
	case BucketLong:
		return hours > 5
	}
	return false
}

// Date ranges of the backups page.
const (
	RangeToday      = "Today"
	RangeYesterday  = "Yesterday"
	RangeLast7Days  = "Last 7 days"
	RangeLast30Days = "Last 30 days"
)

// DateRanges lists the selectable date ranges, All first.
var DateRanges = []string{All, RangeToday, RangeYesterday, RangeLast7Days, RangeLast30Days}

// DateRangeStart returns the earliest date a record may have to fall inside
// the named range. Today and Yesterday start at local midnight; the
// "Last N days" ranges count back from now. ok is false for All and unknown
// names.
func DateRangeStart(name string, now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch name {
	case RangeToday:
		return midnight, true
	case RangeYesterday:
		return midnight.AddDate(0, 0, -1), true
	case RangeLast7Days:
		return now.AddDate(0, 0, -7), true
	case RangeLast30Days:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}
