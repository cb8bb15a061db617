package shared

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Palette holds the avatar colors assigned to users, repositories and migrations.
var Palette = []string{
	"bg-teal-500",
	"bg-orange-500",
	"bg-indigo-500",
	"bg-purple-500",
	"bg-blue-500",
	"bg-green-500",
	"bg-pink-500",
	"bg-red-500",
}

// ColorFor picks a palette entry deterministically from a name.
func ColorFor(name string) string {
	var sum int
	for _, r := range name {
		sum += int(r)
	}
	return Palette[sum%len(Palette)]
}

// Initials returns the upper-cased first letter of every word.
func Initials(fullName string) string {
	var b strings.Builder
	for _, word := range strings.Fields(fullName) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
