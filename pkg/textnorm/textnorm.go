package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// numberRe extracts the first numeric token with an optional unit suffix
	// ("330 m", "5,5 km", "12ft"). The comma form is treated as a decimal
	// separator since post text is user-written prose.
	numberRe = regexp.MustCompile(`(-?\d+(?:[.,]\d+)?)\s*(m|km|cm|mm|ft|mi|kg|g|lb|mph|kmh|%|°c|°f)?\b`)
)

// Normalize lowercases, trims and collapses internal whitespace so rule
// matching is insensitive to formatting.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	return whitespaceRe.ReplaceAllString(s, " ")
}

// Number is a numeric token extracted from text.
type Number struct {
	Value float64
	Unit  string
}

// FirstNumber returns the first numeric token in the text, if any.
func FirstNumber(text string) (Number, bool) {
	m := numberRe.FindStringSubmatch(text)
	if m == nil {
		return Number{}, false
	}
	raw := strings.ReplaceAll(m[1], ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number{}, false
	}
	return Number{Value: v, Unit: m[2]}, true
}

// HasNumber reports whether the text contains any numeric token.
func HasNumber(text string) bool {
	return numberRe.MatchString(text)
}

// Truncate cuts a string to at most n bytes on a rune boundary. Used for the
// claim snippet persisted with each result.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
