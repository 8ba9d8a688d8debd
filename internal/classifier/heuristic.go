package classifier

import (
	"regexp"
	"strings"

	"github.com/tanvir4425/Mask-App-sub001/pkg/textnorm"
)

const minClaimLength = 8

var (
	// subjectiveOpenerRe catches first-person openers that signal opinion
	// rather than checkable fact ("I think...", "we believe...").
	subjectiveOpenerRe = regexp.MustCompile(
		`^(i|we)('m|'re)?\s+(am|are|was|were|think|feel|believe|guess|hope|wish|love|hate|prefer)\b`)

	// copulaRe matches "X is/are/was/were Y" constructions.
	copulaRe = regexp.MustCompile(`\S\s+(is|are|was|were)\s+\S`)
)

// measurementWords are unit/measurement vocabulary that marks a sentence as
// a quantitative claim even without a digit ("a hundred meters tall").
var measurementWords = []string{
	"meter", "metre", "kilometer", "kilometre", "mile", "feet", "foot",
	"kilogram", "pound", "tonne", "degree", "celsius", "fahrenheit",
	"percent", "per cent", "billion", "million", "thousand", "hundred",
}

// LooksFactualClaim is a crude pre-filter deciding whether text is worth
// fact-checking at all. It rejects short or subjective text and accepts
// anything with a numeric token, measurement vocabulary, or a copula
// construction. It is a gate, not a verdict generator.
func LooksFactualClaim(text string) bool {
	norm := textnorm.Normalize(text)
	if len(norm) < minClaimLength {
		return false
	}
	if subjectiveOpenerRe.MatchString(norm) {
		return false
	}
	if textnorm.HasNumber(norm) {
		return true
	}
	for _, w := range measurementWords {
		if strings.Contains(norm, w) {
			return true
		}
	}
	return copulaRe.MatchString(norm)
}
