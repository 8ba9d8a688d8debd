package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/pkg/textnorm"
)

// Rule types recognized in the rule file.
const (
	TypeContainsAny = "containsAny"
	TypeContainsAll = "containsAll"
	TypeEquals      = "equals"
	TypeRegex       = "regex"
	TypeNumberRange = "numberRange"
)

// Rule is one declarative pattern matcher from the rule file. Which fields
// apply depends on Type; unused fields are ignored.
type Rule struct {
	Type     string   `json:"type" yaml:"type"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Flags    string   `json:"flags,omitempty" yaml:"flags,omitempty"`

	// numberRange fields. Patterns is the optional keyword gate; TrueRange
	// is [min, max] for the extracted numeric token.
	Patterns         []string      `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	TrueRange        []float64     `json:"trueRange,omitempty" yaml:"trueRange,omitempty"`
	TrueVerdict      model.Verdict `json:"trueVerdict,omitempty" yaml:"trueVerdict,omitempty"`
	IfOutsideVerdict model.Verdict `json:"ifOutsideVerdict,omitempty" yaml:"ifOutsideVerdict,omitempty"`
	ConfidenceTrue   float64       `json:"confidenceTrue,omitempty" yaml:"confidenceTrue,omitempty"`
	ConfidenceFalse  float64       `json:"confidenceFalse,omitempty" yaml:"confidenceFalse,omitempty"`

	Verdict    model.Verdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Confidence float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// compiled regex for TypeRegex, set during validation.
	re *regexp.Regexp
}

// Outcome is a rule hit: the verdict plus the claim snippet it applies to.
type Outcome struct {
	Verdict    model.Verdict
	Confidence float64
	Claim      string
}

// validate compiles regex rules and rejects rules that can never fire.
// A bad rule is an error here so it can be skipped at load time; match-time
// failures are additionally swallowed per rule.
func (r *Rule) validate() error {
	switch r.Type {
	case TypeContainsAny, TypeContainsAll:
		if len(r.Keywords) == 0 {
			return fmt.Errorf("%s rule without keywords", r.Type)
		}
	case TypeEquals:
		if r.Text == "" {
			return fmt.Errorf("equals rule without text")
		}
	case TypeRegex:
		src := r.Pattern
		if strings.Contains(r.Flags, "i") {
			src = "(?i)" + src
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return fmt.Errorf("regex rule: %w", err)
		}
		r.re = re
	case TypeNumberRange:
		if len(r.TrueRange) != 2 {
			return fmt.Errorf("numberRange rule needs trueRange [min, max]")
		}
	default:
		return fmt.Errorf("unknown rule type %q", r.Type)
	}
	return nil
}

// match applies a single rule to normalized text. It never panics: any
// unexpected failure is recovered and treated as a non-match.
func (r *Rule) match(norm string) (out *Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
		}
	}()

	switch r.Type {
	case TypeContainsAny:
		for _, kw := range r.Keywords {
			if strings.Contains(norm, textnorm.Normalize(kw)) {
				return &Outcome{Verdict: r.Verdict, Confidence: r.Confidence, Claim: norm}
			}
		}
	case TypeContainsAll:
		for _, kw := range r.Keywords {
			if !strings.Contains(norm, textnorm.Normalize(kw)) {
				return nil
			}
		}
		return &Outcome{Verdict: r.Verdict, Confidence: r.Confidence, Claim: norm}
	case TypeEquals:
		if norm == textnorm.Normalize(r.Text) {
			return &Outcome{Verdict: r.Verdict, Confidence: r.Confidence, Claim: norm}
		}
	case TypeRegex:
		if r.re != nil && r.re.MatchString(norm) {
			return &Outcome{Verdict: r.Verdict, Confidence: r.Confidence, Claim: norm}
		}
	case TypeNumberRange:
		return r.matchNumberRange(norm)
	}
	return nil
}

func (r *Rule) matchNumberRange(norm string) *Outcome {
	// Optional keyword gate: all gate words must be present.
	for _, p := range r.Patterns {
		if !strings.Contains(norm, textnorm.Normalize(p)) {
			return nil
		}
	}

	num, ok := textnorm.FirstNumber(norm)
	if !ok {
		// No numeric token: the rule does not fire at all.
		return nil
	}

	if num.Value >= r.TrueRange[0] && num.Value <= r.TrueRange[1] {
		conf := r.ConfidenceTrue
		if conf == 0 {
			conf = r.Confidence
		}
		return &Outcome{Verdict: r.TrueVerdict, Confidence: conf, Claim: norm}
	}

	conf := r.ConfidenceFalse
	if conf == 0 {
		conf = r.Confidence
	}
	return &Outcome{Verdict: r.IfOutsideVerdict, Confidence: conf, Claim: norm}
}

// Match evaluates the rule list against the text in file order. The first
// matching rule wins; there is no scoring across rules.
func Match(ruleList []Rule, text string) *Outcome {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return nil
	}
	for i := range ruleList {
		if out := ruleList[i].match(norm); out != nil {
			return out
		}
	}
	return nil
}
