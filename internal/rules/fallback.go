package rules

import "github.com/tanvir4425/Mask-App-sub001/internal/model"

// FallbackRules are hardcoded rules evaluated after the file-backed set.
// They cover a handful of evergreen claims so the pipeline produces sane
// verdicts even with no rule file deployed.
var FallbackRules = []Rule{
	{
		Type:       TypeContainsAny,
		Keywords:   []string{"the earth is flat", "earth is actually flat"},
		Verdict:    model.VerdictFalse,
		Confidence: 0.98,
	},
	{
		Type:       TypeContainsAll,
		Keywords:   []string{"vaccines", "autism"},
		Verdict:    model.VerdictFalse,
		Confidence: 0.95,
	},
	{
		Type:       TypeContainsAny,
		Keywords:   []string{"satire", "parody account", "/s"},
		Verdict:    model.VerdictSatire,
		Confidence: 0.7,
	},
	{
		Type:             TypeNumberRange,
		Patterns:         []string{"boiling point of water", "celsius"},
		TrueRange:        []float64{99, 101},
		TrueVerdict:      model.VerdictTrue,
		IfOutsideVerdict: model.VerdictFalse,
		ConfidenceTrue:   0.9,
		ConfidenceFalse:  0.85,
	},
}
