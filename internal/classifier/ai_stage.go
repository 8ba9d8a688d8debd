package classifier

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/pkg/textnorm"
)

// AIStageConfig holds the gates in front of the generative-model call.
type AIStageConfig struct {
	Enabled    bool
	Force      bool   // skip the looks-factual gate for every post
	DemoOnly   bool   // only posts carrying TriggerTag are eligible
	TriggerTag string
}

// AIStage wraps the Gemini adapter behind the rate budget and eligibility
// gates. A skipped gate means ran=false; a real call that fails means
// ran=true with no result, so the cascade can still fall through.
type AIStage struct {
	Gemini *Gemini
	Budget Budget
	Config AIStageConfig
	Log    zerolog.Logger

	// OnCall and OnBudgetSkip are optional metric hooks.
	OnCall       func(outcome string)
	OnBudgetSkip func()
}

func (s *AIStage) Name() string { return "ai" }

func (s *AIStage) Attempt(ctx context.Context, in Input) (*Result, bool) {
	if !s.Config.Enabled || s.Gemini == nil || !s.Gemini.Available() {
		return nil, false
	}

	text := in.Post.Text
	if s.Config.DemoOnly && !strings.Contains(strings.ToLower(text), strings.ToLower(s.Config.TriggerTag)) {
		return nil, false
	}

	// Only spend budget on text that plausibly contains a checkable claim,
	// unless an admin or caller forces the call.
	if !s.Config.Force && !in.Hint.ForceAI && !LooksFactualClaim(text) {
		return nil, false
	}

	if !in.Hint.ForceOverride && !s.Budget.Allow() {
		s.Log.Debug().Str("post", in.Post.PostID).Msg("ai: budget exhausted, skipping")
		if s.OnBudgetSkip != nil {
			s.OnBudgetSkip()
		}
		return nil, false
	}

	imageURL := ""
	if in.Post.ImageURL != nil {
		imageURL = *in.Post.ImageURL
	}

	res, fail := s.Gemini.Classify(ctx, text, imageURL)
	if fail != nil {
		s.Log.Warn().
			Str("post", in.Post.PostID).
			Str("code", fail.Code).
			Str("detail", fail.Detail).
			Msg("ai: classification failed")
		if s.OnCall != nil {
			s.OnCall(fail.Code)
		}
		return nil, true
	}
	if s.OnCall != nil {
		s.OnCall("ok")
	}

	out := &Result{
		Verdict:    res.Verdict,
		Confidence: res.Confidence,
		Claim:      textnorm.Truncate(textnorm.Normalize(text), claimLimit),
		Model:      s.Gemini.ModelTag(),
	}
	if res.Explanation != "" {
		out.Evidence = []model.Evidence{{
			Title:   "model explanation",
			Snippet: res.Explanation,
			Stance:  model.StanceNeutral,
		}}
	}
	return out, true
}
