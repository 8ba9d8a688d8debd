package classifier

import (
	"context"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/rules"
	"github.com/tanvir4425/Mask-App-sub001/pkg/textnorm"
)

// Input is what a stage gets to look at when classifying a post.
type Input struct {
	Post *model.Post
	Hint model.EnqueueHint
}

// Result is a stage's verdict for a post.
type Result struct {
	Verdict    model.Verdict
	Confidence float64
	Claim      string
	Evidence   []model.Evidence
	Model      string
}

// Stage is one classification technique in the cascade. Attempt returns the
// verdict (or nil if the stage ran but produced nothing) and whether the
// stage actually ran. ran=false means the stage was skipped outright
// (disabled, gated, out of budget) — the distinction feeds the
// no-result-if-skipped policy.
type Stage interface {
	Name() string
	Attempt(ctx context.Context, in Input) (res *Result, ran bool)
}

// claimLimit bounds the claim snippet persisted with a result.
const claimLimit = 280

// FileRulesStage evaluates the hot-reloaded rule file.
type FileRulesStage struct {
	Store   *rules.Store
	Enabled bool
}

func (s *FileRulesStage) Name() string { return "rules-file" }

func (s *FileRulesStage) Attempt(_ context.Context, in Input) (*Result, bool) {
	if !s.Enabled || s.Store == nil {
		return nil, false
	}
	out := s.Store.Match(in.Post.Text)
	if out == nil {
		return nil, true
	}
	return &Result{
		Verdict:    out.Verdict,
		Confidence: out.Confidence,
		Claim:      textnorm.Truncate(out.Claim, claimLimit),
		Model:      "rules-file-v1",
	}, true
}

// BuiltinRulesStage evaluates the hardcoded fallback rule list.
type BuiltinRulesStage struct {
	Enabled bool
}

func (s *BuiltinRulesStage) Name() string { return "rules-builtin" }

func (s *BuiltinRulesStage) Attempt(_ context.Context, in Input) (*Result, bool) {
	if !s.Enabled {
		return nil, false
	}
	out := rules.Match(rules.FallbackRules, in.Post.Text)
	if out == nil {
		return nil, true
	}
	return &Result{
		Verdict:    out.Verdict,
		Confidence: out.Confidence,
		Claim:      textnorm.Truncate(out.Claim, claimLimit),
		Model:      "rules-builtin-v1",
	}, true
}

// HeuristicStage is the last-resort local stage: if the text looks like a
// checkable factual claim but nothing upstream could verify it, it records
// an explicit low-confidence "unverified" so the re-check scheduler will
// revisit the post later.
type HeuristicStage struct {
	Enabled bool
}

func (s *HeuristicStage) Name() string { return "heuristic" }

func (s *HeuristicStage) Attempt(_ context.Context, in Input) (*Result, bool) {
	if !s.Enabled {
		return nil, false
	}
	if !LooksFactualClaim(in.Post.Text) {
		return nil, true
	}
	return &Result{
		Verdict:    model.VerdictUnverified,
		Confidence: 0.6,
		Claim:      textnorm.Truncate(textnorm.Normalize(in.Post.Text), claimLimit),
		Model:      "heuristic-v1",
	}, true
}
