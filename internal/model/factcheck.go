package model

import "time"

// Verdict is the closed set of classification outcomes for a fact-check.
type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictMisleading Verdict = "misleading"
	VerdictUnverified Verdict = "unverified"
	VerdictOpinion    Verdict = "opinion"
	VerdictOutdated   Verdict = "outdated"
	VerdictSatire     Verdict = "satire"
)

// ValidVerdicts is the allow-list used when validating model output.
var ValidVerdicts = map[Verdict]bool{
	VerdictTrue:       true,
	VerdictFalse:      true,
	VerdictMisleading: true,
	VerdictUnverified: true,
	VerdictOpinion:    true,
	VerdictOutdated:   true,
	VerdictSatire:     true,
}

// Resolved reports whether a verdict is terminal. Once a post has a resolved
// verdict the pipeline refuses to reprocess it.
func (v Verdict) Resolved() bool {
	return v != "" && v != VerdictUnverified
}

// Stance of a piece of evidence relative to the claim.
const (
	StanceSupport = "support"
	StanceRefute  = "refute"
	StanceNeutral = "neutral"
)

// Evidence is one citation attached to a fact-check result.
type Evidence struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Stance  string `json:"stance"`
}

// FactCheckResult is one classification event for a post. Results are
// append-only; the row with the latest CreatedAt is the current verdict.
type FactCheckResult struct {
	ID         int64      `json:"id"`
	PostID     string     `json:"postId"`
	Claim      string     `json:"claim"`
	Verdict    Verdict    `json:"verdict"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence,omitempty"`
	Model      string     `json:"model"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// FactCheckResponse is the API response for a post's verdict badge.
// A post with no result yet is a normal pending state, not an error.
type FactCheckResponse struct {
	PostID     string     `json:"postId"`
	Checked    bool       `json:"checked"`
	Verdict    Verdict    `json:"verdict,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Claim      string     `json:"claim,omitempty"`
	Evidence   []Evidence `json:"evidence,omitempty"`
	Model      string     `json:"model,omitempty"`
	CheckedAt  string     `json:"checkedAt,omitempty"`
}

// EnqueueHint carries soft flags alongside an enqueue request. Hints
// influence stage gating but never bypass the AI budget unless the admin
// force-override is set.
type EnqueueHint struct {
	ForceAI       bool   `json:"forceAI,omitempty"`
	ForceOverride bool   `json:"forceOverride,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Job is the ephemeral unit of work carried by a queue backend.
type Job struct {
	PostID string      `json:"postId"`
	Hint   EnqueueHint `json:"hint"`
}
