package model

import "time"

// SubjectType identifies what kind of entity a trust snapshot belongs to.
type SubjectType string

const (
	SubjectUser SubjectType = "user"
	SubjectPage SubjectType = "page"
)

// ValidSubjectTypes is the allow-list for API path parameters.
var ValidSubjectTypes = map[SubjectType]bool{
	SubjectUser: true,
	SubjectPage: true,
}

// Trust tier names, ordered by statistical reliability of the score.
type TrustTier string

const (
	TierProvisional TrustTier = "provisional"
	TierLow         TrustTier = "low"
	TierNormal      TrustTier = "normal"
	TierHigh        TrustTier = "high"
)

// TrustSnapshot is the aggregated trust state for one subject. There is at
// most one row per (subjectType, subject); it is always derivable from the
// FactCheckResult population for that subject's posts and never mutated
// independently.
type TrustSnapshot struct {
	SubjectType     SubjectType `json:"subjectType"`
	SubjectID       string      `json:"subjectId"`
	PostsChecked    int         `json:"postsChecked"`
	PostsTrue       int         `json:"postsTrue"`
	PostsFalse      int         `json:"postsFalse"`
	PostsMisleading int         `json:"postsMisleading"`
	Score           int         `json:"score"`
	ConfLow         int         `json:"confLow"`
	ConfHigh        int         `json:"confHigh"`
	Tier            TrustTier   `json:"tier"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TrustResponse is the API response for a trust lookup. Unscored subjects
// get the prior mean with a provisional tier rather than a 404.
type TrustResponse struct {
	SubjectType  SubjectType `json:"subjectType"`
	SubjectID    string      `json:"subjectId"`
	Score        int         `json:"score"`
	ConfLow      int         `json:"confLow"`
	ConfHigh     int         `json:"confHigh"`
	Tier         TrustTier   `json:"tier"`
	PostsChecked int         `json:"postsChecked"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}
