package model

import "time"

// Post is the read model for the upstream posts table. This subsystem reads
// everything and writes only the retention fields (Permanent, ExpiresAt).
type Post struct {
	PostID            string      `json:"postId"`
	AuthorID          string      `json:"authorId"`
	AuthorType        SubjectType `json:"authorType"`
	Text              string      `json:"text"`
	ImageURL          *string     `json:"imageUrl,omitempty"`
	ReactionCount     int         `json:"reactionCount"`
	UniqueReactors    int         `json:"uniqueReactors"`
	CommentCount      int         `json:"commentCount"`
	IsAdminAuthor     bool        `json:"-"`
	Permanent         bool        `json:"permanent"`
	ExpiresAt         *time.Time  `json:"expiresAt,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// PostCreatedEvent is the request body posted by the post-creation handler.
type PostCreatedEvent struct {
	PostID string `json:"postId"`
}

// ReactionEvent is the request body posted when a post's reaction counters
// change. Counts are the post-mutation totals, not deltas.
type ReactionEvent struct {
	PostID         string `json:"postId"`
	ReactionCount  int    `json:"reactionCount"`
	UniqueReactors int    `json:"uniqueReactors"`
}
