package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// memRetentionStore is an in-memory RetentionStore enforcing the same
// monotonicity guards as the SQL repository: permanent is final, an expiry
// never moves earlier, a baseline TTL only lands on posts without one.
type memRetentionStore struct {
	posts map[string]*model.Post
}

func (m *memRetentionStore) RetentionCandidates(context.Context, time.Time, time.Duration, int) ([]model.Post, error) {
	var out []model.Post
	for _, p := range m.posts {
		if !p.Permanent {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memRetentionStore) MakePermanent(_ context.Context, postID string) (bool, error) {
	p := m.posts[postID]
	if p.Permanent {
		return false, nil
	}
	p.Permanent = true
	p.ExpiresAt = nil
	return true, nil
}

func (m *memRetentionStore) ExtendExpiry(_ context.Context, postID string, until time.Time) (bool, error) {
	p := m.posts[postID]
	if p.Permanent || (p.ExpiresAt != nil && !p.ExpiresAt.Before(until)) {
		return false, nil
	}
	p.ExpiresAt = &until
	return true, nil
}

func (m *memRetentionStore) SetBaselineTTL(_ context.Context, postID string, until time.Time) (bool, error) {
	p := m.posts[postID]
	if p.Permanent || p.ExpiresAt != nil {
		return false, nil
	}
	p.ExpiresAt = &until
	return true, nil
}

func retentionFixture(posts ...*model.Post) (*RetentionWorker, *memRetentionStore) {
	store := &memRetentionStore{posts: make(map[string]*model.Post)}
	for _, p := range posts {
		store.posts[p.PostID] = p
	}
	cfg := config.RetentionConfig{
		Interval:    time.Hour,
		BaseTTL:     72 * time.Hour,
		T1Reactions: 25,
		T1Comments:  10,
		T1Extend:    30 * 24 * time.Hour,
		T2Reactions: 100,
		T2Comments:  40,
	}
	return NewRetentionWorker(cfg, store, zerolog.Nop()), store
}

func TestRetentionApply_TierSelection(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		post     model.Post
		wantKind string
	}{
		{"admin author is permanent", model.Post{PostID: "p", IsAdminAuthor: true, CreatedAt: created}, "permanent"},
		{"tier-2 by reactions", model.Post{PostID: "p", ReactionCount: 100, CreatedAt: created}, "permanent"},
		{"tier-2 by comments", model.Post{PostID: "p", CommentCount: 40, CreatedAt: created}, "permanent"},
		{"tier-1 by reactions", model.Post{PostID: "p", ReactionCount: 25, CreatedAt: created}, "extended"},
		{"tier-1 by comments", model.Post{PostID: "p", CommentCount: 10, CreatedAt: created}, "extended"},
		{"no engagement gets baseline", model.Post{PostID: "p", ReactionCount: 3, CreatedAt: created}, "baseline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := tt.post
			w, store := retentionFixture(&post)

			changed, kind, err := w.Apply(context.Background(), &post)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !changed || kind != tt.wantKind {
				t.Fatalf("Apply = (%v, %q), want (true, %q)", changed, kind, tt.wantKind)
			}

			got := store.posts["p"]
			switch tt.wantKind {
			case "permanent":
				if !got.Permanent || got.ExpiresAt != nil {
					t.Errorf("post = permanent:%v expires:%v, want permanent with no expiry", got.Permanent, got.ExpiresAt)
				}
			case "extended":
				want := created.Add(30 * 24 * time.Hour)
				if got.ExpiresAt == nil || !got.ExpiresAt.Equal(want) {
					t.Errorf("expiry = %v, want %v", got.ExpiresAt, want)
				}
			case "baseline":
				want := created.Add(72 * time.Hour)
				if got.ExpiresAt == nil || !got.ExpiresAt.Equal(want) {
					t.Errorf("expiry = %v, want %v", got.ExpiresAt, want)
				}
			}
		})
	}
}

func TestRetentionApply_SecondPassIsFixpoint(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		post model.Post
	}{
		{"permanent", model.Post{PostID: "p", ReactionCount: 150, CreatedAt: created}},
		{"extended", model.Post{PostID: "p", ReactionCount: 30, CreatedAt: created}},
		{"baseline", model.Post{PostID: "p", CreatedAt: created}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := tt.post
			w, store := retentionFixture(&post)

			changed, _, err := w.Apply(context.Background(), &post)
			if err != nil || !changed {
				t.Fatalf("first Apply = (%v, %v), want a change", changed, err)
			}

			// No new engagement: re-applying to the stored state must be a no-op.
			again := *store.posts["p"]
			changed, _, err = w.Apply(context.Background(), &again)
			if err != nil {
				t.Fatalf("second Apply: %v", err)
			}
			if changed {
				t.Fatal("second Apply without new engagement changed the post")
			}
		})
	}
}

func TestRetentionApply_Monotone(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// A post already extended to tier 1 gains tier-2 engagement: it may only
	// move forward, to permanent.
	post := model.Post{PostID: "p", ReactionCount: 30, CreatedAt: created}
	w, store := retentionFixture(&post)
	if _, _, err := w.Apply(context.Background(), &post); err != nil {
		t.Fatal(err)
	}

	grown := *store.posts["p"]
	grown.ReactionCount = 120
	changed, kind, err := w.Apply(context.Background(), &grown)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || kind != "permanent" {
		t.Fatalf("Apply after engagement growth = (%v, %q), want promotion to permanent", changed, kind)
	}

	// An expiry already past the tier-1 target never moves earlier.
	far := created.Add(365 * 24 * time.Hour)
	post2 := model.Post{PostID: "q", ReactionCount: 30, CreatedAt: created, ExpiresAt: &far}
	w2, store2 := retentionFixture(&post2)
	changed, _, err = w2.Apply(context.Background(), &post2)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("Apply shortened an expiry that was already later than the tier target")
	}
	if got := store2.posts["q"].ExpiresAt; got == nil || !got.Equal(far) {
		t.Fatalf("expiry = %v, want unchanged %v", got, far)
	}
}
