package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// retentionScanLimit bounds how many candidate posts one tick will walk.
const retentionScanLimit = 500

// RetentionStore is the slice of the post repository the worker needs. The
// update methods report whether the row actually changed and must enforce
// the monotonicity guards (expiry never moves earlier, permanent is final).
type RetentionStore interface {
	RetentionCandidates(ctx context.Context, createdSince time.Time, expiresWithin time.Duration, limit int) ([]model.Post, error)
	MakePermanent(ctx context.Context, postID string) (bool, error)
	ExtendExpiry(ctx context.Context, postID string, until time.Time) (bool, error)
	SetBaselineTTL(ctx context.Context, postID string, until time.Time) (bool, error)
}

// RetentionWorker adjusts post lifetimes from engagement tiers. Every
// transition moves a post toward longer-lived or permanent. The store's
// guards make it impossible to shorten an expiry, so applying a tick twice
// without new engagement is a fixpoint.
type RetentionWorker struct {
	cfg   config.RetentionConfig
	posts RetentionStore
	log   zerolog.Logger
}

func NewRetentionWorker(cfg config.RetentionConfig, posts RetentionStore, log zerolog.Logger) *RetentionWorker {
	return &RetentionWorker{cfg: cfg, posts: posts, log: log}
}

// Job wraps the worker in the shared batch-job runner.
func (w *RetentionWorker) Job() *BatchJob {
	return &BatchJob{
		Name:       "retention",
		Interval:   w.cfg.Interval,
		RunOnStart: true,
		Log:        w.log,
		Tick:       w.Tick,
	}
}

// Tick runs one retention pass over recently-created and soon-to-expire
// posts.
func (w *RetentionWorker) Tick(ctx context.Context) error {
	createdSince := time.Now().Add(-2 * w.cfg.Interval)
	candidates, err := w.posts.RetentionCandidates(ctx, createdSince, 2*w.cfg.Interval, retentionScanLimit)
	if err != nil {
		return err
	}

	var promoted, extended, baselined int
	for i := range candidates {
		changed, kind, err := w.Apply(ctx, &candidates[i])
		if err != nil {
			w.log.Warn().Err(err).Str("post", candidates[i].PostID).Msg("retention: update failed")
			continue
		}
		if !changed {
			continue
		}
		switch kind {
		case "permanent":
			promoted++
		case "extended":
			extended++
		case "baseline":
			baselined++
		}
	}

	if promoted+extended+baselined > 0 {
		w.log.Info().
			Int("permanent", promoted).
			Int("extended", extended).
			Int("baseline", baselined).
			Msg("retention: tick complete")
	}
	return nil
}

// Apply classifies one post into its retention tier and applies the
// corresponding (monotone) transition.
func (w *RetentionWorker) Apply(ctx context.Context, p *model.Post) (changed bool, kind string, err error) {
	switch {
	case p.IsAdminAuthor,
		p.ReactionCount >= w.cfg.T2Reactions,
		p.CommentCount >= w.cfg.T2Comments:
		changed, err = w.posts.MakePermanent(ctx, p.PostID)
		return changed, "permanent", err

	case p.ReactionCount >= w.cfg.T1Reactions,
		p.CommentCount >= w.cfg.T1Comments:
		changed, err = w.posts.ExtendExpiry(ctx, p.PostID, p.CreatedAt.Add(w.cfg.T1Extend))
		return changed, "extended", err

	case p.ExpiresAt == nil:
		changed, err = w.posts.SetBaselineTTL(ctx, p.PostID, p.CreatedAt.Add(w.cfg.BaseTTL))
		return changed, "baseline", err
	}
	return false, "", nil
}
