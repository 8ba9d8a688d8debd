package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

type TrustRepo struct {
	pool *pgxpool.Pool
}

func NewTrustRepo(pool *pgxpool.Pool) *TrustRepo {
	return &TrustRepo{pool: pool}
}

// Upsert writes the snapshot atomically, keyed by (subject_type, subject_id).
// ON CONFLICT keeps concurrent recomputes from creating duplicate rows; last
// writer wins, which is safe because the snapshot is derivable at any time.
func (r *TrustRepo) Upsert(ctx context.Context, s *model.TrustSnapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trust_snapshots
			(subject_type, subject_id, posts_checked, posts_true, posts_false,
			 posts_misleading, score, conf_low, conf_high, tier, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (subject_type, subject_id) DO UPDATE SET
			posts_checked    = EXCLUDED.posts_checked,
			posts_true       = EXCLUDED.posts_true,
			posts_false      = EXCLUDED.posts_false,
			posts_misleading = EXCLUDED.posts_misleading,
			score            = EXCLUDED.score,
			conf_low         = EXCLUDED.conf_low,
			conf_high        = EXCLUDED.conf_high,
			tier             = EXCLUDED.tier,
			updated_at       = NOW()`,
		string(s.SubjectType), s.SubjectID, s.PostsChecked, s.PostsTrue, s.PostsFalse,
		s.PostsMisleading, s.Score, s.ConfLow, s.ConfHigh, string(s.Tier))
	return err
}

// Find returns the snapshot for a subject, or nil if the subject has never
// been scored.
func (r *TrustRepo) Find(ctx context.Context, subjectType model.SubjectType, subjectID string) (*model.TrustSnapshot, error) {
	var s model.TrustSnapshot
	var st, tier string

	err := r.pool.QueryRow(ctx, `
		SELECT subject_type, subject_id, posts_checked, posts_true, posts_false,
		       posts_misleading, score, conf_low, conf_high, tier, updated_at
		FROM trust_snapshots
		WHERE subject_type = $1 AND subject_id = $2`,
		string(subjectType), subjectID,
	).Scan(&st, &s.SubjectID, &s.PostsChecked, &s.PostsTrue, &s.PostsFalse,
		&s.PostsMisleading, &s.Score, &s.ConfLow, &s.ConfHigh, &tier, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.SubjectType = model.SubjectType(st)
	s.Tier = model.TrustTier(tier)
	return &s, nil
}
