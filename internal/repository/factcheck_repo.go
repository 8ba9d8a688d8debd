package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

type FactCheckRepo struct {
	pool *pgxpool.Pool
}

func NewFactCheckRepo(pool *pgxpool.Pool) *FactCheckRepo {
	return &FactCheckRepo{pool: pool}
}

// Insert appends one classification result. Results are append-only; the
// caller never updates or deletes rows.
func (r *FactCheckRepo) Insert(ctx context.Context, res *model.FactCheckResult) error {
	evidence, err := json.Marshal(res.Evidence)
	if err != nil {
		return err
	}
	if res.Evidence == nil {
		evidence = []byte("[]")
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO factcheck_results (post_id, claim, verdict, confidence, evidence, model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		res.PostID, res.Claim, string(res.Verdict), res.Confidence, evidence, res.Model,
	).Scan(&res.ID, &res.CreatedAt)
}

// LatestForPost returns the current verdict row for a post, or nil if the
// post has never been checked. Absence is a normal pending state.
func (r *FactCheckRepo) LatestForPost(ctx context.Context, postID string) (*model.FactCheckResult, error) {
	var res model.FactCheckResult
	var verdict string
	var evidence []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, post_id, claim, verdict, confidence, evidence, model, created_at
		FROM factcheck_results
		WHERE post_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, postID,
	).Scan(&res.ID, &res.PostID, &res.Claim, &verdict, &res.Confidence, &evidence, &res.Model, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res.Verdict = model.Verdict(verdict)
	if len(evidence) > 0 {
		if jerr := json.Unmarshal(evidence, &res.Evidence); jerr != nil {
			res.Evidence = nil
		}
	}
	return &res, nil
}

// StaleUnverified returns post IDs whose latest result is still "unverified"
// and at least as old as the cutoff, oldest first, bounded by limit. Posts
// with a resolved latest verdict never appear.
func (r *FactCheckRepo) StaleUnverified(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT post_id FROM (
			SELECT DISTINCT ON (post_id) post_id, verdict, created_at
			FROM factcheck_results
			ORDER BY post_id, created_at DESC
		) latest
		WHERE verdict = 'unverified' AND created_at <= $1
		ORDER BY created_at ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// VerdictCounts aggregates the latest verdict per post across all posts by
// one author. This is the input to the trust calculator; the snapshot must
// stay a pure function of these counts.
type VerdictCounts struct {
	Checked    int
	True       int
	False      int
	Misleading int
}

func (r *FactCheckRepo) CountForAuthor(ctx context.Context, subjectType model.SubjectType, subjectID string) (VerdictCounts, error) {
	var c VerdictCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verdict = 'true'),
			COUNT(*) FILTER (WHERE verdict = 'false'),
			COUNT(*) FILTER (WHERE verdict = 'misleading')
		FROM (
			SELECT DISTINCT ON (r.post_id) r.post_id, r.verdict
			FROM factcheck_results r
			JOIN posts p ON p.post_id = r.post_id
			WHERE p.author_id = $1 AND p.author_type = $2
			ORDER BY r.post_id, r.created_at DESC
		) latest`,
		subjectID, string(subjectType),
	).Scan(&c.Checked, &c.True, &c.False, &c.Misleading)
	return c, err
}
