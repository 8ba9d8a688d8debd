package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// PostRepo reads the upstream posts table. The only columns this subsystem
// writes are the retention fields (permanent, expires_at).
type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

const postColumns = `post_id, author_id, author_type, text, image_url,
	reaction_count, unique_reactor_count, comment_count, is_admin_author,
	permanent, expires_at, created_at`

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	var authorType string
	err := row.Scan(&p.PostID, &p.AuthorID, &authorType, &p.Text, &p.ImageURL,
		&p.ReactionCount, &p.UniqueReactors, &p.CommentCount, &p.IsAdminAuthor,
		&p.Permanent, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.AuthorType = model.SubjectType(authorType)
	return &p, nil
}

// FindByID returns a post, or nil if it does not exist. A missing post is
// routine (deleted mid-flight) and must not surface as an error.
func (r *PostRepo) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE post_id = $1`, postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Unchecked returns posts that have no fact-check result at all, newest
// first. Used by the admin run-all trigger.
func (r *PostRepo) Unchecked(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.post_id
		FROM posts p
		LEFT JOIN factcheck_results r ON r.post_id = p.post_id
		WHERE r.id IS NULL
		ORDER BY p.created_at DESC
		LIMIT $1`, limit)
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

// RetentionCandidates returns non-permanent posts that are newly created or
// expire within the given window. The retention worker walks these each tick.
func (r *PostRepo) RetentionCandidates(ctx context.Context, createdSince time.Time, expiresWithin time.Duration, limit int) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE permanent = false
		  AND (created_at >= $1
		       OR expires_at IS NULL
		       OR expires_at <= NOW() + $2::interval)
		ORDER BY created_at ASC
		LIMIT $3`,
		createdSince, expiresWithin.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// MakePermanent marks a post as never expiring. Returns true if the row
// actually changed (already-permanent posts are a no-op).
func (r *PostRepo) MakePermanent(ctx context.Context, postID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts SET permanent = true, expires_at = NULL
		WHERE post_id = $1 AND permanent = false`, postID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ExtendExpiry moves a post's expiration later. The WHERE clause enforces
// the retention monotonicity invariant: the expiry can never move earlier.
func (r *PostRepo) ExtendExpiry(ctx context.Context, postID string, until time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts SET expires_at = $2
		WHERE post_id = $1 AND permanent = false
		  AND (expires_at IS NULL OR expires_at < $2)`, postID, until)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetBaselineTTL sets an expiry only on posts that have none yet.
func (r *PostRepo) SetBaselineTTL(ctx context.Context, postID string, until time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts SET expires_at = $2
		WHERE post_id = $1 AND permanent = false AND expires_at IS NULL`,
		postID, until)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
