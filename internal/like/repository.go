// Package like manages members' likes on board posts.
package like

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/navidved/bulletin/internal/db"
)

// ErrPostNotFound is returned when liking a post that does not exist.
var ErrPostNotFound = errors.New("post not found")

// Repository handles like persistence.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new like Repository.
func NewRepository(pool db.DBTX) *Repository {
	return &Repository{db: pool}
}

// Insert records that member likes the post.
func (r *Repository) Insert(ctx context.Context, postID int64, memberID string) error {
	_, err := db.Executor(ctx, r.db).Exec(ctx,
		`INSERT INTO post_likes (post_id, member_id) VALUES ($1, $2)
		 ON CONFLICT (post_id, member_id) DO NOTHING`,
		postID, memberID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Delete removes member's like and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, postID int64, memberID string) (bool, error) {
	tag, err := db.Executor(ctx, r.db).Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND member_id = $2`,
		postID, memberID,
	)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether member likes the post.
func (r *Repository) Exists(ctx context.Context, postID int64, memberID string) (bool, error) {
	var exists bool
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND member_id = $2)`,
		postID, memberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// CountByPostID returns the number of likes on a post.
func (r *Repository) CountByPostID(ctx context.Context, postID int64) (int, error) {
	var n int
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`,
		postID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

// DeleteByPostID removes every like of a post.
func (r *Repository) DeleteByPostID(ctx context.Context, postID int64) error {
	if _, err := db.Executor(ctx, r.db).Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete likes of post: %w", err)
	}
	return nil
}
