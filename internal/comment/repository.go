// Package comment manages comments left on board posts.
package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/navidved/bulletin/internal/db"
)

// Comment is a member's remark on a post.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	MemberID   string    `json:"memberId"`
	NickName   string    `json:"nickName"`
	Comment    string    `json:"comment"`
	InsertedAt time.Time `json:"insertedAt"`
}

// ErrNotFound is returned when a comment does not exist.
var ErrNotFound = errors.New("comment not found")

// ErrPostNotFound is returned when commenting on a post that does not exist.
var ErrPostNotFound = errors.New("post not found")

// Repository handles comment persistence.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new comment Repository.
func NewRepository(pool db.DBTX) *Repository {
	return &Repository{db: pool}
}

// Create inserts a comment and returns its id.
func (r *Repository) Create(ctx context.Context, postID int64, memberID, text string) (int64, error) {
	var id int64
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO comments (post_id, member_id, comment)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		postID, memberID, text,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return 0, ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}
	return id, nil
}

// GetByID fetches a single comment.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	c := &Comment{}
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT c.id, c.post_id, c.member_id, m.nick_name, c.comment, c.inserted_at
		 FROM comments c JOIN members m ON m.email = c.member_id
		 WHERE c.id = $1`,
		id,
	).Scan(&c.ID, &c.PostID, &c.MemberID, &c.NickName, &c.Comment, &c.InsertedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// ListByPostID returns a post's comments, oldest first.
func (r *Repository) ListByPostID(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := db.Executor(ctx, r.db).Query(ctx,
		`SELECT c.id, c.post_id, c.member_id, m.nick_name, c.comment, c.inserted_at
		 FROM comments c JOIN members m ON m.email = c.member_id
		 WHERE c.post_id = $1
		 ORDER BY c.id`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.MemberID, &c.NickName, &c.Comment, &c.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteByID removes a single comment.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := db.Executor(ctx, r.db).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByPostID removes every comment of a post.
func (r *Repository) DeleteByPostID(ctx context.Context, postID int64) error {
	if _, err := db.Executor(ctx, r.db).Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete comments of post: %w", err)
	}
	return nil
}

// isForeignKeyViolation checks for PostgreSQL foreign_key_violation (code 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
