package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/navidved/bulletin/internal/db"
)

// Repository is the PostgreSQL PostStore. Queries join the caller's
// transaction when the context carries one.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new post Repository.
func NewRepository(pool db.DBTX) *Repository {
	return &Repository{db: pool}
}

// Save inserts or updates p and returns the stored record.
func (r *Repository) Save(ctx context.Context, p Post) (Post, error) {
	q := db.Executor(ctx, r.db)
	if p.ID == 0 {
		err := q.QueryRow(ctx,
			`INSERT INTO posts (title, content, author)
			 VALUES ($1, $2, $3)
			 RETURNING id, inserted_at`,
			p.Title, p.Content, p.Author,
		).Scan(&p.ID, &p.InsertedAt)
		if err != nil {
			return Post{}, fmt.Errorf("insert post: %w", err)
		}
		return p, nil
	}

	err := q.QueryRow(ctx,
		`UPDATE posts SET title = $2, content = $3
		 WHERE id = $1
		 RETURNING author, inserted_at`,
		p.ID, p.Title, p.Content,
	).Scan(&p.Author, &p.InsertedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// FindByID fetches a post row.
func (r *Repository) FindByID(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT id, title, content, author, inserted_at
		 FROM posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.InsertedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// FindDetail fetches a post with its writer nickname and child counts.
func (r *Repository) FindDetail(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT p.id, p.title, p.content, p.author, m.nick_name, p.inserted_at,
		        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		        (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
		 FROM posts p
		 JOIN members m ON m.email = p.author
		 WHERE p.id = $1`,
		id,
	).Scan(&d.ID, &d.Title, &d.Content, &d.Author, &d.Writer, &d.InsertedAt,
		&d.NumberOfComments, &d.NumberOfLikes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, fmt.Errorf("find post detail: %w", err)
	}
	return d, nil
}

// DeleteByID removes a post row.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := db.Executor(ctx, r.db).Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const searchPredicate = `($1 = '' OR p.title ILIKE '%' || $1 || '%' OR p.content ILIKE '%' || $1 || '%')`

// FindPage returns the posts matching keyword, newest first.
func (r *Repository) FindPage(ctx context.Context, keyword string, offset, limit int) (Page, error) {
	q := db.Executor(ctx, r.db)
	pattern := escapeLike(strings.TrimSpace(keyword))

	var total int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts p WHERE `+searchPredicate,
		pattern,
	).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count posts: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT p.id, p.title, m.nick_name, p.inserted_at,
		        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		        (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
		        (SELECT COUNT(*) FROM post_files f WHERE f.post_id = p.id)
		 FROM posts p
		 JOIN members m ON m.email = p.author
		 WHERE `+searchPredicate+`
		 ORDER BY p.id DESC
		 LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return Page{}, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	items := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Writer, &s.InsertedAt,
			&s.NumberOfComments, &s.NumberOfLikes, &s.NumberOfFiles); err != nil {
			return Page{}, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate posts: %w", err)
	}

	return Page{Items: items, TotalPages: totalPages(total, limit)}, nil
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// escapeLike neutralizes LIKE wildcards so keywords match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// AttachmentRepository is the PostgreSQL AttachmentStore over post_files.
type AttachmentRepository struct {
	db db.DBTX
}

// NewAttachmentRepository creates a new AttachmentRepository.
func NewAttachmentRepository(pool db.DBTX) *AttachmentRepository {
	return &AttachmentRepository{db: pool}
}

// Insert records an attachment. Re-adding an existing name keeps the single row.
func (r *AttachmentRepository) Insert(ctx context.Context, postID int64, name string) error {
	_, err := db.Executor(ctx, r.db).Exec(ctx,
		`INSERT INTO post_files (post_id, name) VALUES ($1, $2)
		 ON CONFLICT (post_id, name) DO NOTHING`,
		postID, name,
	)
	if err != nil {
		return fmt.Errorf("insert post file: %w", err)
	}
	return nil
}

// DeleteByCompositeID removes one attachment row; a missing row is not an error.
func (r *AttachmentRepository) DeleteByCompositeID(ctx context.Context, postID int64, name string) error {
	_, err := db.Executor(ctx, r.db).Exec(ctx,
		`DELETE FROM post_files WHERE post_id = $1 AND name = $2`,
		postID, name,
	)
	if err != nil {
		return fmt.Errorf("delete post file: %w", err)
	}
	return nil
}

// DeleteByPostID removes every attachment row of a post.
func (r *AttachmentRepository) DeleteByPostID(ctx context.Context, postID int64) error {
	_, err := db.Executor(ctx, r.db).Exec(ctx, `DELETE FROM post_files WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post files: %w", err)
	}
	return nil
}

// FindByPostID returns the attachment rows of a post ordered by name.
func (r *AttachmentRepository) FindByPostID(ctx context.Context, postID int64) ([]Attachment, error) {
	names, err := r.ListFileNamesByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]Attachment, 0, len(names))
	for _, name := range names {
		out = append(out, Attachment{PostID: postID, Name: name})
	}
	return out, nil
}

// ListFileNamesByPostID returns the file names recorded for a post ordered by name.
func (r *AttachmentRepository) ListFileNamesByPostID(ctx context.Context, postID int64) ([]string, error) {
	rows, err := db.Executor(ctx, r.db).Query(ctx,
		`SELECT name FROM post_files WHERE post_id = $1 ORDER BY name`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list post files: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan post files: %w", err)
	}
	return names, nil
}
