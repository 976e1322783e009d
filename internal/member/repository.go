// Package member manages member accounts and their persistence.
package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/navidved/bulletin/internal/db"
)

// Member is a registered board member. Email is the identity key.
type Member struct {
	Email        string    `json:"email"`
	NickName     string    `json:"nickName"`
	PasswordHash string    `json:"-"`
	InsertedAt   time.Time `json:"insertedAt"`
}

// ErrNotFound is returned when a member does not exist.
var ErrNotFound = errors.New("member not found")

// ErrAlreadyExists is returned when the email or nickname is already registered.
var ErrAlreadyExists = errors.New("member already exists")

// Repository handles all member database operations.
type Repository struct {
	db db.DBTX
}

// NewRepository creates a new Repository over a pool (or any DBTX).
func NewRepository(pool db.DBTX) *Repository {
	return &Repository{db: pool}
}

// Create inserts a new member and returns the created record.
func (r *Repository) Create(ctx context.Context, email, nickName, passwordHash string) (*Member, error) {
	m := &Member{}
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`INSERT INTO members (email, nick_name, password)
		 VALUES ($1, $2, $3)
		 RETURNING email, nick_name, password, inserted_at`,
		email, nickName, passwordHash,
	).Scan(&m.Email, &m.NickName, &m.PasswordHash, &m.InsertedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	return m, nil
}

// GetByEmail fetches a member by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	m := &Member{}
	err := db.Executor(ctx, r.db).QueryRow(ctx,
		`SELECT email, nick_name, password, inserted_at
		 FROM members WHERE email = $1`,
		email,
	).Scan(&m.Email, &m.NickName, &m.PasswordHash, &m.InsertedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member by email: %w", err)
	}
	return m, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
