package member

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence contract the Service depends on.
type Store interface {
	Create(ctx context.Context, email, nickName, passwordHash string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
}

// Service contains business logic for member management.
type Service struct {
	repo Store
}

// NewService creates a new member Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Signup registers a new member with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, email, nickName, password string) (*Member, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m, err := s.repo.Create(ctx, email, nickName, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return m, nil
}

// GetByEmail returns a member by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Authenticate returns the member when password matches the stored hash.
// Unknown emails and wrong passwords both yield ErrNotFound.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Member, error) {
	m, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// IsNotFound returns true when the error indicates a member was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
