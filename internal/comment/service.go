package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/navidved/bulletin/internal/identity"
)

// ErrUnauthorized is returned when the caller is absent or does not own the comment.
var ErrUnauthorized = errors.New("unauthorized")

// ErrBlank is returned for an empty comment.
var ErrBlank = errors.New("comment must not be blank")

// Store is the persistence contract the Service depends on.
type Store interface {
	Create(ctx context.Context, postID int64, memberID, text string) (int64, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPostID(ctx context.Context, postID int64) ([]Comment, error)
	DeleteByID(ctx context.Context, id int64) error
}

// Service contains comment business logic.
type Service struct {
	repo Store
}

// NewService creates a new comment Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Add stores a comment by caller on the post.
func (s *Service) Add(ctx context.Context, postID int64, text string, caller identity.Caller) (int64, error) {
	if !caller.Present() {
		return 0, ErrUnauthorized
	}
	if strings.TrimSpace(text) == "" {
		return 0, ErrBlank
	}
	id, err := s.repo.Create(ctx, postID, caller.Email(), text)
	if err != nil {
		return 0, fmt.Errorf("add comment: %w", err)
	}
	return id, nil
}

// List returns the comments of a post.
func (s *Service) List(ctx context.Context, postID int64) ([]Comment, error) {
	return s.repo.ListByPostID(ctx, postID)
}

// Delete removes a comment written by caller.
func (s *Service) Delete(ctx context.Context, id int64, caller identity.Caller) error {
	if !caller.Present() {
		return ErrUnauthorized
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Is(c.MemberID) {
		return ErrUnauthorized
	}
	return s.repo.DeleteByID(ctx, id)
}
