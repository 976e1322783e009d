package like

import (
	"context"
	"errors"
	"fmt"

	"github.com/navidved/bulletin/internal/db"
	"github.com/navidved/bulletin/internal/identity"
)

// ErrUnauthorized is returned when toggling without a caller.
var ErrUnauthorized = errors.New("unauthorized")

// Store is the persistence contract the Service depends on.
type Store interface {
	Insert(ctx context.Context, postID int64, memberID string) error
	Delete(ctx context.Context, postID int64, memberID string) (bool, error)
	Exists(ctx context.Context, postID int64, memberID string) (bool, error)
	CountByPostID(ctx context.Context, postID int64) (int, error)
}

// Status is a post's like state as seen by one caller.
type Status struct {
	Like  bool `json:"like"`
	Count int  `json:"count"`
}

// Service contains like business logic.
type Service struct {
	repo Store
	tx   db.TxRunner
}

// NewService creates a new like Service.
func NewService(repo Store, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

// Toggle flips caller's like on the post and returns the new status.
func (s *Service) Toggle(ctx context.Context, postID int64, caller identity.Caller) (*Status, error) {
	if !caller.Present() {
		return nil, ErrUnauthorized
	}

	st := &Status{}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		removed, err := s.repo.Delete(ctx, postID, caller.Email())
		if err != nil {
			return err
		}
		if !removed {
			if err := s.repo.Insert(ctx, postID, caller.Email()); err != nil {
				return err
			}
		}
		st.Like = !removed
		st.Count, err = s.repo.CountByPostID(ctx, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return st, nil
}

// Get returns the like count and whether caller likes the post.
// Anonymous callers always see Like false.
func (s *Service) Get(ctx context.Context, postID int64, caller identity.Caller) (*Status, error) {
	count, err := s.repo.CountByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	st := &Status{Count: count}
	if caller.Present() {
		if st.Like, err = s.repo.Exists(ctx, postID, caller.Email()); err != nil {
			return nil, err
		}
	}
	return st, nil
}
