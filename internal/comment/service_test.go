package comment

import (
	"context"
	"testing"

	"github.com/navidved/bulletin/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	CreateFunc       func(ctx context.Context, postID int64, memberID, text string) (int64, error)
	GetByIDFunc      func(ctx context.Context, id int64) (*Comment, error)
	ListByPostIDFunc func(ctx context.Context, postID int64) ([]Comment, error)
	DeleteByIDFunc   func(ctx context.Context, id int64) error

	deleted []int64
}

func (m *MockStore) Create(ctx context.Context, postID int64, memberID, text string) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, postID, memberID, text)
	}
	return 1, nil
}

func (m *MockStore) GetByID(ctx context.Context, id int64) (*Comment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListByPostID(ctx context.Context, postID int64) ([]Comment, error) {
	if m.ListByPostIDFunc != nil {
		return m.ListByPostIDFunc(ctx, postID)
	}
	return []Comment{}, nil
}

func (m *MockStore) DeleteByID(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteByIDFunc != nil {
		return m.DeleteByIDFunc(ctx, id)
	}
	return nil
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	var gotMember string
	store := &MockStore{
		CreateFunc: func(_ context.Context, postID int64, memberID, text string) (int64, error) {
			gotMember = memberID
			return 9, nil
		},
	}
	svc := NewService(store)

	_, err := svc.Add(ctx, 1, "hi", identity.Anonymous())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Add(ctx, 1, "   ", identity.Of("a@b.com"))
	assert.ErrorIs(t, err, ErrBlank)

	id, err := svc.Add(ctx, 1, "hi", identity.Of("a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, "a@b.com", gotMember)

	store.CreateFunc = func(context.Context, int64, string, string) (int64, error) { return 0, ErrPostNotFound }
	_, err = svc.Add(ctx, 404, "hi", identity.Of("a@b.com"))
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeleteOwnOnly(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetByIDFunc: func(_ context.Context, id int64) (*Comment, error) {
			return &Comment{ID: id, MemberID: "owner@b.com"}, nil
		},
	}
	svc := NewService(store)

	assert.ErrorIs(t, svc.Delete(ctx, 3, identity.Anonymous()), ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, 3, identity.Of("other@b.com")), ErrUnauthorized)
	assert.Empty(t, store.deleted)

	require.NoError(t, svc.Delete(ctx, 3, identity.Of("owner@b.com")))
	assert.Equal(t, []int64{3}, store.deleted)
}

func TestDeleteMissing(t *testing.T) {
	svc := NewService(&MockStore{})
	assert.ErrorIs(t, svc.Delete(context.Background(), 3, identity.Of("a@b.com")), ErrNotFound)
}
