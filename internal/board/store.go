package board

import (
	"context"

	"github.com/navidved/bulletin/internal/member"
)

// PostStore is the persistence contract for post records.
type PostStore interface {
	// Save inserts p when p.ID is zero, otherwise updates title and content.
	Save(ctx context.Context, p Post) (Post, error)
	FindByID(ctx context.Context, id int64) (Post, error)
	FindDetail(ctx context.Context, id int64) (Detail, error)
	DeleteByID(ctx context.Context, id int64) error
	// FindPage returns posts matching keyword in title or content, newest first.
	FindPage(ctx context.Context, keyword string, offset, limit int) (Page, error)
}

// AttachmentStore persists attachment rows.
type AttachmentStore interface {
	Insert(ctx context.Context, postID int64, name string) error
	DeleteByCompositeID(ctx context.Context, postID int64, name string) error
	DeleteByPostID(ctx context.Context, postID int64) error
	FindByPostID(ctx context.Context, postID int64) ([]Attachment, error)
	ListFileNamesByPostID(ctx context.Context, postID int64) ([]string, error)
}

// ChildPurger removes every child record of a post. Comments and likes implement it.
type ChildPurger interface {
	DeleteByPostID(ctx context.Context, postID int64) error
}

// MemberLookup resolves a caller identity to a member record.
type MemberLookup interface {
	GetByEmail(ctx context.Context, email string) (*member.Member, error)
}
