package board

import (
	"context"
	"fmt"

	"github.com/navidved/bulletin/internal/db"
	"github.com/navidved/bulletin/internal/identity"
	"github.com/rs/zerolog/log"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

// Options carries configuration consumed by the Service.
type Options struct {
	// ImagePrefix is prepended verbatim to object keys to form public paths.
	ImagePrefix string
	PageSize    int
}

// ListResult is a page of post summaries with its link window.
type ListResult struct {
	PageInfo PageInfo  `json:"pageInfo"`
	Posts    []Summary `json:"postList"`
}

// Service orchestrates the post lifecycle. Relational work of each mutating
// call runs in one transaction; object storage calls run after it commits and
// never roll it back.
type Service struct {
	posts       PostStore
	attachments *Attachments
	comments    ChildPurger
	likes       ChildPurger
	members     MemberLookup
	tx          db.TxRunner
	opts        Options
}

// NewService creates a new board Service.
func NewService(
	posts PostStore,
	attachments *Attachments,
	comments ChildPurger,
	likes ChildPurger,
	members MemberLookup,
	tx db.TxRunner,
	opts Options,
) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Service{
		posts:       posts,
		attachments: attachments,
		comments:    comments,
		likes:       likes,
		members:     members,
		tx:          tx,
		opts:        opts,
	}
}

// Create stores a new post authored by caller along with its non-empty files
// and returns the new post id. Rows are committed before any upload; a failed
// upload is returned as a *StorageError together with the committed id.
func (s *Service) Create(ctx context.Context, title, content string, files []*File, caller identity.Caller) (int64, error) {
	if !caller.Present() {
		return 0, ErrUnauthorized
	}
	if err := validatePost(title, content); err != nil {
		return 0, err
	}

	author, err := s.members.GetByEmail(ctx, caller.Email())
	if err != nil {
		return 0, fmt.Errorf("resolve author: %w", err)
	}
	post, err := NewPost(title, content, author.Email)
	if err != nil {
		return 0, err
	}

	var batch BlobBatch
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		saved, err := s.posts.Save(ctx, post)
		if err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		post = saved
		for _, f := range files {
			if err := s.attachments.Add(ctx, &batch, post.ID, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}

	log.Info().Int64("postID", post.ID).Str("author", post.Author).Int("uploads", batch.Len()).Msg("post created")
	if err := s.attachments.Flush(ctx, &batch); err != nil {
		return post.ID, err
	}
	return post.ID, nil
}

// List returns the 1-based page of posts matching keyword.
func (s *Service) List(ctx context.Context, keyword string, pageNumber int) (*ListResult, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	page, err := s.posts.FindPage(ctx, keyword, (pageNumber-1)*s.opts.PageSize, s.opts.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	items := page.Items
	if items == nil {
		items = []Summary{}
	}
	return &ListResult{
		PageInfo: NewPageInfo(pageNumber, page.TotalPages),
		Posts:    items,
	}, nil
}

// GetByID returns the post with its attachment descriptors.
func (s *Service) GetByID(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.posts.FindDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	files, err := s.attachments.Describe(ctx, id, s.opts.ImagePrefix)
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	detail.Files = files
	return &detail, nil
}

// Update edits a post owned by caller: it removes the named attachments, adds
// the new files, then saves title and content. Object deletes for removed
// names are issued even when no row matched.
func (s *Service) Update(ctx context.Context, id int64, title, content string, add []*File, remove []string, caller identity.Caller) error {
	if !caller.Present() {
		return ErrUnauthorized
	}
	if err := validatePost(title, content); err != nil {
		return err
	}

	var batch BlobBatch
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		post, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanMutate(post, caller) {
			return ErrUnauthorized
		}

		for _, name := range remove {
			if err := s.attachments.Remove(ctx, &batch, id, name); err != nil {
				return err
			}
		}
		for _, f := range add {
			if err := s.attachments.Add(ctx, &batch, id, f); err != nil {
				return err
			}
		}

		if _, err := s.posts.Save(ctx, post.Revise(title, content)); err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, err)
	}

	log.Info().Int64("postID", id).Int("blobOps", batch.Len()).Msg("post updated")
	return s.attachments.Flush(ctx, &batch)
}

// DeleteByID removes a post owned by caller with its likes, attachments and
// comments. Objects are deleted after the rows are gone; every object is
// attempted and all failures are returned.
func (s *Service) DeleteByID(ctx context.Context, id int64, caller identity.Caller) error {
	if !caller.Present() {
		return ErrUnauthorized
	}

	var batch BlobBatch
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		post, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanMutate(post, caller) {
			return ErrUnauthorized
		}

		if err := s.likes.DeleteByPostID(ctx, id); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := s.attachments.RemoveAll(ctx, &batch, id); err != nil {
			return err
		}
		if err := s.comments.DeleteByPostID(ctx, id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := s.posts.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}

	log.Info().Int64("postID", id).Int("objects", batch.Len()).Msg("post deleted")
	return s.attachments.Flush(ctx, &batch)
}
