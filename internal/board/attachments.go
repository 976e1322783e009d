package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/navidved/bulletin/internal/storage"
	"github.com/rs/zerolog/log"
)

// blobOp is one pending object storage call. A nil file means delete.
type blobOp struct {
	key  string
	file *File
}

// BlobBatch collects the object storage work implied by attachment row changes.
// Rows are written inside the relational transaction; the batch is flushed
// after commit so blob calls never sit inside it.
type BlobBatch struct {
	ops []blobOp
}

// Len returns the number of queued operations.
func (b *BlobBatch) Len() int {
	return len(b.ops)
}

func (b *BlobBatch) put(key string, f *File) {
	b.ops = append(b.ops, blobOp{key: key, file: f})
}

func (b *BlobBatch) delete(key string) {
	b.ops = append(b.ops, blobOp{key: key})
}

// Attachments reconciles a post's attachment rows with the objects in storage.
// It owns the object key convention {namespace}/{postID}/{fileName}.
type Attachments struct {
	files     AttachmentStore
	blobs     storage.Storage
	namespace string
}

// NewAttachments creates an attachment set manager.
func NewAttachments(files AttachmentStore, blobs storage.Storage, namespace string) *Attachments {
	return &Attachments{files: files, blobs: blobs, namespace: namespace}
}

// ObjectKey derives the storage key of a post's file.
func (a *Attachments) ObjectKey(postID int64, name string) string {
	return a.namespace + "/" + strconv.FormatInt(postID, 10) + "/" + name
}

// Add records the attachment row for f and queues its upload.
// Nil and zero-length files are skipped.
func (a *Attachments) Add(ctx context.Context, batch *BlobBatch, postID int64, f *File) error {
	if f.empty() {
		return nil
	}
	if err := a.files.Insert(ctx, postID, f.Name); err != nil {
		return fmt.Errorf("insert attachment %q: %w", f.Name, err)
	}
	batch.put(a.ObjectKey(postID, f.Name), f)
	return nil
}

// Remove deletes the attachment row, if any, and queues the object delete
// regardless of whether a row existed.
func (a *Attachments) Remove(ctx context.Context, batch *BlobBatch, postID int64, name string) error {
	if err := a.files.DeleteByCompositeID(ctx, postID, name); err != nil {
		return fmt.Errorf("delete attachment %q: %w", name, err)
	}
	batch.delete(a.ObjectKey(postID, name))
	return nil
}

// ListFileNames returns every file name recorded for the post.
func (a *Attachments) ListFileNames(ctx context.Context, postID int64) ([]string, error) {
	names, err := a.files.ListFileNamesByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return names, nil
}

// RemoveAll collects the post's file names first, queues a delete per object,
// then drops all attachment rows.
func (a *Attachments) RemoveAll(ctx context.Context, batch *BlobBatch, postID int64) error {
	names, err := a.ListFileNames(ctx, postID)
	if err != nil {
		return err
	}
	for _, name := range names {
		batch.delete(a.ObjectKey(postID, name))
	}
	if err := a.files.DeleteByPostID(ctx, postID); err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}
	return nil
}

// Describe lists the post's attachments with public paths built as
// prefix + object key. Object existence is not checked.
func (a *Attachments) Describe(ctx context.Context, postID int64, prefix string) ([]FileDescriptor, error) {
	rows, err := a.files.FindByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("find attachments: %w", err)
	}
	out := make([]FileDescriptor, 0, len(rows))
	for _, row := range rows {
		out = append(out, FileDescriptor{
			Name: row.Name,
			Path: prefix + a.ObjectKey(postID, row.Name),
		})
	}
	return out, nil
}

// Flush runs the queued storage calls in order. A failed delete is logged and
// the remaining operations still run; a failed upload stops the flush. Every
// failure is returned, joined, as *StorageError values.
func (a *Attachments) Flush(ctx context.Context, batch *BlobBatch) error {
	var errs []error
	for _, op := range batch.ops {
		if op.file == nil {
			if err := a.blobs.Delete(ctx, op.key); err != nil {
				log.Error().Err(err).Str("key", op.key).Msg("object delete failed")
				errs = append(errs, &StorageError{Op: "delete", Key: op.key, Err: err})
			}
			continue
		}
		if err := a.upload(ctx, op.key, op.file); err != nil {
			log.Error().Err(err).Str("key", op.key).Msg("object upload failed")
			errs = append(errs, &StorageError{Op: "upload", Key: op.key, Err: err})
			break
		}
	}
	batch.ops = nil
	return errors.Join(errs...)
}

func (a *Attachments) upload(ctx context.Context, key string, f *File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %q: %w", f.Name, err)
	}
	defer rc.Close()
	return a.blobs.Upload(ctx, key, rc, f.Size, f.ContentType)
}
