// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup.
// The MinIO implementation works with any S3-compatible provider, the S3
// implementation uses the AWS SDK, and the memory implementation backs
// development and tests.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by backends that can tell a missing key apart.
var ErrObjectNotFound = errors.New("object not found")

// Storage is a key-addressed blob store. Objects are written publicly readable.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
