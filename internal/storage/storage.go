// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3).
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object. Metadata is only populated by Stat;
// listings carry key, size and last-modified only.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// BucketInfo describes a bucket accessible with the configured credentials.
type BucketInfo struct {
	Name      string
	CreatedAt time.Time
}

// PutOptions carries optional attributes attached to an uploaded object.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectStore is the interface for the backing object store. All errors
// returned by implementations are translated into *Error values so that no
// provider-specific error type crosses this boundary.
type ObjectStore interface {
	// Ping verifies the backend is reachable and the bucket exists.
	Ping(ctx context.Context) error
	// Put streams data to the store under the given key.
	Put(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error
	// Get opens a streaming handle to the object at key. Callers must Close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns metadata for the object at key without downloading it.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	// List returns up to max objects whose keys start with prefix.
	List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error)
	// Remove deletes the object at key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL granting unauthenticated read
	// access to the object at key until the TTL elapses.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Buckets lists all buckets accessible with the configured credentials.
	Buckets(ctx context.Context) ([]BucketInfo, error)
	// PublicURL constructs the permanent (non-expiring) URL for a given key.
	PublicURL(key string) string
}
