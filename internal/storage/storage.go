package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains the object-store abstraction for project files.
// Implementations must avoid using local disk and rely on streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is a reusable, S3-compatible object storage client interface.
// Keys form a flat namespace; project files live under keys prefixed by the
// owning project identifier (either "A-00001/..." or "A-00001_...").
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is present. A missing object is not an error.
	Exists(ctx context.Context, key string) (bool, error)
	// List returns objects whose key starts with prefix, in key order.
	// max caps the number of results; max <= 0 means unbounded.
	List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// ObjectURL returns the durable (non-expiring) URL for a key. It does not
	// check existence and grants no access by itself.
	ObjectURL(key string) string
}
