package blob

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound     = errors.New("object not found")
	ErrAccessDenied = errors.New("access denied")
	ErrUnavailable  = errors.New("blob store unavailable")
)

// Store is the object-storage collaborator for raw document files.
// Keys are opaque; callers compose them as <orgID>/documents/<docID>/<filename>.
type Store interface {
	// Get fetches the full object content from the given bucket and key.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put writes an object into the store's default bucket and returns the key.
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (string, error)

	// Delete removes an object from the store's default bucket.
	Delete(ctx context.Context, key string) error

	// Bucket returns the store's default bucket name.
	Bucket() string
}
