package storage

import "context"

// MediaStorage resolves media storage keys to public URLs.
type MediaStorage interface {
	// GetURL returns the public URL for an object key
	GetURL(key string) string

	// EnsureBucket verifies the media bucket, creating it where the backend allows
	EnsureBucket(ctx context.Context) error
}
