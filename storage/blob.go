// Package storage holds the blob stores that keep avatars and project images.
package storage

import (
	"context"
	"io"
)

// Blob stores media objects under slash separated keys
type Blob interface {
	// Put writes body under key and returns the object's public URL
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// DeletePrefix removes every object whose key starts with prefix and reports how many were removed.
	// Deleting an empty prefix succeeds.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
