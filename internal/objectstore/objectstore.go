// Package objectstore persists uploaded resumes, job descriptions and
// rendered PDFs.
package objectstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists for the key.
var ErrNotFound = errors.New("object not found")

// Store is the storage contract used by the server.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}
