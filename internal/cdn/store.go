// Package cdn stores uploaded files in a public content repository and
// reads them back for streaming.
package cdn

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrEmptyFile = errors.New("file is empty")
)

// Object is an open file read from the content store.
// The caller must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// ContentStore persists and serves files by name.
type ContentStore interface {
	Put(ctx context.Context, name string, data []byte, message string) error
	// Fetch returns ErrNotFound when no file exists under name.
	Fetch(ctx context.Context, name string) (*Object, error)
}
