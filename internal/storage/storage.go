package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyObject = errors.New("empty object")
	ErrNotFound    = errors.New("object not found")
)

// DocumentStore holds uploaded lease documents.
type DocumentStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a unique object key under prefix, keeping the upload's
// extension so downloads open with the right application.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + ext
}
