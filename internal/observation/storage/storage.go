// Package storage holds observation frame bytes in an object store.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// Object is an open stored object. Callers must close it.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

// Storage puts, fetches and removes objects by key.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Remove(ctx context.Context, key string) error
}
