// Package store abstracts the blob store that holds model artifacts and
// metrics reports. Blobs are addressed by container + key.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrConfig is returned when required storage settings are missing.
	ErrConfig = errors.New("storage not configured")
)

type Store interface {
	Put(ctx context.Context, container, key string, data []byte) error
	Get(ctx context.Context, container, key string) ([]byte, error)
	EnsureContainer(ctx context.Context, container string) error
}
