// Package store keeps service state behind a small keyed interface with an
// in-memory and a Postgres backend.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New("not found")

// Entry is a stored value with its bookkeeping timestamps.
type Entry[T any] struct {
	ID      string
	Value   T
	Created time.Time
	Updated time.Time
}

// Store is a keyed collection of T. Set keeps the original creation time of
// an existing id.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Set(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	// List returns entries ordered by creation time.
	List(ctx context.Context) ([]Entry[T], error)
	// DeleteOlderThan removes entries created before cutoff and reports how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
