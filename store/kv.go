// Package store provides persistence backends for memory cells: a simple
// string-keyed value.Value store, backed by an in-memory map for tests and
// by SQLite/MySQL for durable use.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("store: not found")

// KV is a string-keyed value.Value store, the persistence contract memory
// cells run their body against.
type KV interface {
	Get(ctx context.Context, key string) (raw []byte, found bool, err error)
	Set(ctx context.Context, key string, raw []byte) error
	Delete(ctx context.Context, key string) error
}
