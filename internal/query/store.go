package query

import (
	"context"
)

// DefaultKey is the name of the slot in which the record is kept.
const DefaultKey = "latest_query"

// Store is a key-value store in which the record is persisted. Get returns
// internal.ErrResourceNotFound if there is no value for the key. Deleting a
// non-existent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// StoreError is returned when the underlying store fails.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }
