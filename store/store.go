// Package store holds persisted records. Stores are append only: a key is
// created once and never updated or deleted.
package store

import (
	"bytes"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("no record stored under the key")
	ErrExists   = errors.New("a different record is already stored under the key")
	ErrEmptyKey = errors.New("key must be non-empty")
)

// Store is an append only key value store.
type Store interface {

	// Create stores value under key. Creating the same value under the same key
	// again is a no-op, creating a different value is ErrExists.
	Create(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	Close() error
}

// checkCreate decides a create of value against the existing value, if any.
//
// Returns true if the value still needs writing.
func checkCreate(existing []byte, found bool, value []byte) (bool, error) {
	if !found {
		return true, nil
	}
	if bytes.Equal(existing, value) {
		return false, nil
	}
	return false, ErrExists
}
