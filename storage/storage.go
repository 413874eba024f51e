// Package storage provides the key-value backends favorites are persisted in.
package storage

import "errors"

// ErrClosed is returned by backends after Close
var ErrClosed = errors.New("storage backend is closed")

// UpdateFunc receives the current value of a key (nil, false if absent)
// and returns the value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Backend is a single-namespace key-value store.
// Update must run fn and the write as one atomic step.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Update(key string, fn UpdateFunc) error
	Close() error
}
