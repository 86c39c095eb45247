package core

import "errors"

// ErrNotFound is returned by KVStore.GetI32 when a key was never written
var ErrNotFound = errors.New("key not found")

// KVStore is the abstract durable key-value interface.
// Writes are only guaranteed durable after Commit.
type KVStore interface {
	// GetI32 reads a 32-bit value. Returns ErrNotFound for unknown keys.
	GetI32(namespace, key string) (int32, error)

	// SetI32 stages a 32-bit value
	SetI32(namespace, key string, value int32) error

	// Commit makes staged writes durable
	Commit() error
}
