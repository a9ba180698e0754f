// Package store persists serialized session snapshots under user-chosen
// names. Backends share one interface so the CLI can run against a local
// directory while a deployment uses Redis or MongoDB.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidName is returned when a snapshot name is empty.
	ErrInvalidName = errors.New("snapshot name must not be empty")
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Get retrieves a snapshot by name. Returns ErrNotFound when it does
	// not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Set stores a snapshot under the given name, replacing any previous
	// payload.
	Set(ctx context.Context, name string, data []byte) error

	// Delete removes a snapshot. Deleting a missing snapshot is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the stored snapshot names in unspecified order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
