package store

import (
	"context" // Cancellation for remote round trips
	"errors"  // Sentinel errors
)

// ErrNotFound reports that a named dataset has no backing resource yet
var ErrNotFound = errors.New("store: dataset not found")

// ErrVersionConflict reports that the dataset changed since it was loaded;
// the caller must re-read and re-apply its mutation.
var ErrVersionConflict = errors.New("store: version conflict")

// Backend persists named datasets wholesale. Load returns the raw dataset
// content and an opaque version marker identifying the state that was read.
// Store overwrites the dataset only if version still matches the backing
// resource; an empty version means "create". There are no partial updates.
type Backend interface {
	Load(ctx context.Context, name string) (data []byte, version string, err error)
	Store(ctx context.Context, name string, data []byte, version string) (newVersion string, err error)
}
