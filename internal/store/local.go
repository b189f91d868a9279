package store

import (
	"context"       // Backend interface contract
	"crypto/sha256" // Content hash used as version marker
	"encoding/hex"  // Hash to string
	"errors"        // Error inspection
	"fmt"           // Error formatting
	"os"            // File access
	"path/filepath" // Dataset path construction
	"sync"          // Serialize the check-and-write cycle in-process
)

// LocalBackend stores each dataset as one CSV file under a directory.
// The version marker is the content hash of the file as last read, so a
// Store with a stale marker detects that another writer got there first.
// The mutex only covers writers within this process; cross-process safety
// comes from the marker check.
type LocalBackend struct {
	dir string
	mu  sync.Mutex
}

// NewLocalBackend creates the data directory if needed
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	return &LocalBackend{dir: dir}, nil
}

// path returns the file backing a dataset name
func (b *LocalBackend) path(name string) string {
	return filepath.Join(b.dir, name+".csv")
}

// Load reads the whole dataset file and returns its content hash as version
func (b *LocalBackend) Load(_ context.Context, name string) ([]byte, string, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("store: read %s: %w", name, err)
	}
	return data, hashVersion(data), nil
}

// Store overwrites the dataset file after checking the version marker
func (b *LocalBackend) Store(_ context.Context, name string, data []byte, version string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, err := os.ReadFile(b.path(name))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Creating: the caller must not hold a stale marker
		if version != "" {
			return "", ErrVersionConflict
		}
	case err != nil:
		return "", fmt.Errorf("store: read %s: %w", name, err)
	default:
		if hashVersion(current) != version {
			return "", ErrVersionConflict
		}
	}
	if err := os.WriteFile(b.path(name), data, 0o644); err != nil {
		return "", fmt.Errorf("store: write %s: %w", name, err)
	}
	return hashVersion(data), nil
}

// hashVersion derives the opaque version marker from dataset content
func hashVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
