// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

// Package state persists the mirroring checkpoint: the identifier of the last
// fully-mirrored upstream commit.
package state

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Sentinel is written to an empty store so an operator can find and seed it.
const Sentinel = "UNSEEDED"

// DefaultStateBranch is the branch used by the GitHub backend.
const DefaultStateBranch = "mirror-bot-state"

// ErrUnseeded indicates the store holds no usable checkpoint.
var ErrUnseeded = errors.New("checkpoint is not seeded")

// CheckpointStore reads and overwrites the checkpoint.
type CheckpointStore interface {
	// Read returns the checkpoint, or ErrUnseeded if it is missing, empty or the sentinel.
	Read(ctx context.Context) (string, error)

	// Write overwrites the checkpoint.
	Write(ctx context.Context, sha string) error
}

// normalize trims a raw stored value and maps unusable values to ErrUnseeded.
func normalize(raw string) (string, error) {
	sha := strings.TrimSpace(raw)
	if sha == "" || sha == Sentinel {
		return "", ErrUnseeded
	}
	return sha, nil
}

// MemoryStore is an in-process CheckpointStore.
type MemoryStore struct {
	mu      sync.Mutex
	sha     string
	history []string
}

// NewMemoryStore creates a MemoryStore holding sha (which may be empty).
func NewMemoryStore(sha string) *MemoryStore {
	return &MemoryStore{sha: sha}
}

// Read returns the stored checkpoint.
func (m *MemoryStore) Read(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return normalize(m.sha)
}

// Write overwrites the stored checkpoint.
func (m *MemoryStore) Write(ctx context.Context, sha string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sha = sha
	m.history = append(m.history, sha)
	return nil
}

// History returns every value written, oldest first.
func (m *MemoryStore) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}
