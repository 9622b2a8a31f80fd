// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/similigh/mirror-bot/internal/integrations/github"
	"github.com/similigh/mirror-bot/internal/log"
)

// ContentClient reads and writes repository files through the host API.
type ContentClient interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	PutFileContent(ctx context.Context, owner, repo, path, branch, message string, content []byte) error
	EnsureBranch(ctx context.Context, owner, repo, branch, from string) (bool, error)
}

// DefaultBaseBranch is the branch a missing state branch is created from.
const DefaultBaseBranch = "master"

// GitHubStore keeps the checkpoint in a file on a dedicated branch, without local checkout.
type GitHubStore struct {
	client ContentClient
	owner  string
	repo   string
	branch string
	base   string
	path   string

	// ready is set once the state branch is known to exist.
	ready bool
}

// NewGitHubStore creates a GitHub-backed checkpoint store.
func NewGitHubStore(client ContentClient, owner, repo, path string) *GitHubStore {
	return &GitHubStore{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: DefaultStateBranch,
		base:   DefaultBaseBranch,
		path:   path,
	}
}

// WithBranch sets a custom state branch name.
func (s *GitHubStore) WithBranch(branch string) *GitHubStore {
	s.branch = branch
	return s
}

// WithBaseBranch sets the branch the state branch is created from.
func (s *GitHubStore) WithBaseBranch(base string) *GitHubStore {
	s.base = base
	return s
}

// Read fetches the checkpoint file from the state branch.
func (s *GitHubStore) Read(ctx context.Context) (string, error) {
	data, err := s.client.GetFileContent(ctx, s.owner, s.repo, s.path, s.branch)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			return "", ErrUnseeded
		}
		return "", fmt.Errorf("failed to read checkpoint from %s/%s@%s: %w", s.owner, s.repo, s.branch, err)
	}
	return normalize(string(data))
}

// Write commits the checkpoint file to the state branch, creating the branch
// from the base branch on first use.
func (s *GitHubStore) Write(ctx context.Context, sha string) error {
	if !s.ready {
		created, err := s.client.EnsureBranch(ctx, s.owner, s.repo, s.branch, s.base)
		if err != nil {
			return fmt.Errorf("failed to prepare state branch %s: %w", s.branch, err)
		}
		if created {
			log.Info("Created checkpoint state branch", "component", "checkpoint", "branch", s.branch, "from", s.base)
		}
		s.ready = true
	}

	message := fmt.Sprintf("Advance mirror checkpoint to %s", sha)
	if err := s.client.PutFileContent(ctx, s.owner, s.repo, s.path, s.branch, message, []byte(sha)); err != nil {
		return fmt.Errorf("failed to write checkpoint to %s/%s@%s: %w", s.owner, s.repo, s.branch, err)
	}
	return nil
}
