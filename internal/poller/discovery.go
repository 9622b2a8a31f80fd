// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

// Package poller discovers new upstream commits and drives them through the
// mirroring pipeline on a fixed schedule.
package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v60/github"

	"github.com/similigh/mirror-bot/internal/mirror"
)

// ErrCheckpointNotFound indicates the checkpoint is not part of upstream history.
var ErrCheckpointNotFound = errors.New("checkpoint not found in upstream history")

// CommitLister pages through repository history newest-first.
type CommitLister interface {
	ListCommitsUntil(ctx context.Context, owner, repo, branch, stop string) ([]*gh.RepositoryCommit, bool, error)
}

// Discovery finds the upstream commits newer than a checkpoint.
type Discovery struct {
	lister        CommitLister
	owner         string
	repo          string
	branch        string
	changelogSkip string
}

// NewDiscovery creates a Discovery over owner/repo@branch. Commits whose
// message contains changelogSkip are ignored.
func NewDiscovery(lister CommitLister, owner, repo, branch, changelogSkip string) *Discovery {
	return &Discovery{
		lister:        lister,
		owner:         owner,
		repo:          repo,
		branch:        branch,
		changelogSkip: changelogSkip,
	}
}

// Since returns the commits above checkpoint, oldest first.
func (d *Discovery) Since(ctx context.Context, checkpoint string) ([]mirror.Commit, error) {
	raw, found, err := d.lister.ListCommitsUntil(ctx, d.owner, d.repo, d.branch, checkpoint)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s (%s/%s@%s)", ErrCheckpointNotFound, checkpoint, d.owner, d.repo, d.branch)
	}

	commits := make([]mirror.Commit, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		message := raw[i].GetCommit().GetMessage()
		if d.changelogSkip != "" && strings.Contains(message, d.changelogSkip) {
			continue
		}
		commits = append(commits, mirror.Commit{SHA: raw[i].GetSHA(), Message: message})
	}
	return commits, nil
}
