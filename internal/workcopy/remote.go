// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package workcopy

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// Open opens the working copy at path.
func Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open working copy %s: %w", path, err)
	}
	return repo, nil
}

// EnsureRemote adds a remote named name pointing at url. An existing remote
// with that name is left untouched. created reports whether it was added.
func EnsureRemote(repo *git.Repository, name, url string) (created bool, err error) {
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if errors.Is(err, git.ErrRemoteExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return true, nil
}

// RemoteURLs returns the configured URLs for every remote.
func RemoteURLs(repo *git.Repository) (map[string][]string, error) {
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	urls := make(map[string][]string, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		urls[cfg.Name] = cfg.URLs
	}
	return urls, nil
}

// CurrentBranch returns the short name of the checked-out branch, or "" when HEAD is detached.
func CurrentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}
