// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

// Package mirror resolves upstream commits into mirror-ready pull requests.
// It extracts the pull request reference from a commit message, fetches its
// metadata (following cross-repository mirrors to their origin) and compiles
// the title, body and labels used downstream.
package mirror

import (
	"errors"
	"fmt"
)

// ErrUnresolvable indicates a commit message carries no pull request reference.
var ErrUnresolvable = errors.New("commit has no pull request reference")

// Commit is an upstream commit as discovered from history.
type Commit struct {
	SHA     string
	Message string
}

// ShortSHA returns the first 7 characters of the commit identifier.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Origin tells where a pull request originally came from.
// It is either DirectMirror or CrossMirror.
type Origin interface {
	isOrigin()
}

// DirectMirror is a pull request authored against the primary upstream.
type DirectMirror struct{}

// CrossMirror is an upstream pull request that itself mirrors a pull request
// from the origin repository.
type CrossMirror struct {
	URL string
	ID  int
}

func (DirectMirror) isOrigin() {}
func (CrossMirror) isOrigin()  {}

// PullRequest is a resolved and compiled pull request, ready to be mirrored.
type PullRequest struct {
	ID     int
	Title  string
	Body   string
	URL    string
	Author string
	Origin Origin

	// IsConfigUpdate is set when the body touches server configuration.
	IsConfigUpdate bool

	// MergeCommitSHA is the upstream commit replayed downstream.
	MergeCommitSHA string
}

// IsCrossMirror reports whether the pull request was resolved through the origin repository.
func (pr *PullRequest) IsCrossMirror() bool {
	_, ok := pr.Origin.(CrossMirror)
	return ok
}

// UnresolvableError carries the commit that could not be resolved.
type UnresolvableError struct {
	Commit Commit
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("commit %s: %s", e.Commit.ShortSHA(), ErrUnresolvable)
}

// Is returns true if the target error is ErrUnresolvable.
func (e *UnresolvableError) Is(target error) bool {
	return target == ErrUnresolvable
}

// FetchError records a failed pull request lookup.
type FetchError struct {
	Repo   string
	Number int
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch pull request %s#%d: %v", e.Repo, e.Number, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
