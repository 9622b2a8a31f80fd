// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package workcopy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/similigh/mirror-bot/internal/log"
)

// Outcome classifies a replay attempt.
type Outcome int

const (
	// Clean means the commit applied without conflicts.
	Clean Outcome = iota
	// Conflicted means the commit was force-applied with conflicts staged verbatim.
	Conflicted
	// InfrastructureFailure means git failed for a reason other than a content conflict.
	InfrastructureFailure
)

func (o Outcome) String() string {
	switch o {
	case Clean:
		return "clean"
	case Conflicted:
		return "conflicted"
	case InfrastructureFailure:
		return "infrastructure-failure"
	default:
		return "unknown"
	}
}

// Options configures a Replayer.
type Options struct {
	BaseBranch       string
	UpstreamRemote   string
	UpstreamBranch   string
	DownstreamRemote string
	FetchDepth       int
}

// Replayer applies single upstream commits onto fresh branches of the working
// copy. Only one replay runs at a time.
type Replayer struct {
	git  Runner
	opts Options
	sem  *semaphore.Weighted
}

// NewReplayer creates a Replayer driving git through runner.
func NewReplayer(runner Runner, opts Options) *Replayer {
	return &Replayer{
		git:  runner,
		opts: opts,
		sem:  semaphore.NewWeighted(1),
	}
}

// Replay resets the working copy, cherry-picks sha onto branch and pushes it
// to the downstream remote. Conflicts are committed as-is and reported as
// Conflicted. Any other git failure returns InfrastructureFailure and an error.
func (r *Replayer) Replay(ctx context.Context, sha, branch string) (Outcome, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return InfrastructureFailure, fmt.Errorf("failed to acquire working copy: %w", err)
	}
	defer r.sem.Release(1)

	logger := log.With("component", "replay", "sha", sha, "branch", branch)

	if err := r.sync(ctx, sha); err != nil {
		return InfrastructureFailure, err
	}

	if _, err := r.git.Run(ctx, "checkout", "-B", branch); err != nil {
		return InfrastructureFailure, fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	defer r.cleanup(ctx, branch)

	outcome, err := r.cherryPick(ctx, sha)
	if err != nil {
		return InfrastructureFailure, err
	}
	if _, err := r.git.Run(ctx, "push", "--force", r.opts.DownstreamRemote, branch); err != nil {
		return InfrastructureFailure, fmt.Errorf("failed to push %s: %w", branch, err)
	}

	logger.Debug("Replay finished", "outcome", outcome.String())
	return outcome, nil
}

// sync returns the working copy to the downstream base tip with both remotes fetched.
func (r *Replayer) sync(ctx context.Context, sha string) error {
	// Leftover state from an interrupted run.
	_, _ = r.git.Run(ctx, "cherry-pick", "--abort")

	depth := "--depth=" + strconv.Itoa(r.opts.FetchDepth)

	if _, err := r.git.Run(ctx, "checkout", "-f", r.opts.BaseBranch); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", r.opts.BaseBranch, err)
	}
	if _, err := r.git.Run(ctx, "fetch", depth, r.opts.DownstreamRemote, r.opts.BaseBranch); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", r.opts.DownstreamRemote, err)
	}
	if _, err := r.git.Run(ctx, "fetch", depth, r.opts.UpstreamRemote, r.opts.UpstreamBranch); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", r.opts.UpstreamRemote, err)
	}

	if err := r.ensureCommit(ctx, sha); err != nil {
		return err
	}

	ref := r.opts.DownstreamRemote + "/" + r.opts.BaseBranch
	if _, err := r.git.Run(ctx, "reset", "--hard", ref); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", ref, err)
	}
	return nil
}

// ensureCommit makes sha and its first parent available locally. The
// cherry-pick diffs against the parent, so a commit sitting on the shallow
// boundary is as unusable as a missing one.
func (r *Replayer) ensureCommit(ctx context.Context, sha string) error {
	if r.hasParent(ctx, sha) {
		return nil
	}

	// Commits older than the fetch window are requested directly.
	_, fetchErr := r.git.Run(ctx, "fetch", "--depth=2", r.opts.UpstreamRemote, sha)
	if fetchErr == nil && r.hasParent(ctx, sha) {
		return nil
	}

	// Remotes that refuse unadvertised objects need the whole branch history.
	if r.isShallow(ctx) {
		if _, err := r.git.Run(ctx, "fetch", "--unshallow", r.opts.UpstreamRemote, r.opts.UpstreamBranch); err != nil {
			return fmt.Errorf("failed to fetch history of %s: %w", sha, err)
		}
		if r.hasParent(ctx, sha) {
			return nil
		}
	}

	// A root commit has no parent; it only has to exist.
	if _, err := r.git.Run(ctx, "cat-file", "-e", sha+"^{commit}"); err != nil {
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch commit %s: %w", sha, fetchErr)
		}
		return fmt.Errorf("commit %s not found: %w", sha, err)
	}
	return nil
}

func (r *Replayer) hasParent(ctx context.Context, sha string) bool {
	_, err := r.git.Run(ctx, "rev-parse", "-q", "--verify", sha+"^1^{commit}")
	return err == nil
}

func (r *Replayer) isShallow(ctx context.Context) bool {
	out, err := r.git.Run(ctx, "rev-parse", "--is-shallow-repository")
	return err == nil && strings.TrimSpace(out) == "true"
}

// cherryPick applies sha and classifies the result by checking whether git
// left a cherry-pick in progress.
func (r *Replayer) cherryPick(ctx context.Context, sha string) (Outcome, error) {
	_, pickErr := r.git.Run(ctx, "cherry-pick", "--allow-empty", "--keep-redundant-commits", sha)
	if pickErr == nil {
		return Clean, nil
	}

	var cmdErr *CommandError
	if errors.As(pickErr, &cmdErr) && cmdErr.ExitCode < 0 {
		return InfrastructureFailure, fmt.Errorf("failed to cherry-pick %s: %w", sha, pickErr)
	}

	if !r.inProgress(ctx) {
		return InfrastructureFailure, fmt.Errorf("failed to cherry-pick %s: %w", sha, pickErr)
	}

	if _, err := r.git.Run(ctx, "add", "-A", "."); err != nil {
		return InfrastructureFailure, fmt.Errorf("failed to stage conflicted files: %w", err)
	}
	if _, err := r.git.Run(ctx, "-c", "core.editor=true", "cherry-pick", "--continue"); err != nil {
		return InfrastructureFailure, fmt.Errorf("failed to continue cherry-pick: %w", err)
	}
	return Conflicted, nil
}

// inProgress reports whether a cherry-pick is waiting for resolution.
func (r *Replayer) inProgress(ctx context.Context) bool {
	_, err := r.git.Run(ctx, "rev-parse", "-q", "--verify", "CHERRY_PICK_HEAD")
	return err == nil
}

// cleanup switches back to the base branch and deletes branch. Failures are logged.
func (r *Replayer) cleanup(ctx context.Context, branch string) {
	if r.inProgress(ctx) {
		_, _ = r.git.Run(ctx, "cherry-pick", "--abort")
	}
	if _, err := r.git.Run(ctx, "checkout", "-f", r.opts.BaseBranch); err != nil {
		log.Warn("Failed to return to base branch", "component", "replay", "branch", r.opts.BaseBranch, "error", err)
		return
	}
	if _, err := r.git.Run(ctx, "branch", "-D", branch); err != nil {
		log.Warn("Failed to delete mirror branch", "component", "replay", "branch", branch, "error", err)
	}
}
