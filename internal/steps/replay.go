// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package steps

import (
	"fmt"

	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/mirror"
	"github.com/similigh/mirror-bot/internal/workcopy"
)

// Replay applies the merge commit onto a fresh mirror branch and pushes it.
type Replay struct {
	replayer     pipeline.Replayer
	notifier     webhook.Notifier
	branchPrefix string
	dryRun       bool
}

// NewReplay creates a new replay step.
func NewReplay(deps *pipeline.Dependencies) *Replay {
	return &Replay{
		replayer:     deps.Replayer,
		notifier:     notifierOrLog(deps.Notifier),
		branchPrefix: deps.Config.WorkingCopy.BranchPrefix,
		dryRun:       deps.DryRun,
	}
}

// Name returns the step name.
func (s *Replay) Name() string {
	return "replay"
}

// Run replays the commit. Conflicts are recorded on the result, not returned.
func (s *Replay) Run(ctx *pipeline.Context) error {
	pr := ctx.PullRequest
	if pr == nil {
		return fmt.Errorf("no resolved pull request for %s", ctx.Commit.ShortSHA())
	}
	logger := ctx.Logger.With("component", "replay", "pr", pr.ID)

	branch := mirror.BranchName(s.branchPrefix, pr.ID)
	ctx.Result.Branch = branch
	logger.Info(fmt.Sprintf("Mirroring #%d: %q with its commit sha %s", pr.ID, pr.Title, ctx.Commit.SHA))

	if s.dryRun {
		logger.Info("DRY RUN: Would cherry-pick onto branch", "branch", branch)
		ctx.Result.Outcome = workcopy.Clean
		return nil
	}

	outcome, err := s.replayer.Replay(ctx.Ctx, ctx.Commit.SHA, branch)
	ctx.Result.Outcome = outcome
	if err != nil {
		logger.Error("Replay failed", "error", err)
		s.notifier.Notify(ctx.Ctx, fmt.Sprintf("Error while mirroring PR #%d\n%v", pr.ID, err))
		return err
	}

	if outcome == workcopy.Conflicted {
		logger.Info(fmt.Sprintf("Conflict while merging with %d", pr.ID))
	}
	return nil
}
