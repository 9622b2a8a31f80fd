// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package steps

import (
	"fmt"

	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/core/state"
)

// Checkpoint records the commit as fully mirrored.
type Checkpoint struct {
	store  state.CheckpointStore
	dryRun bool
}

// NewCheckpoint creates a new checkpoint step.
func NewCheckpoint(deps *pipeline.Dependencies) *Checkpoint {
	return &Checkpoint{
		store:  deps.Store,
		dryRun: deps.DryRun,
	}
}

// Name returns the step name.
func (s *Checkpoint) Name() string {
	return "checkpoint"
}

// Run persists the commit SHA immediately.
func (s *Checkpoint) Run(ctx *pipeline.Context) error {
	logger := ctx.Logger.With("component", "checkpoint")

	if s.dryRun {
		logger.Info("DRY RUN: Would advance checkpoint", "to", ctx.Commit.SHA)
		return nil
	}

	if err := s.store.Write(ctx.Ctx, ctx.Commit.SHA); err != nil {
		return fmt.Errorf("failed to advance checkpoint to %s: %w", ctx.Commit.ShortSHA(), err)
	}
	ctx.Result.Checkpointed = true
	logger.Debug("Checkpoint advanced", "to", ctx.Commit.SHA)
	return nil
}
