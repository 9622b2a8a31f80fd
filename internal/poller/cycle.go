// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/core/state"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/log"
	"github.com/similigh/mirror-bot/internal/mirror"
)

// Observer receives progress events from a cycle.
type Observer interface {
	CycleStarted(id, checkpoint string, commits []mirror.Commit)
	CommitFinished(commit mirror.Commit, result *pipeline.Result, err error)
}

// Report summarises one cycle.
type Report struct {
	ID         string
	Checkpoint string
	Discovered []mirror.Commit
	Results    []*pipeline.Result
	// Skipped holds commits whose pipeline ended early, such as unresolvable ones.
	Skipped []mirror.Commit
	// BlockedAt is the unresolvable commit that stopped the cycle in barrier mode.
	BlockedAt *mirror.Commit
	Started   time.Time
	Finished  time.Time
}

// Mirrored returns the number of commits whose checkpoint was written.
func (r *Report) Mirrored() int {
	n := 0
	for _, res := range r.Results {
		if res.Checkpointed {
			n++
		}
	}
	return n
}

// Poller runs mirroring cycles.
type Poller struct {
	cfg       *config.Config
	discovery *Discovery
	pipeline  *pipeline.Pipeline
	store     state.CheckpointStore
	notifier  webhook.Notifier
	observer  Observer
}

// New creates a Poller.
func New(cfg *config.Config, discovery *Discovery, p *pipeline.Pipeline, store state.CheckpointStore, notifier webhook.Notifier) *Poller {
	if notifier == nil {
		notifier = webhook.LogNotifier{}
	}
	return &Poller{
		cfg:       cfg,
		discovery: discovery,
		pipeline:  p,
		store:     store,
		notifier:  notifier,
	}
}

// WithObserver attaches a progress observer.
func (p *Poller) WithObserver(o Observer) *Poller {
	p.observer = o
	return p
}

// Cycle performs one pass: read the checkpoint, discover newer commits and
// mirror them oldest first, advancing the checkpoint after each success.
// An unseeded store is initialised to the sentinel and reported with
// state.ErrUnseeded. A per-commit failure abandons the rest of the cycle.
func (p *Poller) Cycle(ctx context.Context) (*Report, error) {
	report := &Report{ID: uuid.NewString(), Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	logger := log.With("component", "poller", "cycle", report.ID)

	checkpoint, err := p.store.Read(ctx)
	if errors.Is(err, state.ErrUnseeded) {
		logger.Error("Checkpoint is not seeded, aborting cycle")
		if werr := p.store.Write(ctx, state.Sentinel); werr != nil {
			logger.Error("Failed to initialise checkpoint", "error", werr)
		}
		p.notifier.Notify(ctx, "Checkpoint is not seeded. Set it to the last mirrored upstream commit with `mirror-bot seed <sha>`.")
		return report, err
	}
	if err != nil {
		return report, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	report.Checkpoint = checkpoint

	commits, err := p.discovery.Since(ctx, checkpoint)
	if err != nil {
		logger.Error("Commit discovery failed", "checkpoint", checkpoint, "error", err)
		if errors.Is(err, ErrCheckpointNotFound) {
			p.notifier.Notify(ctx, fmt.Sprintf("Checkpoint %s was not found in upstream history.", checkpoint))
		}
		return report, err
	}
	report.Discovered = commits
	logger.Info("Discovered commits", "checkpoint", checkpoint, "count", len(commits))

	if p.observer != nil {
		p.observer.CycleStarted(report.ID, checkpoint, commits)
	}

	for i := range commits {
		commit := commits[i]
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pctx := pipeline.NewContext(ctx, commit, p.cfg).WithLogger(logger)
		err := p.pipeline.Run(pctx)
		report.Results = append(report.Results, pctx.Result)
		if p.observer != nil {
			p.observer.CommitFinished(commit, pctx.Result, err)
		}

		if err == nil {
			if pctx.Result.Skipped {
				report.Skipped = append(report.Skipped, commit)
				logger.Warn("Skipped commit", "sha", commit.SHA, "reason", pctx.Result.SkipReason)
			}
			continue
		}

		if errors.Is(err, mirror.ErrUnresolvable) {
			report.BlockedAt = &commit
			logger.Warn("Unresolvable commit blocks the checkpoint", "sha", commit.SHA)
			return report, nil
		}

		logger.Error("Mirroring failed, abandoning remaining commits", "sha", commit.SHA, "remaining", len(commits)-i-1, "error", err)
		return report, err
	}

	logger.Info("Cycle finished", "mirrored", report.Mirrored(), "skipped", len(report.Skipped))
	return report, nil
}
