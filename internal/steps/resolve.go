// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

// Package steps contains the per-commit mirroring pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"errors"
	"fmt"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/mirror"
)

// Resolve turns the commit into a compiled pull request.
type Resolve struct {
	resolver pipeline.Resolver
	notifier webhook.Notifier
}

// NewResolve creates a new resolve step.
func NewResolve(deps *pipeline.Dependencies) *Resolve {
	return &Resolve{
		resolver: deps.Resolver,
		notifier: notifierOrLog(deps.Notifier),
	}
}

// Name returns the step name.
func (s *Resolve) Name() string {
	return "resolve"
}

// Run resolves the commit. Unresolvable commits and failed lookups are
// reported to the operator. An unresolvable commit ends the pipeline with
// ErrSkipPipeline unless the configuration blocks on it.
func (s *Resolve) Run(ctx *pipeline.Context) error {
	logger := ctx.Logger.With("component", "resolver")

	pr, err := s.resolver.Resolve(ctx.Ctx, ctx.Commit)
	if err != nil {
		var fetchErr *mirror.FetchError
		switch {
		case errors.Is(err, mirror.ErrUnresolvable):
			logger.Warn("Commit has no attached pull request", "message", ctx.Commit.Message)
			s.notifier.Notify(ctx.Ctx, fmt.Sprintf("Commit: %s\ndoesn't have attached PR to mirror.", ctx.Commit.Message))
			if blocks(ctx.Config) {
				return err
			}
			ctx.Result.SkipReason = "no pull request reference"
			return pipeline.ErrSkipPipeline
		case errors.As(err, &fetchErr):
			logger.Error("Failed to fetch pull request", "repo", fetchErr.Repo, "pr", fetchErr.Number, "error", fetchErr.Err)
			s.notifier.Notify(ctx.Ctx, fmt.Sprintf("Error while resolving PR #%d from %s\n%v", fetchErr.Number, fetchErr.Repo, fetchErr.Err))
		}
		return err
	}

	ctx.PullRequest = pr
	ctx.Result.PullRequestID = pr.ID
	logger.Debug("Resolved pull request", "pr", pr.ID, "title", pr.Title, "cross_mirror", pr.IsCrossMirror())
	return nil
}

func blocks(cfg *config.Config) bool {
	return cfg != nil && cfg.Mirror.Unresolvable == config.UnresolvableBlock
}

func notifierOrLog(n webhook.Notifier) webhook.Notifier {
	if n == nil {
		return webhook.LogNotifier{}
	}
	return n
}
