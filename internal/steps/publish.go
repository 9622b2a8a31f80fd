// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package steps

import (
	"fmt"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/mirror"
)

// Publish opens the downstream pull request and labels it.
type Publish struct {
	publisher  pipeline.Publisher
	notifier   webhook.Notifier
	downstream config.DownstreamConfig
	labels     mirror.LabelSet
	dryRun     bool
}

// NewPublish creates a new publish step.
func NewPublish(deps *pipeline.Dependencies) *Publish {
	cfg := deps.Config
	return &Publish{
		publisher:  deps.Publisher,
		notifier:   notifierOrLog(deps.Notifier),
		downstream: cfg.Downstream,
		labels:     LabelSetFor(cfg),
		dryRun:     deps.DryRun,
	}
}

// LabelSetFor builds the label names from configuration.
func LabelSetFor(cfg *config.Config) mirror.LabelSet {
	return mirror.LabelSet{
		Configs:        cfg.Labels.Configs,
		Conflict:       cfg.Labels.Conflict,
		UpstreamMirror: cfg.UpstreamMirrorLabel(),
		OriginMirror:   cfg.OriginMirrorLabel(),
	}
}

// Name returns the step name.
func (s *Publish) Name() string {
	return "publish"
}

// Run creates the pull request. A creation failure is fatal; a labeling
// failure is reported and recorded as a warning.
func (s *Publish) Run(ctx *pipeline.Context) error {
	pr := ctx.PullRequest
	if pr == nil {
		return fmt.Errorf("no resolved pull request for %s", ctx.Commit.ShortSHA())
	}
	logger := ctx.Logger.With("component", "publish", "pr", pr.ID)

	branch := ctx.Result.Branch
	if branch == "" {
		return fmt.Errorf("no mirror branch for PR #%d", pr.ID)
	}
	labels := s.labels.Labels(pr, ctx.Result.Conflicted())

	if s.dryRun {
		logger.Info("DRY RUN: Would open pull request", "title", pr.Title, "head", branch, "base", s.downstream.BaseBranch, "labels", labels)
		return nil
	}

	created, err := s.publisher.CreatePullRequest(ctx.Ctx, s.downstream.Owner, s.downstream.Repo, branch, s.downstream.BaseBranch, pr.Title, pr.Body)
	if err != nil {
		logger.Error(fmt.Sprintf("Error while mirroring PR #%d", pr.ID), "error", err)
		s.notifier.Notify(ctx.Ctx, fmt.Sprintf("Error while mirroring PR #%d\n%v", pr.ID, err))
		return err
	}
	ctx.Result.Published = &pipeline.Published{Number: created.GetNumber(), URL: created.GetHTMLURL()}
	logger.Info("Opened mirror pull request", "number", created.GetNumber(), "url", created.GetHTMLURL())

	if len(labels) == 0 {
		return nil
	}
	if err := s.publisher.AddLabels(ctx.Ctx, s.downstream.Owner, s.downstream.Repo, created.GetNumber(), labels); err != nil {
		logger.Error(fmt.Sprintf("Error while labeling PR #%d", pr.ID), "error", err)
		s.notifier.Notify(ctx.Ctx, fmt.Sprintf("Error while labeling PR #%d\n%v", pr.ID, err))
		ctx.Result.Warnings = append(ctx.Result.Warnings, err)
		return nil
	}
	ctx.Result.LabelsApplied = labels
	return nil
}
