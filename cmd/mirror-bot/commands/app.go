// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"context"
	"fmt"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/core/state"
	"github.com/similigh/mirror-bot/internal/integrations/github"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/log"
	"github.com/similigh/mirror-bot/internal/mirror"
	"github.com/similigh/mirror-bot/internal/poller"
	"github.com/similigh/mirror-bot/internal/steps"
	"github.com/similigh/mirror-bot/internal/workcopy"
)

// app holds the collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	github   *github.Client
	store    state.CheckpointStore
	notifier webhook.Notifier
	resolver *mirror.Resolver
}

func newApp(ctx context.Context, cfg *config.Config) *app {
	client := github.NewClient(ctx, cfg.GitHub.Token, cfg.GitHub.MaxRetries)
	return &app{
		cfg:      cfg,
		github:   client,
		store:    newStore(cfg, client),
		notifier: webhook.FromConfig(cfg.Notify.WebhookURL, cfg.Notify.Mention, cfg.Notify.Timeout),
		resolver: mirror.NewResolver(client, cfg),
	}
}

func newStore(cfg *config.Config, client *github.Client) state.CheckpointStore {
	switch cfg.Checkpoint.Backend {
	case config.CheckpointBackendGitHub:
		return state.NewGitHubStore(client, cfg.Downstream.Owner, cfg.Downstream.Repo, cfg.Checkpoint.Path).
			WithBranch(cfg.Checkpoint.Branch).
			WithBaseBranch(cfg.Downstream.BaseBranch)
	default:
		return state.NewFileStore(cfg.Checkpoint.Path)
	}
}

// prepareWorkingCopy opens the working copy and adds the upstream remote if missing.
func (a *app) prepareWorkingCopy() (*workcopy.Replayer, error) {
	wc := a.cfg.WorkingCopy
	repo, err := workcopy.Open(wc.Path)
	if err != nil {
		return nil, err
	}

	created, err := workcopy.EnsureRemote(repo, wc.UpstreamRemote, a.cfg.Upstream.CloneURL)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("Added upstream remote", "component", "replay", "remote", wc.UpstreamRemote, "url", a.cfg.Upstream.CloneURL)
	} else {
		log.Debug("Remote already set", "component", "replay", "remote", wc.UpstreamRemote)
	}

	return workcopy.NewReplayer(workcopy.NewExecRunner(wc.Path), workcopy.Options{
		BaseBranch:       a.cfg.Downstream.BaseBranch,
		UpstreamRemote:   wc.UpstreamRemote,
		UpstreamBranch:   a.cfg.Upstream.Branch,
		DownstreamRemote: wc.DownstreamRemote,
		FetchDepth:       wc.FetchDepth,
	}), nil
}

// buildPipeline assembles the named workflow.
func (a *app) buildPipeline(workflow string, replayer pipeline.Replayer, dryRun bool) (*pipeline.Pipeline, error) {
	deps := &pipeline.Dependencies{
		Config:    a.cfg,
		Resolver:  a.resolver,
		Replayer:  replayer,
		Publisher: a.github,
		Store:     a.store,
		Notifier:  a.notifier,
		DryRun:    dryRun,
	}

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	p, err := registry.BuildFromNames(pipeline.ResolveSteps(nil, workflow), deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s workflow: %w", workflow, err)
	}
	return p, nil
}

// newPoller wires the mirror workflow into a Poller.
func (a *app) newPoller(dryRun bool) (*poller.Poller, error) {
	var replayer pipeline.Replayer
	if !dryRun {
		r, err := a.prepareWorkingCopy()
		if err != nil {
			return nil, err
		}
		replayer = r
	}

	p, err := a.buildPipeline("mirror", replayer, dryRun)
	if err != nil {
		return nil, err
	}

	up := a.cfg.Upstream
	discovery := poller.NewDiscovery(a.github, up.Owner, up.Repo, up.Branch, a.cfg.Mirror.ChangelogSkip)
	return poller.New(a.cfg, discovery, p, a.store, a.notifier), nil
}
