// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

// Package pipeline provides the per-commit step engine for Mirror-Bot.
// It defines the Step interface and Context structure used by all pipeline steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/log"
	"github.com/similigh/mirror-bot/internal/mirror"
	"github.com/similigh/mirror-bot/internal/workcopy"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., a skipped commit).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// Published describes the downstream pull request created for a commit.
type Published struct {
	Number int
	URL    string
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	CommitSHA     string
	PullRequestID int
	// Skipped is set when a step ended the pipeline with ErrSkipPipeline.
	Skipped       bool
	SkipReason    string
	Branch        string
	Outcome       workcopy.Outcome
	Published     *Published
	LabelsApplied []string
	Checkpointed  bool
	Warnings      []error
}

// Conflicted reports whether the replay had to force through a conflict.
func (r *Result) Conflicted() bool {
	return r.Outcome == workcopy.Conflicted
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Commit is the upstream commit being mirrored.
	Commit mirror.Commit

	// PullRequest is set by the resolve step.
	PullRequest *mirror.PullRequest

	// Config is the loaded configuration.
	Config *config.Config

	// Result accumulates the processing results.
	Result *Result

	// Logger carries the cycle and commit attributes.
	Logger *slog.Logger
}

// NewContext creates a new pipeline context for a commit.
func NewContext(ctx context.Context, commit mirror.Commit, cfg *config.Config) *Context {
	return &Context{
		Ctx:    ctx,
		Commit: commit,
		Config: cfg,
		Result: &Result{CommitSHA: commit.SHA},
		Logger: log.With("sha", commit.ShortSHA()),
	}
}

// WithLogger replaces the context logger, keeping the commit attribute.
func (c *Context) WithLogger(logger *slog.Logger) *Context {
	c.Logger = logger.With("sha", c.Commit.ShortSHA())
	return c
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				ctx.Result.Skipped = true
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
