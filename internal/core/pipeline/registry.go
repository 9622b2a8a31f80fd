// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package pipeline

import (
	"context"
	"fmt"
	"sync"

	gh "github.com/google/go-github/v60/github"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/core/state"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/mirror"
	"github.com/similigh/mirror-bot/internal/workcopy"
)

// Registry holds registered step factories.
// Step factories create Step instances, allowing for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StepFactory
}

// StepFactory is a function that creates a Step.
// It receives dependencies (like clients, config) as parameters.
type StepFactory func(deps *Dependencies) (Step, error)

// Resolver turns a commit into a compiled pull request.
type Resolver interface {
	Resolve(ctx context.Context, commit mirror.Commit) (*mirror.PullRequest, error)
}

// Replayer applies a commit onto a fresh downstream branch.
type Replayer interface {
	Replay(ctx context.Context, sha, branch string) (workcopy.Outcome, error)
}

// Publisher opens and labels downstream pull requests.
type Publisher interface {
	CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string) (*gh.PullRequest, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
}

// Dependencies holds the dependencies that can be injected into steps.
type Dependencies struct {
	Config    *config.Config
	Resolver  Resolver
	Replayer  Replayer
	Publisher Publisher
	Store     state.CheckpointStore
	Notifier  webhook.Notifier

	// DryRun makes side-effecting steps log their intent instead of acting.
	DryRun bool
}

// NewRegistry creates a new step registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StepFactory),
	}
}

// Register adds a step factory to the registry.
func (r *Registry) Register(name string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a step factory by name.
func (r *Registry) Get(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// BuildFromNames creates a pipeline from a list of step names.
func (r *Registry) BuildFromNames(names []string, deps *Dependencies) (*Pipeline, error) {
	var steps []Step
	for _, name := range names {
		factory, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
		step, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}
	return New(steps...), nil
}

// Presets defines the built-in workflow presets.
var Presets = map[string][]string{
	// mirror: replay a commit downstream and advance the checkpoint
	"mirror": {
		"resolve",
		"replay",
		"publish",
		"checkpoint",
	},

	// resolve-only: fetch and compile the pull request, no side effects
	"resolve-only": {
		"resolve",
	},
}

// GetPreset returns the step names for a preset workflow.
func GetPreset(name string) ([]string, bool) {
	steps, ok := Presets[name]
	return steps, ok
}

// ResolveSteps determines the steps to use.
// Priority: explicit steps > workflow preset > default
func ResolveSteps(explicitSteps []string, workflow string) []string {
	if len(explicitSteps) > 0 {
		return explicitSteps
	}
	if workflow != "" {
		if preset, ok := GetPreset(workflow); ok {
			return preset
		}
	}
	return Presets["mirror"]
}
