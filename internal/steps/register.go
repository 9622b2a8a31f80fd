// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package steps

import (
	"github.com/similigh/mirror-bot/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("resolve", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewResolve(deps), nil
	})

	r.Register("replay", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewReplay(deps), nil
	})

	r.Register("publish", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewPublish(deps), nil
	})

	r.Register("checkpoint", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCheckpoint(deps), nil
	})
}
