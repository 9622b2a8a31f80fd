// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/similigh/mirror-bot/internal/core/state"
	"github.com/similigh/mirror-bot/internal/workcopy"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration, credentials, working copy and checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			color.Red("✗ config: %v", err)
			return err
		}
		pass("config is valid")

		ctx := cmd.Context()
		a := newApp(ctx, cfg)
		failed := 0

		if cfg.GitHub.Token == "" {
			warn("no GitHub token configured; requests are unauthenticated")
		} else if login, err := a.github.CurrentUser(ctx); err != nil {
			fail("GitHub token: %v", err)
			failed++
		} else {
			pass("authenticated as %s", login)
		}

		repo, err := workcopy.Open(cfg.WorkingCopy.Path)
		if err != nil {
			fail("working copy: %v", err)
			failed++
		} else {
			pass("working copy at %s", cfg.WorkingCopy.Path)

			if branch, err := workcopy.CurrentBranch(repo); err == nil && branch != cfg.Downstream.BaseBranch {
				warn("working copy is on %q, expected %q", branch, cfg.Downstream.BaseBranch)
			}

			urls, err := workcopy.RemoteURLs(repo)
			if err != nil {
				fail("remotes: %v", err)
				failed++
			} else {
				if _, ok := urls[cfg.WorkingCopy.DownstreamRemote]; !ok {
					fail("remote %q is missing", cfg.WorkingCopy.DownstreamRemote)
					failed++
				} else {
					pass("remote %s", cfg.WorkingCopy.DownstreamRemote)
				}
				switch up, ok := urls[cfg.WorkingCopy.UpstreamRemote]; {
				case !ok:
					warn("remote %q is missing; it will be added on start", cfg.WorkingCopy.UpstreamRemote)
				case !slices.Contains(up, cfg.Upstream.CloneURL):
					warn("remote %q points at %v, expected %s", cfg.WorkingCopy.UpstreamRemote, up, cfg.Upstream.CloneURL)
				default:
					pass("remote %s -> %s", cfg.WorkingCopy.UpstreamRemote, cfg.Upstream.CloneURL)
				}
			}
		}

		sha, err := a.store.Read(ctx)
		switch {
		case errors.Is(err, state.ErrUnseeded):
			fail("checkpoint is not seeded; run `mirror-bot seed <sha>`")
			failed++
		case err != nil:
			fail("checkpoint: %v", err)
			failed++
		default:
			pass("checkpoint at %s (%s backend)", sha, cfg.Checkpoint.Backend)
		}

		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func pass(format string, args ...any) {
	color.Green("✓ "+format, args...)
}

func warn(format string, args ...any) {
	color.Yellow("! "+format, args...)
}

func fail(format string, args ...any) {
	color.Red("✗ "+format, args...)
}
