// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/similigh/mirror-bot/internal/log"
	"github.com/similigh/mirror-bot/internal/poller"
)

var runNow bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll upstream and mirror new commits until stopped",
	Long: `Run the poller loop. Every poll_interval a cycle reads the checkpoint,
discovers new upstream commits and mirrors them oldest first. The next cycle
is always scheduled, whatever the outcome of the previous one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoop(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runNow, "now", false, "start the first cycle immediately instead of after poll_interval")
}

func runLoop(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, cfg)
	fatal := newFatalHandler(a.notifier, cfg.FatalExitDelay)
	defer fatal.recoverFatal()

	loop, err := a.startLoop(fatal, runNow)
	if err != nil {
		return err
	}

	log.Info("Starting poller", "component", "poller",
		"upstream", cfg.Upstream.FullName(), "downstream", cfg.Downstream.Owner+"/"+cfg.Downstream.Repo,
		"interval", cfg.PollInterval)

	if err := loop.Run(ctx); err != nil {
		return err
	}
	log.Info("Poller stopped", "component", "poller")
	return nil
}

// startLoop builds the poller loop. A startup failure is routed through the
// fatal handler so the operator is notified before the process exits.
func (a *app) startLoop(fatal *fatalHandler, immediate bool) (*poller.Loop, error) {
	p, err := a.newPoller(false)
	if err != nil {
		err = fmt.Errorf("failed to start poller: %w", err)
		fatal.Handle(err)
		return nil, err
	}

	cycle := func(ctx context.Context) error {
		_, err := p.Cycle(ctx)
		return err
	}
	return poller.NewLoop(cycle, poller.IntervalScheduler{Interval: a.cfg.PollInterval}).
		Immediate(immediate).
		OnFatal(fatal.Handle), nil
}
