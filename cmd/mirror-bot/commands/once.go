// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/similigh/mirror-bot/internal/poller"
	"github.com/similigh/mirror-bot/internal/tui"
)

var (
	onceDryRun bool
	onceNoTUI  bool
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run exactly one mirroring cycle",
	Long: `Run a single poll cycle and exit. On an interactive terminal progress is
shown in a TUI; otherwise a plain summary is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)

	onceCmd.Flags().BoolVar(&onceDryRun, "dry-run", false, "resolve commits but do not replay, publish or checkpoint")
	onceCmd.Flags().BoolVar(&onceNoTUI, "no-tui", false, "disable the interactive progress view")
}

func runOnce(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a := newApp(ctx, cfg)
	p, err := a.newPoller(onceDryRun)
	if err != nil {
		return err
	}

	if onceNoTUI || verbose || !tui.IsTTY() {
		if onceDryRun {
			fmt.Println("[Mirror-Bot] Dry run: no branches, pull requests or checkpoints will be written")
		}
		report, err := p.Cycle(ctx)
		fmt.Println(summarize(report))
		return err
	}

	// Log output would corrupt the TUI; keep only the file sink.
	if err := setupLogging(cfg, io.Discard); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	statusChan := make(chan tea.Msg, 64)
	p.WithObserver(tui.NewObserver(statusChan))

	done := make(chan error, 1)
	go func() {
		report, err := p.Cycle(ctx)
		if err != nil {
			statusChan <- tui.ResultMsg{Success: false, Output: summarize(report) + "\n" + err.Error()}
		} else {
			statusChan <- tui.ResultMsg{Success: true, Output: summarize(report)}
		}
		done <- err
	}()

	final, err := tea.NewProgram(tui.NewModel(statusChan)).Run()
	if err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// The user may quit before the cycle ends.
	cancel()
	go func() {
		for range statusChan {
		}
	}()
	cycleErr := <-done

	if m, ok := final.(tui.Model); ok && m.Output() != "" {
		fmt.Println(m.Output())
	}
	return cycleErr
}

func summarize(report *poller.Report) string {
	if report == nil {
		return "[Mirror-Bot] Cycle did not start"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Mirror-Bot] Cycle %s: %d discovered, %d mirrored", report.ID, len(report.Discovered), report.Mirrored())
	if n := len(report.Skipped); n > 0 {
		fmt.Fprintf(&b, ", %d skipped", n)
	}
	if report.BlockedAt != nil {
		fmt.Fprintf(&b, "\n[Mirror-Bot] Blocked at %s: no pull request reference", report.BlockedAt.ShortSHA())
	}
	for _, res := range report.Results {
		if res.Published != nil {
			fmt.Fprintf(&b, "\n  #%d -> %s (%s)", res.PullRequestID, res.Published.URL, res.Outcome)
		}
	}
	return b.String()
}
