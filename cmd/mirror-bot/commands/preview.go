// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/integrations/webhook"
	"github.com/similigh/mirror-bot/internal/mirror"
	"github.com/similigh/mirror-bot/internal/steps"
)

var previewCmd = &cobra.Command{
	Use:   "preview <pr-number>",
	Short: "Show how an upstream pull request would be mirrored",
	Long: `Resolve an upstream pull request and print the compiled title, body and
labels of its mirror. Nothing is replayed, published or notified.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid pull request number %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a := newApp(cmd.Context(), cfg)
		a.notifier = webhook.LogNotifier{}

		p, err := a.buildPipeline("resolve-only", nil, true)
		if err != nil {
			return err
		}

		commit := mirror.Commit{Message: fmt.Sprintf("preview (#%d)", number)}
		pctx := pipeline.NewContext(cmd.Context(), commit, cfg)
		if err := p.Run(pctx); err != nil {
			color.Red("✗ %v", err)
			return err
		}
		if pctx.Result.Skipped {
			color.Yellow("Skipped: %s", pctx.Result.SkipReason)
			return nil
		}

		printPreview(pctx.PullRequest, steps.LabelSetFor(cfg).Labels(pctx.PullRequest, false), cfg.WorkingCopy.BranchPrefix)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func printPreview(pr *mirror.PullRequest, labels []string, branchPrefix string) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Println(pr.Title)
	faint.Printf("branch %s  author %s\n", mirror.BranchName(branchPrefix, pr.ID), pr.Author)
	if origin, ok := pr.Origin.(mirror.CrossMirror); ok {
		faint.Printf("cross-mirror of #%d (%s)\n", origin.ID, origin.URL)
	}
	fmt.Printf("labels: %s\n\n", color.CyanString(strings.Join(labels, ", ")))
	fmt.Println(pr.Body)
}
