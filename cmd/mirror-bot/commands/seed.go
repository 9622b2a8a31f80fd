// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package commands

import (
	"fmt"
	"regexp"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shaPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

var seedCmd = &cobra.Command{
	Use:   "seed <sha>",
	Short: "Set the checkpoint to an upstream commit",
	Long: `Write the checkpoint so the next cycle mirrors every upstream commit newer
than <sha>. Use this on first setup or to move past a commit that cannot be
mirrored automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sha := args[0]
		if !shaPattern.MatchString(sha) {
			return fmt.Errorf("invalid commit sha %q: expected 7-40 lowercase hex characters", sha)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a := newApp(cmd.Context(), cfg)

		previous, readErr := a.store.Read(cmd.Context())
		if err := a.store.Write(cmd.Context(), sha); err != nil {
			color.Red("✗ Failed to write checkpoint: %v", err)
			return err
		}

		if readErr == nil {
			color.Green("✓ Checkpoint moved from %s to %s", previous, sha)
		} else {
			color.Green("✓ Checkpoint set to %s", sha)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
