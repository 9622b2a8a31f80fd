// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

// Package commands implements the Mirror-Bot command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/log"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mirror-bot",
	Short: "Mirror merged upstream pull requests into a downstream fork",
	Long: `Mirror-Bot polls an upstream repository for newly merged commits, resolves
each one to its pull request, replays it onto a branch of a downstream working
copy and opens a labelled mirror pull request.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: mirror-bot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: quiet, info, debug, trace (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	defer log.Close()
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig finds, loads and validates the configuration, then sets up logging from it.
func loadConfig() (*config.Config, error) {
	path := config.FindConfigPath(cfgFile)
	if path == "" {
		if cfgFile != "" {
			return nil, fmt.Errorf("config file not found: %s", cfgFile)
		}
		return nil, fmt.Errorf("no config file found (looked for mirror-bot.yaml, mirror-bot.yml, .github/mirror-bot.yaml)")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := setupLogging(cfg, os.Stderr); err != nil {
		return nil, err
	}
	log.Debug("Loaded config", "path", path)
	return cfg, nil
}

// setupLogging sends logs to w and, when configured, to the rotating log file.
func setupLogging(cfg *config.Config, w io.Writer) error {
	name := cfg.Log.Level
	if logLevel != "" {
		name = logLevel
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	if verbose && level < log.LevelDebug {
		level = log.LevelDebug
	}

	log.InitializeWithFile(level, w, log.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return nil
}
