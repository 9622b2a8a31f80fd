// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

// Package config handles loading and validating mirror-bot configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Checkpoint backends.
const (
	CheckpointBackendFile   = "file"
	CheckpointBackendGitHub = "github"
)

// Handling of commits without a pull request reference.
const (
	// UnresolvableSkip notifies and moves on to the next commit.
	UnresolvableSkip = "skip"
	// UnresolvableBlock notifies and stops the cycle at the commit.
	UnresolvableBlock = "block"
)

// Config is the root configuration structure.
type Config struct {
	// PollInterval is the fixed delay between the end of one cycle and the start of the next.
	PollInterval time.Duration `yaml:"poll_interval"`

	// FatalExitDelay is how long the process waits after a fatal notification before exiting.
	FatalExitDelay time.Duration `yaml:"fatal_exit_delay"`

	// GitHub configures API access.
	GitHub GitHubConfig `yaml:"github"`

	// Upstream is the primary repository whose merged commits are mirrored.
	Upstream RepoConfig `yaml:"upstream"`

	// Origin is the repository that upstream itself mirrors from (cross-mirrors).
	Origin RepoConfig `yaml:"origin"`

	// Downstream is the fork receiving mirror pull requests.
	Downstream DownstreamConfig `yaml:"downstream"`

	// WorkingCopy configures the local clone used for replay.
	WorkingCopy WorkingCopyConfig `yaml:"working_copy"`

	// Checkpoint configures where the last mirrored commit is persisted.
	Checkpoint CheckpointConfig `yaml:"checkpoint"`

	// Notify configures the operator alert channel.
	Notify NotifyConfig `yaml:"notify"`

	// Mirror holds title/body compilation and discovery settings.
	Mirror MirrorConfig `yaml:"mirror"`

	// Labels names the labels attached to mirror pull requests.
	Labels LabelsConfig `yaml:"labels"`

	// Log configures process logging.
	Log LogConfig `yaml:"log"`
}

// GitHubConfig holds API credentials and retry settings.
type GitHubConfig struct {
	Token      string `yaml:"token"`
	MaxRetries int    `yaml:"max_retries"`
}

// RepoConfig identifies a repository on the host.
type RepoConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	// Name is the short display name used in title markers and labels (e.g. "Skyrat").
	Name string `yaml:"name"`
	// CloneURL is the fetch URL for the upstream-tracking remote.
	CloneURL string `yaml:"clone_url,omitempty"`
	// Branch is the history that is polled for new commits.
	Branch string `yaml:"branch,omitempty"`
}

// FullName returns "owner/repo".
func (r RepoConfig) FullName() string {
	return r.Owner + "/" + r.Repo
}

// DownstreamConfig identifies the fork receiving mirrors.
type DownstreamConfig struct {
	Owner      string `yaml:"owner"`
	Repo       string `yaml:"repo"`
	BaseBranch string `yaml:"base_branch"`
}

// WorkingCopyConfig configures the local clone.
type WorkingCopyConfig struct {
	Path             string `yaml:"path"`
	UpstreamRemote   string `yaml:"upstream_remote"`
	DownstreamRemote string `yaml:"downstream_remote"`
	FetchDepth       int    `yaml:"fetch_depth"`
	BranchPrefix     string `yaml:"branch_prefix"`
}

// CheckpointConfig configures the checkpoint backend.
type CheckpointConfig struct {
	// Backend is "file" or "github".
	Backend string `yaml:"backend"`
	// Path is the file path (file backend) or the path within the state branch (github backend).
	Path string `yaml:"path"`
	// Branch is the state branch used by the github backend.
	Branch string `yaml:"branch"`
}

// NotifyConfig configures the webhook notifier.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Mention    string        `yaml:"mention,omitempty"`
	Timeout    time.Duration `yaml:"timeout"`
}

// MirrorConfig holds discovery and compilation settings.
type MirrorConfig struct {
	CrossMirrorPrefixes []string `yaml:"cross_mirror_prefixes"`
	NoiseTokens         []string `yaml:"noise_tokens"`
	ChangelogSkip       string   `yaml:"changelog_skip"`
	ConfigMarker        string   `yaml:"config_marker"`
	// Unresolvable is "skip" or "block".
	Unresolvable string `yaml:"unresolvable"`
}

// LabelsConfig names the fixed labels.
type LabelsConfig struct {
	Configs  string `yaml:"configs"`
	Conflict string `yaml:"conflict"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// parseRaw expands environment variables and decodes YAML without applying defaults.
func parseRaw(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		"mirror-bot.yaml",
		"mirror-bot.yml",
		".github/mirror-bot.yaml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// Default returns a configuration with every default applied and no repositories set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = 60 * time.Second
	}
	if c.FatalExitDelay == 0 {
		c.FatalExitDelay = 5 * time.Second
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.GitHub.MaxRetries == 0 {
		c.GitHub.MaxRetries = 3
	}
	if c.Upstream.Name == "" {
		c.Upstream.Name = c.Upstream.Repo
	}
	if c.Upstream.CloneURL == "" && c.Upstream.Owner != "" && c.Upstream.Repo != "" {
		c.Upstream.CloneURL = fmt.Sprintf("https://github.com/%s.git", c.Upstream.FullName())
	}
	if c.Upstream.Branch == "" {
		c.Upstream.Branch = "master"
	}
	if c.Origin.Name == "" {
		c.Origin.Name = c.Origin.Repo
	}
	if c.Downstream.BaseBranch == "" {
		c.Downstream.BaseBranch = "master"
	}
	if c.WorkingCopy.UpstreamRemote == "" {
		c.WorkingCopy.UpstreamRemote = "mirror"
	}
	if c.WorkingCopy.DownstreamRemote == "" {
		c.WorkingCopy.DownstreamRemote = "origin"
	}
	if c.WorkingCopy.FetchDepth == 0 {
		c.WorkingCopy.FetchDepth = 50
	}
	if c.WorkingCopy.BranchPrefix == "" {
		c.WorkingCopy.BranchPrefix = "upstream-mirror-"
	}
	if c.Checkpoint.Backend == "" {
		c.Checkpoint.Backend = CheckpointBackendFile
	}
	if c.Checkpoint.Path == "" {
		c.Checkpoint.Path = "lastSha.txt"
	}
	if c.Checkpoint.Branch == "" {
		c.Checkpoint.Branch = "mirror-bot-state"
	}
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = 10 * time.Second
	}
	if len(c.Mirror.CrossMirrorPrefixes) == 0 {
		c.Mirror.CrossMirrorPrefixes = []string{"[MIRROR]", "[MISSED MIRROR]"}
	}
	if len(c.Mirror.NoiseTokens) == 0 {
		c.Mirror.NoiseTokens = []string{"[MDB IGNORE]", "[NO GBP]"}
	}
	if c.Mirror.ChangelogSkip == "" {
		c.Mirror.ChangelogSkip = "Automatic changelog"
	}
	if c.Mirror.Unresolvable == "" {
		c.Mirror.Unresolvable = UnresolvableSkip
	}
	if c.Mirror.ConfigMarker == "" {
		c.Mirror.ConfigMarker = "config: "
	}
	if c.Labels.Configs == "" {
		c.Labels.Configs = "Configs"
	}
	if c.Labels.Conflict == "" {
		c.Labels.Conflict = "Mirroring conflict"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}

// Validate reports every missing required field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Upstream.Owner == "" || c.Upstream.Repo == "" {
		errs = append(errs, errors.New("upstream.owner and upstream.repo are required"))
	}
	if c.Origin.Owner == "" || c.Origin.Repo == "" {
		errs = append(errs, errors.New("origin.owner and origin.repo are required"))
	}
	if c.Downstream.Owner == "" || c.Downstream.Repo == "" {
		errs = append(errs, errors.New("downstream.owner and downstream.repo are required"))
	}
	if c.WorkingCopy.Path == "" {
		errs = append(errs, errors.New("working_copy.path is required"))
	}
	if c.WorkingCopy.FetchDepth < 0 {
		errs = append(errs, fmt.Errorf("working_copy.fetch_depth must be positive, got %d", c.WorkingCopy.FetchDepth))
	}
	switch c.Checkpoint.Backend {
	case CheckpointBackendFile, CheckpointBackendGitHub:
	default:
		errs = append(errs, fmt.Errorf("checkpoint.backend must be 'file' or 'github', got %q", c.Checkpoint.Backend))
	}
	switch c.Mirror.Unresolvable {
	case UnresolvableSkip, UnresolvableBlock:
	default:
		errs = append(errs, fmt.Errorf("mirror.unresolvable must be 'skip' or 'block', got %q", c.Mirror.Unresolvable))
	}
	if c.PollInterval < time.Second {
		errs = append(errs, fmt.Errorf("poll_interval must be at least 1s, got %s", c.PollInterval))
	}

	return errors.Join(errs...)
}

// UpstreamMirrorLabel returns the label for direct mirrors (e.g. "Skyrat Mirror").
func (c *Config) UpstreamMirrorLabel() string {
	return strings.TrimSpace(c.Upstream.Name + " Mirror")
}

// OriginMirrorLabel returns the label for cross-mirrors (e.g. "TG Mirror").
func (c *Config) OriginMirrorLabel() string {
	return strings.TrimSpace(c.Origin.Name + " Mirror")
}
