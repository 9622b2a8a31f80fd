// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfigDefaults verifies that default values are applied correctly.
func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.PollInterval != 60*time.Second {
		t.Errorf("Expected PollInterval to be 60s, got %s", cfg.PollInterval)
	}
	if cfg.Downstream.BaseBranch != "master" {
		t.Errorf("Expected BaseBranch to be 'master', got %s", cfg.Downstream.BaseBranch)
	}
	if cfg.WorkingCopy.UpstreamRemote != "mirror" {
		t.Errorf("Expected UpstreamRemote to be 'mirror', got %s", cfg.WorkingCopy.UpstreamRemote)
	}
	if cfg.WorkingCopy.DownstreamRemote != "origin" {
		t.Errorf("Expected DownstreamRemote to be 'origin', got %s", cfg.WorkingCopy.DownstreamRemote)
	}
	if cfg.WorkingCopy.BranchPrefix != "upstream-mirror-" {
		t.Errorf("Expected BranchPrefix to be 'upstream-mirror-', got %s", cfg.WorkingCopy.BranchPrefix)
	}
	if cfg.Checkpoint.Backend != "file" {
		t.Errorf("Expected Checkpoint.Backend to be 'file', got %s", cfg.Checkpoint.Backend)
	}
	if cfg.Labels.Conflict != "Mirroring conflict" {
		t.Errorf("Expected Labels.Conflict to be 'Mirroring conflict', got %s", cfg.Labels.Conflict)
	}
	if len(cfg.Mirror.CrossMirrorPrefixes) != 2 {
		t.Errorf("Expected 2 cross mirror prefixes, got %v", cfg.Mirror.CrossMirrorPrefixes)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("MIRROR_TEST_TOKEN", "secret-token")

	yamlContent := `
poll_interval: 30s
github:
  token: ${MIRROR_TEST_TOKEN}
upstream:
  owner: Skyrat-SS13
  repo: Skyrat-tg
  name: Skyrat
origin:
  owner: tgstation
  repo: tgstation
  name: TG
downstream:
  owner: Iajret
  repo: FluffySTG
working_copy:
  path: /srv/fluffy
`
	path := filepath.Join(t.TempDir(), "mirror-bot.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GitHub.Token != "secret-token" {
		t.Errorf("Expected token to be expanded, got %q", cfg.GitHub.Token)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("Expected PollInterval 30s, got %s", cfg.PollInterval)
	}
	if cfg.Upstream.CloneURL != "https://github.com/Skyrat-SS13/Skyrat-tg.git" {
		t.Errorf("Unexpected derived clone URL %q", cfg.Upstream.CloneURL)
	}
	if cfg.UpstreamMirrorLabel() != "Skyrat Mirror" {
		t.Errorf("Expected 'Skyrat Mirror', got %q", cfg.UpstreamMirrorLabel())
	}
	if cfg.OriginMirrorLabel() != "TG Mirror" {
		t.Errorf("Expected 'TG Mirror', got %q", cfg.OriginMirrorLabel())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidateReportsAllMissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty config")
	}

	for _, want := range []string{"upstream", "origin", "downstream", "working_copy.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Upstream:    RepoConfig{Owner: "a", Repo: "b"},
		Origin:      RepoConfig{Owner: "c", Repo: "d"},
		Downstream:  DownstreamConfig{Owner: "e", Repo: "f"},
		WorkingCopy: WorkingCopyConfig{Path: "/tmp/wc"},
		Checkpoint:  CheckpointConfig{Backend: "redis"},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "checkpoint.backend") {
		t.Errorf("Expected checkpoint.backend error, got %v", err)
	}
}

func TestParseRawInvalidYAML(t *testing.T) {
	if _, err := parseRaw([]byte("poll_interval: [unterminated")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestFindConfigPathExplicitMissing(t *testing.T) {
	if got := FindConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
		t.Errorf("Expected empty path for missing explicit file, got %q", got)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Upstream.Branch != "master" {
		t.Errorf("Expected upstream branch 'master', got %q", cfg.Upstream.Branch)
	}
	if cfg.Labels.Conflict != "Mirroring conflict" {
		t.Errorf("Expected conflict label default, got %q", cfg.Labels.Conflict)
	}
	if cfg.Mirror.Unresolvable != UnresolvableSkip {
		t.Errorf("Expected unresolvable commits to be skipped by default, got %q", cfg.Mirror.Unresolvable)
	}
}

func TestValidateRejectsUnknownUnresolvableMode(t *testing.T) {
	cfg := &Config{
		Upstream:    RepoConfig{Owner: "a", Repo: "b"},
		Origin:      RepoConfig{Owner: "c", Repo: "d"},
		Downstream:  DownstreamConfig{Owner: "e", Repo: "f"},
		WorkingCopy: WorkingCopyConfig{Path: "/tmp/wc"},
		Mirror:      MirrorConfig{Unresolvable: "ignore"},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "mirror.unresolvable") {
		t.Errorf("Expected mirror.unresolvable error, got %v", err)
	}
}
