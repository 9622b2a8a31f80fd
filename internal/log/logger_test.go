// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"DEBUG", LevelDebug, false},
		{"trace", LevelTrace, false},
		{"warn", LevelQuiet, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestLevelsFilterOutput(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Debug("hidden debug")
	Info("visible info", "component", "poller")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Errorf("expected debug to be filtered at info level, got %q", out)
	}
	if !strings.Contains(out, "visible info") || !strings.Contains(out, "component=poller") {
		t.Errorf("expected info record with attributes, got %q", out)
	}
	if IsDebug() {
		t.Error("expected IsDebug() to be false at info level")
	}
}

func TestInitializeWithFileWritesBoth(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "mirror-bot.log")

	InitializeWithFile(LevelDebug, &buf, FileOptions{Path: path, MaxSizeMB: 1})
	defer func() { _ = Close() }()

	With("component", "replay").Debug("git command", "args", "fetch")

	if !strings.Contains(buf.String(), "git command") {
		t.Errorf("expected console output, got %q", buf.String())
	}
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), `"component":"replay"`) {
		t.Errorf("expected JSON record in file, got %q", string(data))
	}
}
