// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

// Package workcopy owns the local working copy used to replay upstream commits.
package workcopy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/similigh/mirror-bot/internal/log"
)

// DefaultCommandTimeout bounds a single git invocation.
const DefaultCommandTimeout = 5 * time.Minute

// Runner executes git commands inside the working copy.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CommandError describes a failed git invocation.
type CommandError struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git command failed: git %s", strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", strings.TrimSpace(e.Stderr))
	}
	if e.Err != nil && e.ExitCode < 0 {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs the git binary in a fixed directory.
type ExecRunner struct {
	dir     string
	timeout time.Duration
}

// NewExecRunner creates an ExecRunner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{dir: dir, timeout: DefaultCommandTimeout}
}

// Run executes git with args and returns trimmed stdout.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log.Debug("git "+strings.Join(args, " "), "component", "git")

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     args,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			cmdErr.Err = ctx.Err()
		}
		log.Trace("git failed", "component", "git", "exit", cmdErr.ExitCode, "stderr", strings.TrimSpace(stderr.String()))
		return "", cmdErr
	}
	out := strings.TrimSpace(stdout.String())
	log.Trace("git output", "component", "git", "stdout", out)
	return out, nil
}
