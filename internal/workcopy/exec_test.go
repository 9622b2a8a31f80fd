// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package workcopy

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox is a throwaway upstream repository, a bare downstream repository and
// a working copy cloned from downstream.
type sandbox struct {
	upstream   string
	downstream string
	work       string
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Mirror Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "mirror@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Mirror Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "mirror@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("HOME", t.TempDir())
}

func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := NewExecRunner(dir).Run(context.Background(), args...)
	require.NoError(t, err)
	return out
}

func commitFile(t *testing.T, dir, name, content, message string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	gitIn(t, dir, "add", name)
	gitIn(t, dir, "commit", "-m", message)
	return gitIn(t, dir, "rev-parse", "HEAD")
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	requireGit(t)
	root := t.TempDir()
	s := &sandbox{
		upstream:   filepath.Join(root, "upstream"),
		downstream: filepath.Join(root, "downstream.git"),
		work:       filepath.Join(root, "work"),
	}

	require.NoError(t, os.MkdirAll(s.upstream, 0o755))
	gitIn(t, s.upstream, "init", "-b", "master")
	commitFile(t, s.upstream, "a.txt", "base\n", "Initial")

	gitIn(t, root, "clone", "--bare", "file://"+s.upstream, s.downstream)
	gitIn(t, root, "clone", "file://"+s.downstream, s.work)

	repo, err := Open(s.work)
	require.NoError(t, err)
	_, err = EnsureRemote(repo, "mirror", "file://"+s.upstream)
	require.NoError(t, err)
	return s
}

func (s *sandbox) replayer() *Replayer {
	return s.replayerWithDepth(50)
}

func (s *sandbox) replayerWithDepth(depth int) *Replayer {
	return NewReplayer(NewExecRunner(s.work), Options{
		BaseBranch:       "master",
		UpstreamRemote:   "mirror",
		UpstreamBranch:   "master",
		DownstreamRemote: "origin",
		FetchDepth:       depth,
	})
}

// changedFiles lists the paths branch changes relative to downstream master.
func (s *sandbox) changedFiles(t *testing.T, branch string) string {
	t.Helper()
	return gitIn(t, s.downstream, "diff", "--name-only", "master", branch)
}

func TestExecReplayClean(t *testing.T) {
	s := newSandbox(t)
	sha := commitFile(t, s.upstream, "b.txt", "feature\n", "Add feature (#1)")

	outcome, err := s.replayer().Replay(context.Background(), sha, "upstream-mirror-1")
	require.NoError(t, err)
	assert.Equal(t, Clean, outcome)

	assert.Equal(t, "feature", gitIn(t, s.downstream, "show", "upstream-mirror-1:b.txt"))
	assert.Equal(t, "master", gitIn(t, s.work, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Empty(t, gitIn(t, s.work, "branch", "--list", "upstream-mirror-1"))
}

func TestExecReplayConflictIsPublished(t *testing.T) {
	s := newSandbox(t)

	// Downstream diverges on the same line upstream is about to change.
	commitFile(t, s.work, "a.txt", "downstream\n", "Local change")
	gitIn(t, s.work, "push", "origin", "master")
	sha := commitFile(t, s.upstream, "a.txt", "upstream\n", "Change base (#2)")

	outcome, err := s.replayer().Replay(context.Background(), sha, "upstream-mirror-2")
	require.NoError(t, err)
	assert.Equal(t, Conflicted, outcome)

	content := gitIn(t, s.downstream, "show", "upstream-mirror-2:a.txt")
	assert.Contains(t, content, "<<<<<<<")
	assert.Contains(t, content, "upstream")

	// The next replay starts from a clean base.
	next := commitFile(t, s.upstream, "c.txt", "more\n", "Another (#3)")
	outcome, err = s.replayer().Replay(context.Background(), next, "upstream-mirror-3")
	require.NoError(t, err)
	assert.Equal(t, Clean, outcome)
}

func TestExecReplayCommitOnShallowBoundary(t *testing.T) {
	s := newSandbox(t)
	commitFile(t, s.upstream, "x.txt", "one\n", "Add x (#4)")
	commitFile(t, s.upstream, "x.txt", "two\n", "Change x (#5)")
	sha := commitFile(t, s.upstream, "target.txt", "target\n", "Add target (#6)")

	// A depth of one leaves the target without its parent after the branch fetch.
	outcome, err := s.replayerWithDepth(1).Replay(context.Background(), sha, "upstream-mirror-6")
	require.NoError(t, err)
	assert.Equal(t, Clean, outcome)

	assert.Equal(t, "target.txt", s.changedFiles(t, "upstream-mirror-6"))
	assert.Equal(t, "target", gitIn(t, s.downstream, "show", "upstream-mirror-6:target.txt"))
}

func TestExecReplayCommitOlderThanFetchWindow(t *testing.T) {
	s := newSandbox(t)
	sha := commitFile(t, s.upstream, "old.txt", "old\n", "Add old (#7)")
	commitFile(t, s.upstream, "n1.txt", "new\n", "Newer (#8)")
	commitFile(t, s.upstream, "n2.txt", "newer\n", "Newest (#9)")

	outcome, err := s.replayerWithDepth(1).Replay(context.Background(), sha, "upstream-mirror-7")
	require.NoError(t, err)
	assert.Equal(t, Clean, outcome)

	assert.Equal(t, "old.txt", s.changedFiles(t, "upstream-mirror-7"))
}

func TestExecReplayUnknownCommit(t *testing.T) {
	s := newSandbox(t)

	outcome, err := s.replayer().Replay(context.Background(), strings.Repeat("0", 40), "upstream-mirror-9")
	require.Error(t, err)
	assert.Equal(t, InfrastructureFailure, outcome)
}

func TestExecRunnerCommandError(t *testing.T) {
	requireGit(t)

	_, err := NewExecRunner(t.TempDir()).Run(context.Background(), "rev-parse", "HEAD")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Greater(t, cmdErr.ExitCode, 0)
	assert.NotEmpty(t, cmdErr.Stderr)
}
