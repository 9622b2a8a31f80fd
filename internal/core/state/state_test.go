// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/similigh/mirror-bot/internal/integrations/github"
)

func TestFileStoreMissingFileIsUnseeded(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "lastSha.txt"))

	_, err := store.Read(context.Background())
	if !errors.Is(err, ErrUnseeded) {
		t.Fatalf("expected ErrUnseeded, got %v", err)
	}
}

func TestFileStoreSentinelIsUnseeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastSha.txt")
	store := NewFileStore(path)

	if err := store.Write(context.Background(), Sentinel); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Read(context.Background()); !errors.Is(err, ErrUnseeded) {
		t.Fatalf("expected ErrUnseeded for sentinel, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lastSha.txt")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Write(ctx, "abc123"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Write(ctx, "def456"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "def456" {
		t.Errorf("expected def456, got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the checkpoint file, found %d entries", len(entries))
	}
}

func TestFileStoreTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lastSha.txt")
	if err := os.WriteFile(path, []byte("  abc123\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("")
	ctx := context.Background()

	if _, err := store.Read(ctx); !errors.Is(err, ErrUnseeded) {
		t.Fatalf("expected ErrUnseeded, got %v", err)
	}

	_ = store.Write(ctx, "a")
	_ = store.Write(ctx, "b")

	got, err := store.Read(ctx)
	if err != nil || got != "b" {
		t.Fatalf("expected b, got %q (%v)", got, err)
	}
	if h := store.History(); len(h) != 2 || h[0] != "a" || h[1] != "b" {
		t.Errorf("unexpected history %v", h)
	}
}

type fakeContentClient struct {
	files     map[string][]byte
	getErr    error
	ensureErr error
	puts      []string
	branches  []string
}

func (f *fakeContentClient) EnsureBranch(ctx context.Context, owner, repo, branch, from string) (bool, error) {
	if f.ensureErr != nil {
		return false, f.ensureErr
	}
	f.branches = append(f.branches, branch+"<-"+from)
	return true, nil
}

func (f *fakeContentClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.files[fmt.Sprintf("%s/%s@%s:%s", owner, repo, ref, path)]
	if !ok {
		return nil, github.ErrNotFound
	}
	return data, nil
}

func (f *fakeContentClient) PutFileContent(ctx context.Context, owner, repo, path, branch, message string, content []byte) error {
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[fmt.Sprintf("%s/%s@%s:%s", owner, repo, branch, path)] = content
	f.puts = append(f.puts, message)
	return nil
}

func TestGitHubStore(t *testing.T) {
	client := &fakeContentClient{}
	store := NewGitHubStore(client, "octo", "downstream", "lastSha.txt").WithBranch("state")
	ctx := context.Background()

	if _, err := store.Read(ctx); !errors.Is(err, ErrUnseeded) {
		t.Fatalf("expected ErrUnseeded when file is missing, got %v", err)
	}

	if err := store.Write(ctx, "abc123"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, ok := client.files["octo/downstream@state:lastSha.txt"]; !ok {
		t.Fatalf("expected file on state branch, got %v", client.files)
	}

	got, err := store.Read(ctx)
	if err != nil || got != "abc123" {
		t.Fatalf("expected abc123, got %q (%v)", got, err)
	}
}

func TestGitHubStoreReadError(t *testing.T) {
	store := NewGitHubStore(&fakeContentClient{getErr: errors.New("boom")}, "octo", "downstream", "lastSha.txt")

	_, err := store.Read(context.Background())
	if err == nil || errors.Is(err, ErrUnseeded) {
		t.Fatalf("expected a hard read error, got %v", err)
	}
}

func TestGitHubStoreCreatesStateBranchOnce(t *testing.T) {
	client := &fakeContentClient{}
	store := NewGitHubStore(client, "octo", "downstream", "lastSha.txt").WithBranch("state").WithBaseBranch("main")
	ctx := context.Background()

	for _, sha := range []string{Sentinel, "abc123"} {
		if err := store.Write(ctx, sha); err != nil {
			t.Fatalf("Write(%s) failed: %v", sha, err)
		}
	}
	if len(client.branches) != 1 || client.branches[0] != "state<-main" {
		t.Errorf("expected one branch creation from main, got %v", client.branches)
	}
	if len(client.puts) != 2 {
		t.Errorf("expected two commits, got %d", len(client.puts))
	}
}

func TestGitHubStoreBranchFailureBlocksWrite(t *testing.T) {
	client := &fakeContentClient{ensureErr: errors.New("forbidden")}
	store := NewGitHubStore(client, "octo", "downstream", "lastSha.txt")

	if err := store.Write(context.Background(), "abc123"); err == nil {
		t.Fatal("expected write to fail when the state branch cannot be created")
	}
	if len(client.puts) != 0 {
		t.Errorf("expected no commit, got %v", client.puts)
	}
}
