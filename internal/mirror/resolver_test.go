// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package mirror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gh "github.com/google/go-github/v60/github"

	"github.com/similigh/mirror-bot/internal/core/config"
)

type fakeFetcher struct {
	prs   map[string]*gh.PullRequest
	calls []string
}

func (f *fakeFetcher) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gh.PullRequest, error) {
	key := fmt.Sprintf("%s/%s#%d", owner, repo, number)
	f.calls = append(f.calls, key)
	pr, ok := f.prs[key]
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return pr, nil
}

func newPR(title, body, url, login string) *gh.PullRequest {
	return &gh.PullRequest{
		Title:   gh.String(title),
		Body:    gh.String(body),
		HTMLURL: gh.String(url),
		User:    &gh.User{Login: gh.String(login)},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.RepoConfig{Owner: "Skyrat-SS13", Repo: "Skyrat-tg", Name: "Skyrat"},
		Origin:   config.RepoConfig{Owner: "tgstation", Repo: "tgstation", Name: "TG"},
		Mirror: config.MirrorConfig{
			CrossMirrorPrefixes: []string{"[MIRROR]", "[MISSED MIRROR]"},
			NoiseTokens:         []string{"[MDB IGNORE]", "[NO GBP]"},
			ConfigMarker:        "config: ",
		},
	}
}

func TestResolveDirectMirror(t *testing.T) {
	fetcher := &fakeFetcher{prs: map[string]*gh.PullRequest{
		"Skyrat-SS13/Skyrat-tg#4521": newPR("Fix teleporter", ":cl:\nfix: teleporter\n/:cl:", "https://github.com/Skyrat-SS13/Skyrat-tg/pull/4521", "alice"),
	}}
	resolver := NewResolver(fetcher, testConfig())

	pr, err := resolver.Resolve(context.Background(), Commit{SHA: "abc123", Message: "Fix teleporter (#4521)"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(fetcher.calls) != 1 {
		t.Errorf("expected one fetch, got %v", fetcher.calls)
	}
	if pr.ID != 4521 || pr.MergeCommitSHA != "abc123" {
		t.Errorf("unexpected identity: %+v", pr)
	}
	if pr.IsCrossMirror() {
		t.Error("expected direct mirror")
	}
	if pr.Title != "[Skyrat Mirror] Fix teleporter" {
		t.Errorf("unexpected title %q", pr.Title)
	}
}

func TestResolveCrossMirrorUsesOriginAuthor(t *testing.T) {
	fetcher := &fakeFetcher{prs: map[string]*gh.PullRequest{
		"Skyrat-SS13/Skyrat-tg#9000": newPR("[MIRROR] Buff lizards",
			"Original PR: https://github.com/tgstation/tgstation/pull/81234\n:cl:\nbalance: lizards\n/:cl:",
			"https://github.com/Skyrat-SS13/Skyrat-tg/pull/9000", "SkyratBot"),
		"tgstation/tgstation#81234": newPR("Buff lizards", "", "https://github.com/tgstation/tgstation/pull/81234", "carol"),
	}}
	resolver := NewResolver(fetcher, testConfig())

	pr, err := resolver.Resolve(context.Background(), Commit{SHA: "def456", Message: "[MIRROR] Buff lizards (#9000)"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if pr.Author != "carol" {
		t.Errorf("expected origin author carol, got %q", pr.Author)
	}
	origin, ok := pr.Origin.(CrossMirror)
	if !ok || origin.ID != 81234 {
		t.Fatalf("expected cross mirror of 81234, got %#v", pr.Origin)
	}
	if pr.Title != "[TG Mirror] Buff lizards" {
		t.Errorf("unexpected title %q", pr.Title)
	}
}

func TestResolveCrossMirrorWithoutURLFallsBackToDirect(t *testing.T) {
	fetcher := &fakeFetcher{prs: map[string]*gh.PullRequest{
		"Skyrat-SS13/Skyrat-tg#77": newPR("[MIRROR] Mystery", "no link here", "https://github.com/Skyrat-SS13/Skyrat-tg/pull/77", "SkyratBot"),
	}}
	resolver := NewResolver(fetcher, testConfig())

	pr, err := resolver.Resolve(context.Background(), Commit{SHA: "aaa", Message: "[MIRROR] Mystery (#77)"})
	if err != nil {
		t.Fatalf("expected best-effort resolution, got %v", err)
	}
	if pr.IsCrossMirror() {
		t.Error("expected direct mirror fallback")
	}
	if pr.Author != "SkyratBot" {
		t.Errorf("expected primary author, got %q", pr.Author)
	}
	if pr.Title != "[Skyrat Mirror] Mystery" {
		t.Errorf("unexpected title %q", pr.Title)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	fetcher := &fakeFetcher{}
	resolver := NewResolver(fetcher, testConfig())

	_, err := resolver.Resolve(context.Background(), Commit{SHA: "abc", Message: "Direct push to master"})
	if !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected ErrUnresolvable, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("expected zero fetches, got %v", fetcher.calls)
	}
}

func TestResolveFetchFailure(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{}, testConfig())

	_, err := resolver.Resolve(context.Background(), Commit{SHA: "abc", Message: "Gone (#404)"})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Number != 404 || fetchErr.Repo != "Skyrat-SS13/Skyrat-tg" {
		t.Errorf("unexpected fetch error %+v", fetchErr)
	}
}

func TestResolveOriginFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{prs: map[string]*gh.PullRequest{
		"Skyrat-SS13/Skyrat-tg#9": newPR("[MIRROR] X", "Original PR: https://github.com/tgstation/tgstation/pull/5", "u", "bot"),
	}}
	resolver := NewResolver(fetcher, testConfig())

	_, err := resolver.Resolve(context.Background(), Commit{SHA: "abc", Message: "[MIRROR] X (#9)"})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Repo != "tgstation/tgstation" {
		t.Fatalf("expected origin FetchError, got %v", err)
	}
}
