// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package mirror

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v60/github"

	"github.com/similigh/mirror-bot/internal/core/config"
	"github.com/similigh/mirror-bot/internal/log"
)

// PullRequestFetcher looks up pull requests on the host.
type PullRequestFetcher interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*gh.PullRequest, error)
}

// Resolver turns upstream commits into compiled pull requests.
type Resolver struct {
	fetcher       PullRequestFetcher
	upstream      config.RepoConfig
	origin        config.RepoConfig
	crossPrefixes []string
	opts          CompileOptions
}

// NewResolver creates a Resolver for the configured upstream and origin repositories.
func NewResolver(fetcher PullRequestFetcher, cfg *config.Config) *Resolver {
	return &Resolver{
		fetcher:       fetcher,
		upstream:      cfg.Upstream,
		origin:        cfg.Origin,
		crossPrefixes: cfg.Mirror.CrossMirrorPrefixes,
		opts: CompileOptions{
			UpstreamName: cfg.Upstream.Name,
			OriginName:   cfg.Origin.Name,
			NoiseTokens:  cfg.Mirror.NoiseTokens,
			ConfigMarker: cfg.Mirror.ConfigMarker,
		},
	}
}

// Resolve fetches and compiles the pull request referenced by a commit.
// It returns an *UnresolvableError when the message has no reference and a
// *FetchError when a lookup fails.
func (r *Resolver) Resolve(ctx context.Context, commit Commit) (*PullRequest, error) {
	id, ok := ExtractReference(commit.Message)
	if !ok {
		return nil, &UnresolvableError{Commit: commit}
	}
	return r.ResolveNumber(ctx, id, commit.SHA)
}

// ResolveNumber fetches and compiles an upstream pull request by number.
func (r *Resolver) ResolveNumber(ctx context.Context, id int, mergeSHA string) (*PullRequest, error) {
	logger := log.With("component", "resolver", "pr", id)

	data, err := r.fetcher.GetPullRequest(ctx, r.upstream.Owner, r.upstream.Repo, id)
	if err != nil {
		return nil, &FetchError{Repo: r.upstream.FullName(), Number: id, Err: err}
	}

	pr := PullRequest{
		ID:             id,
		Title:          data.GetTitle(),
		Body:           data.GetBody(),
		URL:            data.GetHTMLURL(),
		Author:         data.GetUser().GetLogin(),
		Origin:         DirectMirror{},
		MergeCommitSHA: mergeSHA,
	}

	if r.isCrossMirrorTitle(pr.Title) {
		originURL, originID, found := ParseOriginURL(pr.Body)
		if found {
			originData, err := r.fetcher.GetPullRequest(ctx, r.origin.Owner, r.origin.Repo, originID)
			if err != nil {
				return nil, &FetchError{Repo: r.origin.FullName(), Number: originID, Err: err}
			}
			pr.Author = originData.GetUser().GetLogin()
			pr.Origin = CrossMirror{URL: originURL, ID: originID}
		}
	}

	if _, cross := pr.Origin.(CrossMirror); !cross && strings.Contains(strings.ToLower(pr.Title), "mirror") {
		logger.Warn("pull request has \"mirror\" in its title but no original url", "title", pr.Title)
	}

	compiled := r.opts.Compile(pr)
	logger.Debug("resolved pull request", "title", compiled.Title, "author", compiled.Author, "cross_mirror", compiled.IsCrossMirror())
	return &compiled, nil
}

func (r *Resolver) isCrossMirrorTitle(title string) bool {
	for _, prefix := range r.crossPrefixes {
		if prefix != "" && strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}
