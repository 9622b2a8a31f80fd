// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-18

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v60/github"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("not found")

const commitsPerPage = 100

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
	retry  RetryConfig
}

// GetPullRequest fetches pull request details.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, err := withRetry(ctx, c.retry, "get pull request", func() (*github.PullRequest, error) {
		pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
		return pr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %s/%s#%d: %w", owner, repo, number, classify(err))
	}
	return pr, nil
}

// ListCommitsUntil pages through branch history newest-first and returns every
// commit above the first one whose SHA starts with stop. The boundary commit
// is excluded. found reports whether the boundary was reached before history
// ran out.
func (c *Client) ListCommitsUntil(ctx context.Context, owner, repo, branch, stop string) (commits []*github.RepositoryCommit, found bool, err error) {
	opts := &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: commitsPerPage},
	}

	for {
		type page struct {
			commits []*github.RepositoryCommit
			next    int
		}
		p, err := withRetry(ctx, c.retry, "list commits", func() (page, error) {
			commits, resp, err := c.client.Repositories.ListCommits(ctx, owner, repo, opts)
			if err != nil {
				return page{}, err
			}
			return page{commits: commits, next: resp.NextPage}, nil
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to list commits: %w", classify(err))
		}

		for _, commit := range p.commits {
			if stop != "" && strings.HasPrefix(commit.GetSHA(), stop) {
				return commits, true, nil
			}
			commits = append(commits, commit)
		}

		if p.next == 0 {
			return commits, false, nil
		}
		opts.Page = p.next
	}
}

// CreatePullRequest opens a pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, head, base, title, body string) (*github.PullRequest, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("pull request title cannot be empty")
	}

	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(body),
	}
	pr, err := withRetry(ctx, c.retry, "create pull request", func() (*github.PullRequest, error) {
		pr, _, err := c.client.PullRequests.Create(ctx, owner, repo, newPR)
		return pr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", classify(err))
	}
	return pr, nil
}

// AddLabels adds labels to an issue or pull request.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}

	_, err := withRetry(ctx, c.retry, "add labels", func() ([]*github.Label, error) {
		added, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
		return added, err
	})
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", classify(err))
	}
	return nil
}

// CurrentUser returns the login of the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, err := withRetry(ctx, c.retry, "get user", func() (*github.User, error) {
		user, _, err := c.client.Users.Get(ctx, "")
		return user, err
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch authenticated user: %w", classify(err))
	}
	return user.GetLogin(), nil
}

// GetFileContent retrieves a file at ref.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, err := c.getFile(ctx, owner, repo, path, ref)
	if err != nil {
		return nil, err
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// PutFileContent creates or updates a file on branch.
func (c *Client) PutFileContent(ctx context.Context, owner, repo, path, branch, message string, content []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	}

	// Updates need the SHA of the blob being replaced.
	existing, err := c.getFile(ctx, owner, repo, path, branch)
	switch {
	case err == nil:
		opts.SHA = existing.SHA
	case !errors.Is(err, ErrNotFound):
		return err
	}

	_, err = withRetry(ctx, c.retry, "put file", func() (*github.RepositoryContentResponse, error) {
		resp, _, err := c.client.Repositories.CreateFile(ctx, owner, repo, path, opts)
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, classify(err))
	}
	return nil
}

// EnsureBranch creates branch at the tip of from when it does not exist yet.
// It reports whether the branch was created.
func (c *Client) EnsureBranch(ctx context.Context, owner, repo, branch, from string) (bool, error) {
	_, err := c.getBranchRef(ctx, owner, repo, branch)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	base, err := c.getBranchRef(ctx, owner, repo, from)
	if err != nil {
		return false, err
	}
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(base.GetObject().GetSHA())},
	}
	_, err = withRetry(ctx, c.retry, "create ref", func() (*github.Reference, error) {
		created, _, err := c.client.Git.CreateRef(ctx, owner, repo, ref)
		return created, err
	})
	if err != nil {
		return false, fmt.Errorf("failed to create branch %s: %w", branch, classify(err))
	}
	return true, nil
}

func (c *Client) getBranchRef(ctx context.Context, owner, repo, branch string) (*github.Reference, error) {
	ref, err := withRetry(ctx, c.retry, "get ref", func() (*github.Reference, error) {
		ref, _, err := c.client.Git.GetRef(ctx, owner, repo, "heads/"+branch)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read branch %s: %w", branch, classify(err))
	}
	return ref, nil
}

func (c *Client) getFile(ctx context.Context, owner, repo, path, ref string) (*github.RepositoryContent, error) {
	file, err := withRetry(ctx, c.retry, "get file", func() (*github.RepositoryContent, error) {
		file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
		return file, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, classify(err))
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return file, nil
}

// classify maps a 404 response onto ErrNotFound while keeping the original error.
func classify(err error) error {
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
