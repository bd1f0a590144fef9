package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/slofy/reviewmate/internal/model"
)

// Client performs commit and pull-request actions against the GitHub API.
type Client struct {
	gh *gh.Client
}

// NewClient builds an authenticated client. baseURL overrides the API root
// (GitHub Enterprise or a test server); empty means api.github.com.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{Source: src}
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github api url: %w", err)
		}
		client.BaseURL = u
		client.UploadURL = u
	}

	return &Client{gh: client}, nil
}

// Commit pushes the given files to branch, creating the branch off baseBranch
// when it does not exist yet. Returns the HTML URL of each file commit.
func (c *Client) Commit(ctx context.Context, req model.CommitRequest) (*model.CommitResult, error) {
	baseRef, _, err := c.gh.Git.GetRef(ctx, req.Owner, req.Repo, "heads/"+req.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("get base branch %q: %w", req.BaseBranch, err)
	}

	if _, _, err := c.gh.Git.GetRef(ctx, req.Owner, req.Repo, "heads/"+req.Branch); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("get branch %q: %w", req.Branch, err)
		}
		_, _, err = c.gh.Git.CreateRef(ctx, req.Owner, req.Repo, &gh.Reference{
			Ref:    gh.String("refs/heads/" + req.Branch),
			Object: &gh.GitObject{SHA: baseRef.Object.SHA},
		})
		if err != nil {
			return nil, fmt.Errorf("create branch %q: %w", req.Branch, err)
		}
		log.Debug().
			Str("repo", req.Owner+"/"+req.Repo).
			Str("branch", req.Branch).
			Msg("branch created")
	}

	commitURLs := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		opts := &gh.RepositoryContentFileOptions{
			Message: gh.String(req.Message),
			Content: []byte(file.Content),
			Branch:  gh.String(req.Branch),
		}

		// An existing file needs its blob SHA to be replaced.
		existing, _, _, err := c.gh.Repositories.GetContents(ctx, req.Owner, req.Repo, file.Path,
			&gh.RepositoryContentGetOptions{Ref: req.Branch})
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("get contents of %q: %w", file.Path, err)
		}

		var resp *gh.RepositoryContentResponse
		if existing != nil && existing.SHA != nil {
			opts.SHA = existing.SHA
			resp, _, err = c.gh.Repositories.UpdateFile(ctx, req.Owner, req.Repo, file.Path, opts)
		} else {
			resp, _, err = c.gh.Repositories.CreateFile(ctx, req.Owner, req.Repo, file.Path, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("commit %q: %w", file.Path, err)
		}
		commitURLs = append(commitURLs, resp.Commit.GetHTMLURL())
	}

	return &model.CommitResult{Branch: req.Branch, CommitURLs: commitURLs}, nil
}

// OpenPullRequest opens a PR from branch into baseBranch. An already-open PR
// for the same head/base is returned as-is instead of duplicated. The
// list-then-create pair has a race window; two concurrent calls can both pass
// the list check. Accepted limitation.
func (c *Client) OpenPullRequest(ctx context.Context, req model.PullRequestRequest) (*model.PullRequestResult, error) {
	pulls, _, err := c.gh.PullRequests.List(ctx, req.Owner, req.Repo, &gh.PullRequestListOptions{
		State: "open",
		Head:  req.Owner + ":" + req.Branch,
		Base:  req.BaseBranch,
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	if len(pulls) > 0 {
		return &model.PullRequestResult{
			Status: model.PullRequestExists,
			URL:    pulls[0].GetHTMLURL(),
		}, nil
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, req.Owner, req.Repo, &gh.NewPullRequest{
		Title: gh.String(req.Title),
		Head:  gh.String(req.Branch),
		Base:  gh.String(req.BaseBranch),
		Body:  gh.String(req.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}

	return &model.PullRequestResult{
		Status: model.PullRequestCreated,
		URL:    pr.GetHTMLURL(),
	}, nil
}

// Tree lists the entries of a repository directory.
func (c *Client) Tree(ctx context.Context, owner, repo, path string) ([]model.TreeEntry, error) {
	_, dir, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get tree of %q: %w", path, err)
	}

	entries := make([]model.TreeEntry, 0, len(dir))
	for _, item := range dir {
		entryType := "file"
		if item.GetType() == "dir" {
			entryType = "folder"
		}
		id := item.GetSHA()
		if id == "" {
			id = item.GetName()
		}
		entries = append(entries, model.TreeEntry{
			ID:   id,
			Name: item.GetName(),
			Type: entryType,
			Path: item.GetPath(),
		})
	}
	return entries, nil
}

// FileContent returns the decoded content of a single file.
func (c *Client) FileContent(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", fmt.Errorf("get contents of %q: %w", path, err)
	}
	if file == nil {
		return "", fmt.Errorf("%q is not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", path, err)
	}
	return content, nil
}

func isNotFound(err error) bool {
	var errResp *gh.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
