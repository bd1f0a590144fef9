package model

import (
	"errors"
	"fmt"
)

// ActionKind identifies a billable client action.
type ActionKind string

const (
	ActionReview      ActionKind = "review"
	ActionCommit      ActionKind = "commit"
	ActionPullRequest ActionKind = "pull_request"
)

// Tariff returns the credit cost charged when the action completes successfully.
func (k ActionKind) Tariff() int {
	switch k {
	case ActionReview:
		return 5
	case ActionCommit, ActionPullRequest:
		return 10
	default:
		return 0
	}
}

var ErrMissingField = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

type ReviewRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (r *ReviewRequest) Validate() error {
	if r.Code == "" {
		return missingField("code")
	}
	if r.Language == "" {
		r.Language = "plaintext"
	}
	return nil
}

type CommitFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CommitRequest struct {
	Owner      string       `json:"owner"`
	Repo       string       `json:"repo"`
	Email      string       `json:"email"`
	Branch     string       `json:"branch"`
	BaseBranch string       `json:"baseBranch"`
	Message    string       `json:"message"`
	Files      []CommitFile `json:"files"`
}

func (r *CommitRequest) Validate() error {
	switch {
	case r.Owner == "":
		return missingField("owner")
	case r.Repo == "":
		return missingField("repo")
	case r.Branch == "":
		return missingField("branch")
	case r.BaseBranch == "":
		return missingField("baseBranch")
	case len(r.Files) == 0:
		return missingField("files")
	}
	for _, f := range r.Files {
		if f.Path == "" {
			return missingField("files[].path")
		}
	}
	return nil
}

type PullRequestRequest struct {
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	Branch     string `json:"branch"`
	BaseBranch string `json:"baseBranch"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Email      string `json:"email"`
}

func (r *PullRequestRequest) Validate() error {
	switch {
	case r.Owner == "":
		return missingField("owner")
	case r.Repo == "":
		return missingField("repo")
	case r.Branch == "":
		return missingField("branch")
	case r.BaseBranch == "":
		return missingField("baseBranch")
	}
	return nil
}

// CommitResult is the success shape of a commit action.
type CommitResult struct {
	Branch     string   `json:"branch"`
	CommitURLs []string `json:"commitUrls"`
}

// PullRequestStatus distinguishes a freshly opened PR from a re-discovered one.
type PullRequestStatus string

const (
	PullRequestCreated PullRequestStatus = "created"
	PullRequestExists  PullRequestStatus = "exists"
)

type PullRequestResult struct {
	Status PullRequestStatus `json:"status"`
	URL    string            `json:"url"`
}

// TreeEntry is a single node of a repository directory listing.
type TreeEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}
