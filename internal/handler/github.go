package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/model"
)

type githubOrchestrator interface {
	Commit(ctx context.Context, req model.CommitRequest) (*model.CommitResult, error)
	PullRequest(ctx context.Context, req model.PullRequestRequest) (*model.PullRequestResult, error)
}

type repoBrowser interface {
	Tree(ctx context.Context, owner, repo, path string) ([]model.TreeEntry, error)
	FileContent(ctx context.Context, owner, repo, path string) (string, error)
}

type GitHubHandler struct {
	orchestrator githubOrchestrator
	browser      repoBrowser
}

func NewGitHubHandler(orchestrator githubOrchestrator, browser repoBrowser) *GitHubHandler {
	return &GitHubHandler{orchestrator: orchestrator, browser: browser}
}

func (h *GitHubHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req model.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orchestrator.Commit(r.Context(), req)
	if err != nil {
		log.Error().Err(err).
			Str("repo", req.Owner+"/"+req.Repo).
			Str("branch", req.Branch).
			Msg("commit failed")
		writeError(w, http.StatusBadGateway, "Commit failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GitHubHandler) PullRequest(w http.ResponseWriter, r *http.Request) {
	var req model.PullRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.orchestrator.PullRequest(r.Context(), req)
	if err != nil {
		log.Error().Err(err).
			Str("repo", req.Owner+"/"+req.Repo).
			Str("branch", req.Branch).
			Msg("pull request failed")
		writeError(w, http.StatusBadGateway, "Pull request failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GitHubHandler) Tree(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	repo := r.URL.Query().Get("repo")
	path := r.URL.Query().Get("path")
	if owner == "" || repo == "" {
		writeError(w, http.StatusBadRequest, "Missing owner or repo")
		return
	}

	entries, err := h.browser.Tree(r.Context(), owner, repo, path)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("tree fetch failed")
		writeError(w, http.StatusBadGateway, "Failed to fetch tree")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *GitHubHandler) File(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	repo := r.URL.Query().Get("repo")
	path := r.URL.Query().Get("path")
	if owner == "" || repo == "" || path == "" {
		writeError(w, http.StatusBadRequest, "Missing owner, repo, or path")
		return
	}

	content, err := h.browser.FileContent(r.Context(), owner, repo, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("file fetch failed")
		writeError(w, http.StatusBadGateway, "Failed to fetch file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path, "content": content})
}
