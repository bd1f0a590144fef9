package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slofy/reviewmate/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("", server.URL, time.Second)
	require.NoError(t, err)
	return client
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"Not Found"}`))
}

func TestClient_Commit(t *testing.T) {
	t.Run("creates branch and commits a new file", func(t *testing.T) {
		var branchCreated bool
		var putBody map[string]any

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/git/ref/heads/main":
				w.Write([]byte(`{"ref":"refs/heads/main","object":{"sha":"base-sha"}}`))
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/git/ref/heads/feature":
				if branchCreated {
					w.Write([]byte(`{"ref":"refs/heads/feature","object":{"sha":"base-sha"}}`))
					return
				}
				notFound(w)
			case r.Method == http.MethodPost && r.URL.Path == "/repos/slofy/demo/git/refs":
				branchCreated = true
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"ref":"refs/heads/feature","object":{"sha":"base-sha"}}`))
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/contents/main.go":
				notFound(w)
			case r.Method == http.MethodPut && r.URL.Path == "/repos/slofy/demo/contents/main.go":
				require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
				w.Write([]byte(`{"content":{"sha":"s1"},"commit":{"sha":"c1","html_url":"https://github.com/slofy/demo/commit/c1"}}`))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				notFound(w)
			}
		})

		res, err := client.Commit(context.Background(), model.CommitRequest{
			Owner: "slofy", Repo: "demo", Branch: "feature", BaseBranch: "main",
			Message: "add main",
			Files:   []model.CommitFile{{Path: "main.go", Content: "package main"}},
		})
		require.NoError(t, err)

		assert.True(t, branchCreated)
		assert.Equal(t, "feature", res.Branch)
		assert.Equal(t, []string{"https://github.com/slofy/demo/commit/c1"}, res.CommitURLs)
		assert.Equal(t, "add main", putBody["message"])
		assert.Equal(t, "feature", putBody["branch"])
		_, hasSHA := putBody["sha"]
		assert.False(t, hasSHA, "new file must not carry a blob sha")
	})

	t.Run("updates an existing file with its blob sha", func(t *testing.T) {
		var putBody map[string]any

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/git/ref/heads/main",
				r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/git/ref/heads/feature":
				w.Write([]byte(`{"ref":"refs/heads/feature","object":{"sha":"base-sha"}}`))
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/contents/main.go":
				w.Write([]byte(`{"type":"file","name":"main.go","path":"main.go","sha":"old-sha"}`))
			case r.Method == http.MethodPut && r.URL.Path == "/repos/slofy/demo/contents/main.go":
				require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
				w.Write([]byte(`{"content":{"sha":"s2"},"commit":{"sha":"c2","html_url":"https://github.com/slofy/demo/commit/c2"}}`))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				notFound(w)
			}
		})

		res, err := client.Commit(context.Background(), model.CommitRequest{
			Owner: "slofy", Repo: "demo", Branch: "feature", BaseBranch: "main",
			Message: "update main",
			Files:   []model.CommitFile{{Path: "main.go", Content: "package main // v2"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://github.com/slofy/demo/commit/c2"}, res.CommitURLs)
		assert.Equal(t, "old-sha", putBody["sha"])
	})

	t.Run("missing base branch fails the whole commit", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			notFound(w)
		})

		_, err := client.Commit(context.Background(), model.CommitRequest{
			Owner: "slofy", Repo: "demo", Branch: "feature", BaseBranch: "gone",
			Message: "m", Files: []model.CommitFile{{Path: "a", Content: "b"}},
		})
		assert.Error(t, err)
	})
}

func TestClient_OpenPullRequest(t *testing.T) {
	prJSON := `{"number":7,"html_url":"https://github.com/slofy/demo/pull/7"}`

	t.Run("creates when no open PR matches, rediscovers afterwards", func(t *testing.T) {
		var created bool

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/pulls":
				assert.Equal(t, "slofy:feature", r.URL.Query().Get("head"))
				assert.Equal(t, "main", r.URL.Query().Get("base"))
				assert.Equal(t, "open", r.URL.Query().Get("state"))
				if created {
					w.Write([]byte("[" + prJSON + "]"))
					return
				}
				w.Write([]byte("[]"))
			case r.Method == http.MethodPost && r.URL.Path == "/repos/slofy/demo/pulls":
				created = true
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(prJSON))
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				notFound(w)
			}
		})

		req := model.PullRequestRequest{
			Owner: "slofy", Repo: "demo", Branch: "feature", BaseBranch: "main",
			Title: "Fix things", Body: "details",
		}

		first, err := client.OpenPullRequest(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.PullRequestCreated, first.Status)

		second, err := client.OpenPullRequest(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.PullRequestExists, second.Status)
		assert.Equal(t, first.URL, second.URL)
	})
}

func TestClient_Browse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/contents/":
			w.Write([]byte(`[
				{"type":"dir","name":"internal","path":"internal","sha":"d1"},
				{"type":"file","name":"main.go","path":"main.go","sha":"f1"}
			]`))
		case r.Method == http.MethodGet && r.URL.Path == "/repos/slofy/demo/contents/main.go":
			w.Write([]byte(`{"type":"file","name":"main.go","path":"main.go","sha":"f1","encoding":"base64","content":"cGFja2FnZSBtYWlu"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			notFound(w)
		}
	})

	t.Run("tree maps dirs to folders", func(t *testing.T) {
		entries, err := client.Tree(context.Background(), "slofy", "demo", "")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, model.TreeEntry{ID: "d1", Name: "internal", Type: "folder", Path: "internal"}, entries[0])
		assert.Equal(t, model.TreeEntry{ID: "f1", Name: "main.go", Type: "file", Path: "main.go"}, entries[1])
	})

	t.Run("file content is decoded", func(t *testing.T) {
		content, err := client.FileContent(context.Background(), "slofy", "demo", "main.go")
		require.NoError(t, err)
		assert.Equal(t, "package main", content)
	})
}
