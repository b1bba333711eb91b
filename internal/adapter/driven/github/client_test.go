package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/trustscore/internal/adapter/driven/github"
	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

type contributorJSON struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

func TestQuotaStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"resources": map[string]any{
				"core": map[string]any{"limit": 5000, "remaining": 42, "reset": 1700000000},
			},
		})
	})

	client := newTestClient(t, mux)
	status, err := client.QuotaStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, status.Remaining)
	assert.Equal(t, 5000, status.Limit)
	assert.Equal(t, int64(1700000000), status.ResetAtEpochSeconds())
}

func TestContributors_PaginationAndLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/contributors", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			writeJSON(t, w, []contributorJSON{{Login: "alice", Contributions: 90}, {Login: "bob", Contributions: 10}})
			return
		}
		writeJSON(t, w, []contributorJSON{{Login: "carol", Contributions: 5}, {Login: "dave", Contributions: 1}})
	})

	client := newTestClient(t, mux)

	all, err := client.Contributors(context.Background(), "owner", "repo", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, model.Contributor{Login: "alice", Contributions: 90}, all[0])
	assert.Equal(t, "dave", all[3].Login)

	limited, err := client.Contributors(context.Background(), "owner", "repo", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestIssues_MapsPullRequestsAndState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		writeJSON(t, w, []map[string]any{
			{
				"number":     1,
				"state":      "closed",
				"comments":   2,
				"user":       map[string]any{"login": "alice"},
				"created_at": "2026-01-01T00:00:00Z",
				"closed_at":  "2026-01-03T00:00:00Z",
			},
			{
				"number":       2,
				"state":        "open",
				"user":         map[string]any{"login": "bob"},
				"created_at":   "2026-01-02T00:00:00Z",
				"pull_request": map[string]any{"url": "https://api.github.com/repos/owner/repo/pulls/2"},
			},
		})
	})

	client := newTestClient(t, mux)
	issues, err := client.Issues(context.Background(), "owner", "repo", 100)

	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, model.IssueStateClosed, issues[0].State)
	assert.False(t, issues[0].IsPullRequest)
	assert.Equal(t, 2, issues[0].Comments)
	assert.Equal(t, 48*time.Hour, issues[0].ClosedAt.Sub(issues[0].CreatedAt))
	assert.True(t, issues[1].IsPullRequest)
	assert.Equal(t, "bob", issues[1].Author)
}

func TestPullRequests_MergedDetection(t *testing.T) {
	merged := "2026-01-05T00:00:00Z"

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		writeJSON(t, w, []map[string]any{
			{"number": 7, "state": "closed", "merged_at": merged, "user": map[string]any{"login": "alice"}},
			{"number": 8, "state": "closed", "user": map[string]any{"login": "bob"}},
		})
	})

	client := newTestClient(t, mux)
	prs, err := client.PullRequests(context.Background(), "owner", "repo", "closed", 100)

	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.True(t, prs[0].Merged)
	assert.Equal(t, model.PRStateClosed, prs[0].State)
	assert.False(t, prs[1].Merged)
}

func TestReviews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls/7/reviews", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []map[string]any{
			{"id": 11, "state": "APPROVED", "user": map[string]any{"login": "carol"}},
		})
	})

	client := newTestClient(t, mux)
	reviews, err := client.Reviews(context.Background(), "owner", "repo", 7)

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, model.ReviewStateApproved, reviews[0].State)
	assert.Equal(t, "carol", reviews[0].ReviewerLogin)
}

func TestLicense_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/license", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	client := newTestClient(t, mux)
	_, err := client.License(context.Background(), "owner", "repo")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestLicense_SPDX(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/license", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"license": map[string]any{"spdx_id": "MIT", "name": "MIT License"},
		})
	})

	client := newTestClient(t, mux)
	lic, err := client.License(context.Background(), "owner", "repo")

	require.NoError(t, err)
	assert.Equal(t, "MIT", lic.SPDXID)
	assert.Equal(t, "MIT License", lic.Name)
}

func TestReadme_DecodesBase64(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/readme", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"path":     "README.md",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("# Hello\n")),
		})
	})

	client := newTestClient(t, mux)
	readme, err := client.Readme(context.Background(), "owner", "repo")

	require.NoError(t, err)
	assert.Equal(t, "README.md", readme.Path)
	assert.Equal(t, "# Hello\n", string(readme.Content))
}

func TestFile_DirectoryIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/contents/package.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []map[string]any{{"type": "file", "path": "package.json/index.js"}})
	})

	client := newTestClient(t, mux)
	_, err := client.File(context.Background(), "owner", "repo", "package.json")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestWorkflowCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/actions/workflows", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"total_count": 3, "workflows": []any{}})
	})

	client := newTestClient(t, mux)
	n, err := client.WorkflowCount(context.Background(), "owner", "repo")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRetry_ServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(t, w, map[string]any{
			"full_name":      "owner/repo",
			"default_branch": "main",
			"pushed_at":      "2026-01-01T00:00:00Z",
		})
	})

	client := newTestClient(t, mux)
	meta, err := client.Repository(context.Background(), "owner", "repo")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "main", meta.DefaultBranch)
	assert.False(t, meta.PushedAt.IsZero())
}

func TestRetry_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	client := newTestClient(t, mux)
	_, err := client.Repository(context.Background(), "owner", "repo")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRateLimitError_MapsToSentinel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/contributors", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})

	client := newTestClient(t, mux)
	_, err := client.Contributors(context.Background(), "owner", "repo", 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrRateLimited)
}
