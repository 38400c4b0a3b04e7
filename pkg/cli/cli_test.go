package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

// fakeBackend serves the GitHub and Jira endpoints used by the workflows
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeBackend) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBackend) count(prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	fake := &fakeBackend{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/github/graphql":
			_, _ = w.Write([]byte(`{"data":{"repository":{"refs":{"nodes":[
				{"name":"v2020.02.18.1","target":{"oid":"c3","committedDate":"2020-02-18T09:00:00Z"}},
				{"name":"v2020.02.13.3","target":{"oid":"c2","committedDate":"2020-02-13T12:00:00Z"}}
			]}}}}`))

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/github/repos/org/repo/compare/"):
			_, _ = w.Write([]byte(`{"commits":[
				{"sha":"c3","commit":{"message":"TX-1 add feature, APP-2"}},
				{"sha":"c4","commit":{"message":"chore: bump deps"}}
			]}`))

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/rest/api/2/project/"):
			key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/project/")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "10000", "key": key, "name": key, "versions": []any{}})

		case r.Method == http.MethodPost && r.URL.Path == "/rest/api/2/version":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"1","name":"v2020.02.18.1","projectId":10000}`))

		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/rest/api/2/issue/"):
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
	t.Cleanup(server.Close)

	return fake, server
}

func captureStdout(t *testing.T) *bytes.Buffer {
	noColor := color.NoColor
	color.NoColor = true

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() {
		stdout = prev
		color.NoColor = noColor
	})
	return &buf
}

func backendArgs(server *httptest.Server) []string {
	return []string{
		"--github-token", "test-token",
		"--github-owner", "org",
		"--github-base-url", server.URL + "/github/",
		"--jira-base-url", server.URL,
		"--jira-username", "bot@example.com",
		"--jira-token", "jira-token",
	}
}

func TestRun_Release(t *testing.T) {
	fake, server := newFakeBackend(t)
	out := captureStdout(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	args := append([]string{"relkeep", "--log-level", "error", "release", "--repo", "repo", "--tag", "v2020.02.18.1", "--report", reportPath}, backendArgs(server)...)
	gt.NoError(t, Run(context.Background(), args))

	gt.Equal(t, fake.count("POST /github/graphql"), 1)
	gt.Equal(t, fake.count("GET /github/repos/org/repo/compare/v2020.02.13.3...v2020.02.18.1"), 1)
	gt.Equal(t, fake.count("GET /rest/api/2/project/"), 2)
	gt.Equal(t, fake.count("POST /rest/api/2/version"), 2)
	gt.Equal(t, fake.count("PUT /rest/api/2/issue/"), 2)

	gt.String(t, out.String()).Contains("release org/repo")
	gt.String(t, out.String()).Contains("issues:   TX-1, APP-2")

	data, err := os.ReadFile(reportPath)
	gt.NoError(t, err)
	var report map[string]any
	gt.NoError(t, json.Unmarshal(data, &report))
	gt.Equal(t, report["previous"], any("v2020.02.13.3"))
}

func TestRun_ReleaseDryRun(t *testing.T) {
	fake, server := newFakeBackend(t)
	out := captureStdout(t)

	args := append([]string{"relkeep", "--log-level", "error", "release", "-R", "repo", "-T", "v2020.02.18.1", "--dry-run"}, backendArgs(server)...)
	gt.NoError(t, Run(context.Background(), args))

	gt.Equal(t, fake.count("POST /rest/api/2/version"), 0)
	gt.Equal(t, fake.count("PUT /rest/api/2/issue/"), 0)
	gt.String(t, out.String()).Contains("(dry run)")
}

func TestRun_Deploy(t *testing.T) {
	fake, server := newFakeBackend(t)
	_ = captureStdout(t)

	args := append([]string{"relkeep", "--log-level", "error", "deploy",
		"--repo", "repo",
		"--previous", "abc123",
		"--current", "def456",
		"--type", "deployed",
		"--environment", "production",
	}, backendArgs(server)...)
	gt.NoError(t, Run(context.Background(), args))

	gt.Equal(t, fake.count("GET /github/repos/org/repo/compare/abc123...def456"), 1)
	gt.Equal(t, fake.count("PUT /rest/api/2/issue/TX-1"), 1)
	gt.Equal(t, fake.count("PUT /rest/api/2/issue/APP-2"), 1)
	gt.Equal(t, fake.count("POST /rest/api/2/version"), 0)
}

func TestRun_ConfigurationErrors(t *testing.T) {
	for _, name := range []string{
		"GITHUB_TOKEN", "RELKEEP_GITHUB_TOKEN",
		"GITHUB_OWNER", "RELKEEP_GITHUB_OWNER",
		"JIRA_ACCESS_TOKEN", "RELKEEP_JIRA_ACCESS_TOKEN",
	} {
		t.Setenv(name, "")
	}
	_ = captureStdout(t)

	t.Run("missing GitHub owner", func(t *testing.T) {
		err := Run(context.Background(), []string{"relkeep", "--log-level", "error", "release",
			"--repo", "repo", "--tag", "v2020.02.18.1",
			"--github-token", "t",
			"--jira-base-url", "example.atlassian.net", "--jira-username", "u", "--jira-token", "t",
		})
		gt.True(t, errors.Is(err, types.ErrMissingConfiguration))
	})

	t.Run("missing Jira token", func(t *testing.T) {
		err := Run(context.Background(), []string{"relkeep", "--log-level", "error", "deploy",
			"--repo", "repo", "--previous", "a", "--current", "b", "--type", "deployed", "--environment", "qa",
			"--github-token", "t", "--github-owner", "org",
			"--jira-base-url", "example.atlassian.net", "--jira-username", "u",
		})
		gt.True(t, errors.Is(err, types.ErrMissingConfiguration))
	})

	t.Run("invalid tag", func(t *testing.T) {
		err := Run(context.Background(), []string{"relkeep", "--log-level", "error", "release",
			"--repo", "repo", "--tag", "v1.2.3",
		})
		gt.True(t, errors.Is(err, types.ErrInvalidFormat))
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := Run(context.Background(), []string{"relkeep", "--log-level", "verbose", "release",
			"--repo", "repo", "--tag", "v2020.02.18.1",
		})
		gt.Error(t, err)
	})
}
