package forge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/forgereview/internal/config"
)

func TestGitLabFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gl-token", r.Header.Get("Authorization"))
		switch r.URL.EscapedPath() {
		case "/api/v4/projects/group%2Fproject/merge_requests/7":
			w.Write([]byte(`{"title":"Add cache","description":"Speeds up lookups"}`))
		case "/api/v4/projects/group%2Fproject/merge_requests/7/changes":
			w.Write([]byte(`{"changes":[{"diff":"@@ -1 +1 @@\n-a\n+b"},{"diff":"@@ -2 +2 @@\n-c\n+d"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewGitLabClient(config.GitLabConfig{Token: "gl-token", APIURL: srv.URL + "/api/v4/"}, 5*time.Second)
	d, err := c.Fetch(context.Background(), "https://gitlab.com/group/project/-/merge_requests/7")
	require.NoError(t, err)
	assert.Equal(t, Details{
		Title:        "Add cache",
		Body:         "Speeds up lookups",
		Diff:         "@@ -1 +1 @@\n-a\n+b\n@@ -2 +2 @@\n-c\n+d",
		ChangedFiles: 2,
		Provider:     GitLab,
	}, d)
}

func TestGitLabFetch_NoTokenNoChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if r.URL.EscapedPath() == "/projects/o%2Fr/merge_requests/1/changes" {
			w.Write([]byte(`{"changes":[]}`))
			return
		}
		w.Write([]byte(`{"title":"Empty","description":null}`))
	}))
	defer srv.Close()

	c := NewGitLabClient(config.GitLabConfig{APIURL: srv.URL}, 5*time.Second)
	d, err := c.Fetch(context.Background(), "https://gitlab.com/o/r/-/merge_requests/1")
	require.NoError(t, err)
	assert.Equal(t, NoDescription, d.Body)
	assert.Equal(t, "", d.Diff)
	assert.Equal(t, 0, d.ChangedFiles)
}

func TestGitLabFetch_InvalidURL(t *testing.T) {
	c := NewGitLabClient(config.GitLabConfig{APIURL: "http://127.0.0.1:1"}, time.Second)
	for _, u := range []string{
		"https://gitlab.com/o/r/merge_requests/1",
		"https://gitlab.com/o/r/-/merge_requests/abc",
		"http://gitlab.com/o/r/-/merge_requests/1",
		"https://gitlab.com/group/sub/r/-/merge_requests/1",
	} {
		_, err := c.Fetch(context.Background(), u)
		var invalid *InvalidURLFormatError
		require.True(t, errors.As(err, &invalid), "url %q", u)
		assert.Equal(t, GitLab, invalid.Provider)
	}
}

func TestGitLabFetch_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"401 Unauthorized"}`))
	}))
	defer srv.Close()

	c := NewGitLabClient(config.GitLabConfig{APIURL: srv.URL}, 5*time.Second)
	_, err := c.Fetch(context.Background(), "https://gitlab.com/o/r/-/merge_requests/1")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, GitLab, fe.Provider)
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
	assert.Equal(t, "401 Unauthorized", fe.Message)
}

func TestGitLabFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewGitLabClient(config.GitLabConfig{APIURL: url}, time.Second)
	_, err := c.Fetch(context.Background(), "https://gitlab.com/o/r/-/merge_requests/1")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.NotNil(t, fe.Err)
}
