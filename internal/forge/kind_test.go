package forge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Kind
	}{
		{"github", "https://github.com/o/r/pull/1", GitHub},
		{"gitlab", "https://gitlab.com/o/r/-/merge_requests/1", GitLab},
		{"bitbucket", "https://bitbucket.org/o/r/pull-requests/1", Bitbucket},
		{"host case ignored", "https://GitHub.com/o/r/pull/1", GitHub},
		{"subdomain", "https://www.gitlab.com/o/r/-/merge_requests/1", GitLab},
		{"port", "https://bitbucket.org:443/o/r/pull-requests/1", Bitbucket},
		{"github wins over gitlab in host", "https://github.com.gitlab.com/o/r/pull/1", GitHub},
		{"gitlab wins over bitbucket in host", "https://gitlab.com.bitbucket.org/o/r/pull-requests/2", GitLab},
		{"other forge in path", "https://gitlab.com/mirrors/github.com/-/merge_requests/3", GitLab},
		{"other forge in repo name", "https://bitbucket.org/acme/gitlab.com-sync/pull-requests/2", Bitbucket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Unsupported(t *testing.T) {
	for _, u := range []string{
		"",
		"github",
		"github.com/o/r/pull/1",
		"https://example.com/o/r/pull/1",
		"https://codeberg.org/o/r/pulls/1",
		"https://example.com/github.com/a/b/pull/1",
		"http://proxy.local/?u=bitbucket.org",
		"https://[::1/github.com/o/r/pull/1",
	} {
		_, err := Resolve(u)
		var unsupported *UnsupportedProviderError
		require.True(t, errors.As(err, &unsupported), "url %q", u)
		assert.Equal(t, u, unsupported.URL)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" GitLab ")
	require.NoError(t, err)
	assert.Equal(t, GitLab, k)

	_, err = ParseKind("gitea")
	assert.Error(t, err)
}

func TestFetchError_Message(t *testing.T) {
	withStatus := &FetchError{Provider: GitLab, StatusCode: 404, Message: "404 Not Found"}
	assert.Equal(t, "failed to fetch PR details from gitlab (status 404): 404 Not Found", withStatus.Error())

	cause := errors.New("dial tcp: timeout")
	network := &FetchError{Provider: GitHub, Message: cause.Error(), Err: cause}
	assert.Equal(t, "failed to fetch PR details from github: dial tcp: timeout", network.Error())
	assert.ErrorIs(t, network, cause)
}
