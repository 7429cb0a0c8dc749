package forge

import (
	"context"

	"github.com/dshills/forgereview/internal/config"
)

// Client dispatches fetches to the per-forge clients.
type Client struct {
	github    *GitHubClient
	gitlab    *GitLabClient
	bitbucket *BitbucketClient
}

// NewClient builds a Client from the forge sections of cfg.
func NewClient(cfg config.Config) (*Client, error) {
	gh, err := NewGitHubClient(cfg.GitHub, cfg.Forge.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		github:    gh,
		gitlab:    NewGitLabClient(cfg.GitLab, cfg.Forge.Timeout),
		bitbucket: NewBitbucketClient(cfg.Bitbucket, cfg.Forge.Timeout),
	}, nil
}

// Fetch resolves prURL to its forge and returns the pull request details.
func (c *Client) Fetch(ctx context.Context, prURL string) (Details, error) {
	kind, err := Resolve(prURL)
	if err != nil {
		return Details{}, err
	}
	return c.FetchAs(ctx, kind, prURL)
}

// FetchAs fetches prURL with the client for kind, skipping domain resolution.
// The forge client still validates the URL shape, and only the GitHub client
// accepts hosts other than its public one.
func (c *Client) FetchAs(ctx context.Context, kind Kind, prURL string) (Details, error) {
	switch kind {
	case GitHub:
		return c.github.Fetch(ctx, prURL)
	case GitLab:
		return c.gitlab.Fetch(ctx, prURL)
	case Bitbucket:
		return c.bitbucket.Fetch(ctx, prURL)
	default:
		return Details{}, &UnsupportedProviderError{URL: prURL}
	}
}
