package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/dshills/forgereview/internal/config"
)

const githubDiffMediaType = "application/vnd.github.v3.diff"

// GitHubClient fetches pull requests through the GitHub REST v3 API.
type GitHubClient struct {
	client *github.Client
}

// NewGitHubClient creates a GitHub client. An empty token gives
// unauthenticated access; otherwise the token is sent as a bearer token on
// every request, including the diff download.
func NewGitHubClient(cfg config.GitHubConfig, timeout time.Duration) (*GitHubClient, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   transport,
		}
	}
	client := github.NewClient(&http.Client{Timeout: timeout, Transport: transport})

	if cfg.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github.api_url %q: %w", cfg.APIURL, err)
		}
		client.BaseURL = base
	}
	return &GitHubClient{client: client}, nil
}

// parseGitHubURL takes owner, repo and number positionally from the trailing
// path segments of .../{owner}/{repo}/pull/{number}.
func parseGitHubURL(prURL string) (owner, repo string, number int, err error) {
	invalid := &InvalidURLFormatError{
		Provider: GitHub,
		URL:      prURL,
		Expected: "https://github.com/{owner}/{repo}/pull/{number}",
	}
	parts := strings.Split(strings.TrimRight(prURL, "/"), "/")
	if len(parts) < 4 {
		return "", "", 0, invalid
	}
	owner, repo = parts[len(parts)-4], parts[len(parts)-3]
	number, convErr := strconv.Atoi(parts[len(parts)-1])
	if convErr != nil || number <= 0 || owner == "" || repo == "" {
		return "", "", 0, invalid
	}
	return owner, repo, number, nil
}

// Fetch returns the details of the GitHub pull request at prURL.
func (c *GitHubClient) Fetch(ctx context.Context, prURL string) (Details, error) {
	owner, repo, number, err := parseGitHubURL(prURL)
	if err != nil {
		return Details{}, err
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return Details{}, githubFetchError(err)
	}
	diffURL := pr.GetDiffURL()
	if diffURL == "" {
		return Details{}, &FetchError{Provider: GitHub, Message: "pull request not found or inaccessible"}
	}

	req, err := c.client.NewRequest(http.MethodGet, diffURL, nil)
	if err != nil {
		return Details{}, &FetchError{Provider: GitHub, Message: "creating diff request", Err: err}
	}
	req.Header.Set("Accept", githubDiffMediaType)

	var diff bytes.Buffer
	if _, err := c.client.Do(ctx, req, &diff); err != nil {
		return Details{}, githubFetchError(err)
	}

	return Details{
		Title:        pr.GetTitle(),
		Body:         bodyOrPlaceholder(pr.GetBody()),
		Diff:         diff.String(),
		ChangedFiles: pr.GetChangedFiles(),
		Provider:     GitHub,
	}, nil
}

func githubFetchError(err error) *FetchError {
	fe := &FetchError{Provider: GitHub, Message: err.Error(), Err: err}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr):
		fe.Message = rateErr.Message
		if rateErr.Response != nil {
			fe.StatusCode = rateErr.Response.StatusCode
		}
	case errors.As(err, &abuseErr):
		fe.Message = abuseErr.Message
		if abuseErr.Response != nil {
			fe.StatusCode = abuseErr.Response.StatusCode
		}
	case errors.As(err, &respErr):
		if respErr.Response != nil {
			fe.StatusCode = respErr.Response.StatusCode
		}
		fe.Message = respErr.Message
		if fe.Message == "" {
			fe.Message = http.StatusText(fe.StatusCode)
		}
	}
	return fe
}
