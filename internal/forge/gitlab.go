package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dshills/forgereview/internal/config"
)

var gitlabURLRe = regexp.MustCompile(`^https://gitlab\.com/([^/]+)/([^/]+)/-/merge_requests/(\d+)`)

// GitLabClient fetches merge requests through the GitLab REST v4 API.
type GitLabClient struct {
	rest   restClient
	apiURL string
}

// NewGitLabClient creates a GitLab client. A non-empty token is sent as a
// bearer token.
func NewGitLabClient(cfg config.GitLabConfig, timeout time.Duration) *GitLabClient {
	var authorize func(*http.Request)
	if cfg.Token != "" {
		authorize = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+cfg.Token) }
	}
	return &GitLabClient{
		rest:   newRESTClient(GitLab, timeout, authorize),
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
	}
}

type gitlabMergeRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type gitlabChanges struct {
	Changes []struct {
		Diff string `json:"diff"`
	} `json:"changes"`
}

// Fetch returns the details of the GitLab merge request at prURL.
func (c *GitLabClient) Fetch(ctx context.Context, prURL string) (Details, error) {
	m := gitlabURLRe.FindStringSubmatch(prURL)
	if m == nil {
		return Details{}, &InvalidURLFormatError{
			Provider: GitLab,
			URL:      prURL,
			Expected: "https://gitlab.com/{owner}/{repo}/-/merge_requests/{iid}",
		}
	}
	project := url.PathEscape(m[1] + "/" + m[2])
	mrURL := fmt.Sprintf("%s/projects/%s/merge_requests/%s", c.apiURL, project, m[3])

	var mr gitlabMergeRequest
	if err := c.rest.getJSON(ctx, mrURL, &mr); err != nil {
		return Details{}, err
	}
	var changes gitlabChanges
	if err := c.rest.getJSON(ctx, mrURL+"/changes", &changes); err != nil {
		return Details{}, err
	}

	diffs := make([]string, len(changes.Changes))
	for i, ch := range changes.Changes {
		diffs[i] = ch.Diff
	}
	body := ""
	if mr.Description != nil {
		body = *mr.Description
	}
	return Details{
		Title:        mr.Title,
		Body:         bodyOrPlaceholder(body),
		Diff:         strings.Join(diffs, "\n"),
		ChangedFiles: len(changes.Changes),
		Provider:     GitLab,
	}, nil
}
