package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dshills/forgereview/internal/config"
)

var bitbucketURLRe = regexp.MustCompile(`^https://bitbucket\.org/([^/]+)/([^/]+)/pull-requests/(\d+)`)

// BitbucketClient fetches pull requests through the Bitbucket REST 2.0 API.
type BitbucketClient struct {
	rest   restClient
	apiURL string
}

// NewBitbucketClient creates a Bitbucket client. Basic auth is used only when
// both a user and an app token are configured.
func NewBitbucketClient(cfg config.BitbucketConfig, timeout time.Duration) *BitbucketClient {
	var authorize func(*http.Request)
	if cfg.User != "" && cfg.Token != "" {
		authorize = func(r *http.Request) { r.SetBasicAuth(cfg.User, cfg.Token) }
	}
	return &BitbucketClient{
		rest:   newRESTClient(Bitbucket, timeout, authorize),
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
	}
}

type bitbucketRendered struct {
	Raw string `json:"raw"`
}

type bitbucketPullRequest struct {
	Title        string            `json:"title"`
	Description  json.RawMessage   `json:"description"`
	Summary      bitbucketRendered `json:"summary"`
	Participants []json.RawMessage `json:"participants"`
}

// description accepts both the plain string form and the {"raw": ...} object
// form, then falls back to summary.raw.
func (pr bitbucketPullRequest) description() string {
	if len(pr.Description) > 0 {
		var s string
		if json.Unmarshal(pr.Description, &s) == nil && s != "" {
			return s
		}
		var r bitbucketRendered
		if json.Unmarshal(pr.Description, &r) == nil && r.Raw != "" {
			return r.Raw
		}
	}
	return pr.Summary.Raw
}

// Fetch returns the details of the Bitbucket pull request at prURL.
// ChangedFiles is the participant count, not the number of files in the diff.
func (c *BitbucketClient) Fetch(ctx context.Context, prURL string) (Details, error) {
	m := bitbucketURLRe.FindStringSubmatch(prURL)
	if m == nil {
		return Details{}, &InvalidURLFormatError{
			Provider: Bitbucket,
			URL:      prURL,
			Expected: "https://bitbucket.org/{owner}/{repo}/pull-requests/{id}",
		}
	}
	prAPI := fmt.Sprintf("%s/repositories/%s/%s/pullrequests/%s", c.apiURL, m[1], m[2], m[3])

	var pr bitbucketPullRequest
	if err := c.rest.getJSON(ctx, prAPI, &pr); err != nil {
		return Details{}, err
	}
	diff, err := c.rest.get(ctx, prAPI+"/diff", "text/plain")
	if err != nil {
		return Details{}, err
	}

	return Details{
		Title:        pr.Title,
		Body:         bodyOrPlaceholder(pr.description()),
		Diff:         string(diff),
		ChangedFiles: len(pr.Participants),
		Provider:     Bitbucket,
	}, nil
}
