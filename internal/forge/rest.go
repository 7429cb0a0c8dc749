package forge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 512

// restClient performs the plain GET calls used by the GitLab and Bitbucket
// clients and maps every failure to a *FetchError.
type restClient struct {
	provider  Kind
	httpCli   *http.Client
	authorize func(*http.Request)
}

func newRESTClient(provider Kind, timeout time.Duration, authorize func(*http.Request)) restClient {
	return restClient{
		provider:  provider,
		httpCli:   &http.Client{Timeout: timeout},
		authorize: authorize,
	}
}

func (c restClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Provider: c.provider, Message: "creating request", Err: err}
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.authorize != nil {
		c.authorize(req)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: c.provider, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: c.provider, StatusCode: resp.StatusCode, Message: "reading response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}
	return body, nil
}

func (c restClient) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FetchError{Provider: c.provider, Message: "decoding response", Err: err}
	}
	return nil
}

// errorMessage prefers the "message" or "error.message" field of a JSON error
// body and falls back to the truncated raw body.
func errorMessage(status int, body []byte) string {
	var parsed struct {
		Message any `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		switch m := parsed.Message.(type) {
		case string:
			if m != "" {
				return m
			}
		case nil:
		default:
			if b, err := json.Marshal(m); err == nil {
				return string(b)
			}
		}
		if parsed.Error.Message != "" {
			return parsed.Error.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(status)
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}
