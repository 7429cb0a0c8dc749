package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dshills/forgereview/internal/config"
)

// rewriteTransport rewrites all request URLs to point at the test server.
type rewriteTransport struct {
	base    http.RoundTripper
	baseURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.baseURL[len("http://"):]
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func redirectTo(server *httptest.Server) *http.Client {
	return &http.Client{Transport: &rewriteTransport{base: server.Client().Transport, baseURL: server.URL}}
}

func TestAnthropic_Review(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}
		var body anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.System != "sys" || body.Messages[0].Content != "prompt" {
			t.Errorf("unexpected request body: %+v", body)
		}
		if body.MaxTokens != 4096 {
			t.Errorf("MaxTokens = %d, want default 4096", body.MaxTokens)
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicBlock{{Type: "text", Text: "Looks fine.\n"}, {Type: "text", Text: "SCORE: 88/100"}},
			Usage:   anthropicUsage{InputTokens: 100, OutputTokens: 10},
		})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "test-key", model: "claude-sonnet-4-20250514", client: redirectTo(server)}
	resp, err := a.Review(context.Background(), ReviewRequest{SystemPrompt: "sys", UserPrompt: "prompt"})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if resp.Content != "Looks fine.\nSCORE: 88/100" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "bad-key", model: "m", client: redirectTo(server)}
	_, err := a.Review(context.Background(), ReviewRequest{UserPrompt: "test"})
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestAnthropic_ServerErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(529)
		w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", model: "m", client: redirectTo(server)}
	_, err := a.Review(context.Background(), ReviewRequest{UserPrompt: "test"})
	if err == nil {
		t.Fatal("Expected error for 529")
	}
	if IsAuthError(err) {
		t.Error("529 should not be an auth error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{{Type: "tool_use"}}})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", model: "m", client: redirectTo(server)}
	if _, err := a.Review(context.Background(), ReviewRequest{UserPrompt: "test"}); err == nil {
		t.Error("Expected error for empty text content")
	}
}

func TestNewAnthropic_MissingKey(t *testing.T) {
	if _, err := NewAnthropic(config.LLMConfig{}, "m"); err == nil {
		t.Error("Expected error when key is missing")
	}
}
