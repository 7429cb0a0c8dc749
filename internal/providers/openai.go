package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dshills/forgereview/internal/config"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Reviewer interface for OpenAI's chat completions API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a new OpenAI provider. cfg.OpenAIBaseURL overrides the
// endpoint for compatible gateways.
func NewOpenAI(cfg config.LLMConfig, model string) (*OpenAI, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  cfg.OpenAIAPIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)
	return chatCompletion(ctx, o.client, o.baseURL, header, o.model, req)
}

// chatCompletion performs one OpenAI-compatible chat completion call. It is
// shared by the OpenAI and Ollama reviewers.
func chatCompletion(ctx context.Context, client *http.Client, url string, header http.Header, model string, req ReviewRequest) (ReviewResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	var result openaiResponse
	if err := postJSON(ctx, client, url, header, body, &result); err != nil {
		return ReviewResponse{}, err
	}
	if len(result.Choices) == 0 {
		return ReviewResponse{}, errors.New("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return ReviewResponse{}, errors.New("empty text content in API response")
	}
	return ReviewResponse{
		Content:    result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
