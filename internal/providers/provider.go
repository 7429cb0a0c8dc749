package providers

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/forgereview/internal/config"
)

// ReviewRequest contains the data sent to a reviewer.
type ReviewRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// ReviewResponse contains the review text returned by a reviewer.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer turns a review prompt into review text.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// Names lists the accepted reviewer names.
var Names = []string{"manual", "file", "anthropic", "openai", "gemini", "google", "ollama", "lmstudio"}

// Interactive reports whether the named reviewer needs a person at the
// terminal. Interactive reviews are never cached.
func Interactive(name string) bool {
	return name == "manual" || name == "file"
}

// New creates the reviewer selected by cfg.Reviewer. Interactive reviewers
// print to out and read from in.
func New(cfg config.Config, in io.Reader, out io.Writer) (Reviewer, error) {
	switch cfg.Reviewer {
	case "manual":
		return NewManual(in, out), nil
	case "file":
		return NewFile(cfg.Manual.ResponseFile, in, out), nil
	case "anthropic":
		return NewAnthropic(cfg.LLM, cfg.Model)
	case "openai":
		return NewOpenAI(cfg.LLM, cfg.Model)
	case "gemini", "google":
		return NewGemini(cfg.LLM, cfg.Model)
	case "ollama", "lmstudio":
		return NewOllama(cfg.LLM, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown reviewer: %s", cfg.Reviewer)
	}
}
