package review

import (
	"context"
	"fmt"

	"github.com/dshills/forgereview/internal/providers"
)

// AcquireFunc turns a prompt into review text. It may block for as long as a
// person or a model takes to answer.
type AcquireFunc func(ctx context.Context, prompt string) (string, error)

// FromReviewer adapts r to an AcquireFunc. maxTokens of 0 leaves the limit to
// the reviewer.
func FromReviewer(r providers.Reviewer, maxTokens int) AcquireFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := r.Review(ctx, providers.ReviewRequest{
			SystemPrompt: SystemPrompt(),
			UserPrompt:   prompt,
			MaxTokens:    maxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("%s review: %w", r.Name(), err)
		}
		return resp.Content, nil
	}
}
