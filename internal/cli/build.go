package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/forgereview/internal/cache"
	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/forge"
	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/output"
	"github.com/dshills/forgereview/internal/providers"
	"github.com/dshills/forgereview/internal/redact"
	"github.com/dshills/forgereview/internal/review"
)

// engineOptions are per-invocation switches layered over the config.
type engineOptions struct {
	// forceProvider skips URL resolution and uses this forge's client.
	forceProvider string
	noRedact      bool
	noHistory     bool
	// promptOnly builds an engine that can only render prompts: no reviewer,
	// cache or history.
	promptOnly bool
	in            io.Reader
	out           io.Writer
}

// validateConfig rejects values that can only be a usage mistake.
func validateConfig(cfg config.Config) error {
	if !slices.Contains(providers.Names, cfg.Reviewer) {
		return withCode(ExitUsageError, fmt.Errorf("unknown reviewer %q (valid: %v)", cfg.Reviewer, providers.Names))
	}
	if !slices.Contains(output.Formats, cfg.Format) {
		return withCode(ExitUsageError, fmt.Errorf("unknown format %q (valid: %v)", cfg.Format, output.Formats))
	}
	return nil
}

// buildEngine assembles a review engine from cfg. The returned cleanup
// releases the history store and must be called once the engine is done.
func buildEngine(ctx context.Context, cfg config.Config, log zerolog.Logger, opts engineOptions) (*review.Engine, history.Store, func(), error) {
	if err := validateConfig(cfg); err != nil {
		return nil, nil, nil, err
	}

	client, err := forge.NewClient(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating forge client: %w", err)
	}
	var fetcher review.Fetcher = client
	if opts.forceProvider != "" {
		kind, err := forge.ParseKind(opts.forceProvider)
		if err != nil {
			return nil, nil, nil, withCode(ExitUsageError, err)
		}
		fetcher = review.FetcherFunc(func(ctx context.Context, prURL string) (forge.Details, error) {
			return client.FetchAs(ctx, kind, prURL)
		})
	}

	e := &review.Engine{
		Fetcher: fetcher,
		Log:     log,
	}

	if cfg.Privacy.RedactSecrets && !opts.noRedact {
		e.Redactor = redact.New(
			cfg.GitHub.Token, cfg.GitLab.Token, cfg.Bitbucket.Token,
			cfg.LLM.AnthropicAPIKey, cfg.LLM.OpenAIAPIKey, cfg.LLM.GeminiAPIKey, cfg.LLM.OllamaAPIKey,
		)
	}

	if opts.promptOnly {
		return e, nil, func() {}, nil
	}

	reviewer, err := providers.New(cfg, opts.in, opts.out)
	if err != nil {
		return nil, nil, nil, withCode(ExitAuthError, fmt.Errorf("creating reviewer: %w", err))
	}
	e.Acquire = review.FromReviewer(reviewer, cfg.MaxTokens)

	if !providers.Interactive(cfg.Reviewer) {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("review cache unavailable")
		} else {
			e.Cache = c
			e.CacheKey = cfg.Reviewer + "/" + cfg.Model
		}
	}

	cleanup := func() {}
	var store history.Store
	if !opts.noHistory {
		s, closeStore, err := history.Open(ctx, cfg.History, log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening history: %w", err)
		}
		store = s
		e.Store = s
		cleanup = closeStore
	}
	return e, store, cleanup, nil
}
