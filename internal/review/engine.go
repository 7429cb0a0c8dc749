package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/forgereview/internal/cache"
	"github.com/dshills/forgereview/internal/forge"
	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/redact"
)

//go:generate mockgen -destination=../../mocks/mock_fetcher.go -package=mocks github.com/dshills/forgereview/internal/review Fetcher

// Fetcher returns the details of the pull request at prURL.
type Fetcher interface {
	Fetch(ctx context.Context, prURL string) (forge.Details, error)
}

// FetcherFunc adapts an ordinary function to a Fetcher.
type FetcherFunc func(ctx context.Context, prURL string) (forge.Details, error)

func (f FetcherFunc) Fetch(ctx context.Context, prURL string) (forge.Details, error) {
	return f(ctx, prURL)
}

// ErrEmptyReview is returned when the reviewer produces no text.
var ErrEmptyReview = errors.New("reviewer returned an empty review")

// Result is the outcome of one review. Only the exported JSON fields are part
// of the machine-readable output.
type Result struct {
	PRURL        string     `json:"pr_url" yaml:"pr_url"`
	Provider     forge.Kind `json:"provider" yaml:"provider"`
	Title        string     `json:"title" yaml:"title"`
	Review       string     `json:"review" yaml:"review"`
	ChangedFiles int        `json:"changed_files" yaml:"changed_files"`

	Score      int    `json:"-" yaml:"-"`
	HasScore   bool   `json:"-" yaml:"-"`
	Cached     bool   `json:"-" yaml:"-"`
	Redactions int    `json:"-" yaml:"-"`
	Timestamp  string `json:"-" yaml:"-"`
}

// Engine runs reviews. Fetcher and Acquire are required; the remaining fields
// are optional and a nil value disables that step.
type Engine struct {
	Fetcher Fetcher
	Acquire AcquireFunc

	// Store receives one record per successful review.
	Store history.Store
	// Cache holds automated reviews keyed by CacheKey and the prompt. An empty
	// CacheKey disables caching, which is what interactive reviewers want.
	Cache    *cache.Cache
	CacheKey string
	// Redactor strips secrets from the diff before it is put in the prompt.
	Redactor *redact.Redactor

	Log zerolog.Logger
}

// Run reviews the pull request at prURL and records the result.
func (e *Engine) Run(ctx context.Context, prURL string) (Result, error) {
	start := time.Now()
	log := e.Log.With().Str("pr_url", prURL).Logger()

	d, prompt, redactions, err := e.prepare(ctx, prURL)
	if err != nil {
		return Result{}, err
	}

	text, cached, err := e.acquire(ctx, prompt, log)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		PRURL:        prURL,
		Provider:     d.Provider,
		Title:        d.Title,
		Review:       text,
		ChangedFiles: d.ChangedFiles,
		Cached:       cached,
		Redactions:   redactions,
	}
	res.Score, res.HasScore = history.ParseScore(text)

	if e.Store != nil {
		rec, err := e.Store.Append(ctx, history.Record{
			PRURL:        res.PRURL,
			Provider:     res.Provider,
			Title:        res.Title,
			Review:       res.Review,
			ChangedFiles: res.ChangedFiles,
		})
		if err != nil {
			return Result{}, fmt.Errorf("recording review: %w", err)
		}
		res.Timestamp = rec.Timestamp
	}

	ev := log.Info().
		Str("provider", string(res.Provider)).
		Bool("cached", res.Cached).
		Dur("elapsed", time.Since(start))
	if res.HasScore {
		ev = ev.Int("score", res.Score)
	}
	ev.Msg("review complete")
	return res, nil
}

// Prompt fetches the pull request at prURL and returns the prompt that Run
// would send, without acquiring or recording anything.
func (e *Engine) Prompt(ctx context.Context, prURL string) (string, error) {
	_, prompt, _, err := e.prepare(ctx, prURL)
	return prompt, err
}

func (e *Engine) prepare(ctx context.Context, prURL string) (forge.Details, string, int, error) {
	d, err := e.Fetcher.Fetch(ctx, prURL)
	if err != nil {
		return forge.Details{}, "", 0, err
	}
	e.Log.Debug().
		Str("provider", string(d.Provider)).
		Str("title", d.Title).
		Int("changed_files", d.ChangedFiles).
		Int("diff_bytes", len(d.Diff)).
		Msg("fetched pull request")

	var redactions int
	if e.Redactor != nil {
		d.Diff, redactions = e.Redactor.Secrets(d.Diff)
		if redactions > 0 {
			e.Log.Warn().Int("count", redactions).Msg("redacted secrets from diff")
		}
	}
	return d, BuildPrompt(d), redactions, nil
}

func (e *Engine) acquire(ctx context.Context, prompt string, log zerolog.Logger) (string, bool, error) {
	var key string
	if e.Cache != nil && e.CacheKey != "" {
		key = cache.Key(e.CacheKey, prompt)
		if text, ok := e.Cache.Get(key); ok {
			log.Debug().Msg("using cached review")
			return text, true, nil
		}
	}

	text, err := e.Acquire(ctx, prompt)
	if err != nil {
		return "", false, fmt.Errorf("acquiring review: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", false, ErrEmptyReview
	}

	if key != "" {
		if err := e.Cache.Put(key, text); err != nil {
			log.Warn().Err(err).Msg("caching review failed")
		}
	}
	return text, false, nil
}
