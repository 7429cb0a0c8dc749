package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dshills/forgereview/internal/cache"
	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/forge"
	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/redact"
	"github.com/dshills/forgereview/mocks"
)

const testURL = "https://github.com/o/r/pull/1"

var testDetails = forge.Details{
	Title:        "Fix bug",
	Body:         "Closes #7",
	Diff:         "diff --git a/x.go b/x.go\n",
	ChangedFiles: 3,
	Provider:     forge.GitHub,
}

func staticAcquire(text string, calls *int) AcquireFunc {
	return func(context.Context, string) (string, error) {
		if calls != nil {
			*calls++
		}
		return text, nil
	}
}

func TestEngineRun(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(f *mocks.MockFetcher, s *mocks.MockStore)
		acquire   AcquireFunc
		wantErr   func(t *testing.T, err error)
		want      Result
	}{
		{
			name: "records a successful review",
			mockSetup: func(f *mocks.MockFetcher, s *mocks.MockStore) {
				f.EXPECT().Fetch(gomock.Any(), testURL).Return(testDetails, nil)
				s.EXPECT().Append(gomock.Any(), history.Record{
					PRURL:        testURL,
					Provider:     forge.GitHub,
					Title:        "Fix bug",
					Review:       "Good work. SCORE: 75/100",
					ChangedFiles: 3,
				}).DoAndReturn(func(_ context.Context, r history.Record) (history.Record, error) {
					r.Timestamp = "2026-01-02T03:04:05Z"
					return r, nil
				}).Times(1)
			},
			acquire: staticAcquire("Good work. SCORE: 75/100", nil),
			want: Result{
				PRURL:        testURL,
				Provider:     forge.GitHub,
				Title:        "Fix bug",
				Review:       "Good work. SCORE: 75/100",
				ChangedFiles: 3,
				Score:        75,
				HasScore:     true,
				Timestamp:    "2026-01-02T03:04:05Z",
			},
		},
		{
			name: "fetch failure records nothing",
			mockSetup: func(f *mocks.MockFetcher, s *mocks.MockStore) {
				f.EXPECT().Fetch(gomock.Any(), testURL).Return(forge.Details{}, &forge.FetchError{Provider: forge.GitHub, StatusCode: 404, Message: "Not Found"})
				s.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)
			},
			acquire: func(context.Context, string) (string, error) {
				t.Error("acquire must not be called after a fetch failure")
				return "", nil
			},
			wantErr: func(t *testing.T, err error) {
				var fe *forge.FetchError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, 404, fe.StatusCode)
			},
		},
		{
			name: "acquire failure records nothing",
			mockSetup: func(f *mocks.MockFetcher, s *mocks.MockStore) {
				f.EXPECT().Fetch(gomock.Any(), testURL).Return(testDetails, nil)
				s.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)
			},
			acquire: func(context.Context, string) (string, error) {
				return "", errors.New("model unavailable")
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "acquiring review: model unavailable")
			},
		},
		{
			name: "blank review is rejected",
			mockSetup: func(f *mocks.MockFetcher, s *mocks.MockStore) {
				f.EXPECT().Fetch(gomock.Any(), testURL).Return(testDetails, nil)
				s.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)
			},
			acquire: staticAcquire(" \n\t", nil),
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyReview)
			},
		},
		{
			name: "store failure is reported",
			mockSetup: func(f *mocks.MockFetcher, s *mocks.MockStore) {
				f.EXPECT().Fetch(gomock.Any(), testURL).Return(testDetails, nil)
				s.EXPECT().Append(gomock.Any(), gomock.Any()).Return(history.Record{}, errors.New("disk full"))
			},
			acquire: staticAcquire("ok", nil),
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "recording review: disk full")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mocks.NewMockFetcher(ctrl)
			store := mocks.NewMockStore(ctrl)
			tt.mockSetup(fetcher, store)

			e := &Engine{Fetcher: fetcher, Acquire: tt.acquire, Store: store, Log: zerolog.Nop()}
			got, err := e.Run(context.Background(), testURL)
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineRun_NoStore(t *testing.T) {
	e := &Engine{
		Fetcher: FetcherFunc(func(context.Context, string) (forge.Details, error) { return testDetails, nil }),
		Acquire: staticAcquire("no score here", nil),
		Log:     zerolog.Nop(),
	}
	got, err := e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.False(t, got.HasScore)
	assert.Empty(t, got.Timestamp)
}

func TestEngineRun_RedactsDiff(t *testing.T) {
	secret := "ghp_" + strings.Repeat("a", 36)
	d := testDetails
	d.Diff = "+token := \"" + secret + "\"\n"

	var prompt string
	e := &Engine{
		Fetcher: FetcherFunc(func(context.Context, string) (forge.Details, error) { return d, nil }),
		Acquire: func(_ context.Context, p string) (string, error) {
			prompt = p
			return "ok", nil
		},
		Redactor: redact.New(),
		Log:      zerolog.Nop(),
	}
	got, err := e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.NotContains(t, prompt, secret)
	assert.Contains(t, prompt, redact.Placeholder)
	assert.Positive(t, got.Redactions)
}

func TestEngineRun_Cache(t *testing.T) {
	c, err := cache.New(config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTLSeconds: 3600})
	require.NoError(t, err)

	var calls int
	e := &Engine{
		Fetcher:  FetcherFunc(func(context.Context, string) (forge.Details, error) { return testDetails, nil }),
		Acquire:  staticAcquire("cached text SCORE: 50/100", &calls),
		Cache:    c,
		CacheKey: "anthropic/model",
		Log:      zerolog.Nop(),
	}

	first, err := e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Review, second.Review)
	assert.Equal(t, 1, calls)

	// Interactive reviewers run with an empty key and never hit the cache.
	e.CacheKey = ""
	_, err = e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestEnginePrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testURL).Return(testDetails, nil)

	e := &Engine{
		Fetcher: fetcher,
		Acquire: func(context.Context, string) (string, error) {
			t.Error("Prompt must not acquire")
			return "", nil
		},
		Log: zerolog.Nop(),
	}
	p, err := e.Prompt(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, BuildPrompt(testDetails), p)
}

// TestEngineRun_EndToEnd drives a real GitHub client against a fake API and a
// file-backed history.
func TestEngineRun_EndToEnd(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/r/pulls/1":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"title":         "Fix bug",
				"body":          "",
				"changed_files": 3,
				"diff_url":      srv.URL + "/o/r/pull/1.diff",
			})
		case "/o/r/pull/1.diff":
			w.Write([]byte("diff --git a/x.go b/x.go\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.GitHub.APIURL = srv.URL
	cfg.Forge.Timeout = 5 * time.Second
	client, err := forge.NewClient(cfg)
	require.NoError(t, err)

	store := history.NewFileStore(filepath.Join(t.TempDir(), "review_history.json"), zerolog.Nop())
	var prompt string
	e := &Engine{
		Fetcher: client,
		Acquire: func(_ context.Context, p string) (string, error) {
			prompt = p
			return "Looks right.\nSCORE: 75/100", nil
		},
		Store: store,
		Log:   zerolog.Nop(),
	}

	res, err := e.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, forge.GitHub, res.Provider)
	assert.Equal(t, 3, res.ChangedFiles)
	assert.Contains(t, prompt, "PULL REQUEST DESCRIPTION: No description provided")

	h, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, forge.GitHub, h[0].Provider)
	assert.Equal(t, "Fix bug", h[0].Title)
	assert.Equal(t, 3, h[0].ChangedFiles)
	assert.NotEmpty(t, h[0].Timestamp)

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, history.Stats{TotalReviews: 1, AvgScore: 75, Providers: 1}, st)
}
