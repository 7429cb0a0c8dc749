package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/forgereview/internal/forge"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "review_history.json"), zerolog.Nop())
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := newTestFileStore(t)
	h, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Empty(t, h)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	for name, content := range map[string]string{
		"truncated": `[{"pr_url": "https://github.com/o/r/pull/1", "rev`,
		"object":    `{"pr_url": "x"}`,
		"null":      `null`,
		"empty":     ``,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestFileStore(t)
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
			h, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, h)
			assert.Empty(t, h)
		})
	}
}

func TestFileStore_LoadLegacyDocument(t *testing.T) {
	s := newTestFileStore(t)
	legacy := `[
  {
    "timestamp": "2024-05-01T12:30:45.123456",
    "pr_url": "https://github.com/o/r/pull/3",
    "provider": "github",
    "title": "Fix bug",
    "review": "SCORE: 75/100",
    "changed_files": 3
  }
]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(legacy), 0o644))
	h, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "2024-05-01T12:30:45.123456", h[0].Timestamp)
	assert.Equal(t, forge.GitHub, h[0].Provider)
	assert.Equal(t, 3, h[0].ChangedFiles)
}

func TestFileStore_AppendStampsAndPersists(t *testing.T) {
	s := newTestFileStore(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	s.now = func() time.Time { return fixed }

	got, err := s.Append(context.Background(), Record{
		Timestamp:    "ignored",
		PRURL:        "https://gitlab.com/o/r/-/merge_requests/1",
		Provider:     forge.GitLab,
		Title:        "Add cache",
		Review:       "SCORE: 90/100",
		ChangedFiles: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T02:04:05Z", got.Timestamp)

	reopened := NewFileStore(s.Path(), zerolog.Nop())
	h, err := reopened.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, got, h[0])
}

func TestFileStore_Append51KeepsNewest50(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	for i := 1; i <= MaxRecords+1; i++ {
		_, err := s.Append(ctx, Record{PRURL: fmt.Sprintf("https://github.com/o/r/pull/%d", i), Provider: forge.GitHub})
		require.NoError(t, err)
	}

	h, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, h, MaxRecords)
	assert.Equal(t, "https://github.com/o/r/pull/51", h[0].PRURL)
	assert.Equal(t, "https://github.com/o/r/pull/2", h[MaxRecords-1].PRURL)
	for _, r := range h {
		assert.NotEqual(t, "https://github.com/o/r/pull/1", r.PRURL)
	}
}

func TestFileStore_AppendReplacesCorruptFile(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{{{"), 0o644))
	_, err := s.Append(context.Background(), Record{PRURL: "u"})
	require.NoError(t, err)

	h, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	s := newTestFileStore(t)
	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Append(context.Background(), Record{PRURL: fmt.Sprintf("u%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	h, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, h, n)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestFileStore_Stats(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	for _, r := range []Record{
		{Provider: forge.GitHub, Review: "...SCORE: 100/100"},
		{Provider: forge.GitHub, Review: "no score here"},
		{Provider: forge.Bitbucket, Review: "...SCORE: 80/100"},
	} {
		_, err := s.Append(ctx, r)
		require.NoError(t, err)
	}
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalReviews: 3, AvgScore: 90, Providers: 2}, st)
}

func TestFileStore_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.json")
	s := NewFileStore(path, zerolog.Nop())
	_, err := s.Append(context.Background(), Record{PRURL: "u"})
	require.NoError(t, err)
	assert.FileExists(t, path)
}
