package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileStore keeps the history in a single JSON document that is read and
// rewritten in full on every operation. Appends are serialized within the
// process and each write replaces the file atomically, so readers never see a
// half-written document.
type FileStore struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created on the first Append.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log, now: time.Now}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored history. A missing, unreadable or malformed file
// yields an empty history rather than an error.
func (s *FileStore) Load(_ context.Context) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *FileStore) load() History {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cannot read review history, starting empty")
		}
		return History{}
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("review history is malformed, starting empty")
		return History{}
	}
	if h == nil {
		h = History{}
	}
	return h
}

// Append stores r at the head of the history and rewrites the file.
func (s *FileStore) Append(_ context.Context, r Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Timestamp = timestamp(s.now())
	h := prepend(s.load(), r)
	if err := s.write(h); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Stats computes statistics over the stored history.
func (s *FileStore) Stats(ctx context.Context) (Stats, error) {
	h, err := s.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(h), nil
}

func (s *FileStore) write(h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling review history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing review history: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing review history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing review history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing review history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing review history: %w", err)
	}
	return nil
}
