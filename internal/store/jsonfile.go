package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/internal/model"
)

// JSONFileStore keeps the whole cache in memory and rewrites a single JSON
// file on every Put, through a temp file plus rename so an interrupted run
// never leaves a torn cache behind.
type JSONFileStore struct {
	mu      sync.Mutex
	path    string
	records map[int64]model.RecencyRecord
}

// NewJSONFile opens (or starts) the cache at path. A missing file begins an
// empty cache; an unreadable or corrupt one is logged and discarded rather
// than aborting the run, since losing the cache only costs rescans.
func NewJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{
		path:    path,
		records: make(map[int64]model.RecencyRecord),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		zap.L().Warn("store: cache file unreadable, starting empty",
			zap.String("path", path),
			zap.Error(err))
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		zap.L().Warn("store: cache file corrupt, starting empty",
			zap.String("path", path),
			zap.Error(err))
		s.records = make(map[int64]model.RecencyRecord)
	}
	return s, nil
}

// Path returns the backing file location.
func (s *JSONFileStore) Path() string {
	return s.path
}

func (s *JSONFileStore) Get(_ context.Context, taxonID int64) (*model.RecencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[taxonID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *JSONFileStore) Put(_ context.Context, taxonID int64, rec model.RecencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[taxonID] = rec
	return s.save()
}

func (s *JSONFileStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *JSONFileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[int64]model.RecencyRecord)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "store: removing cache file %s", s.path)
	}
	return nil
}

func (s *JSONFileStore) Flush(_ context.Context) error {
	// Every Put already rewrote the file; there is nothing buffered to
	// flush, and saving here would resurrect a file Clear just removed.
	return nil
}

func (s *JSONFileStore) Close() error {
	return nil
}

// save rewrites the backing file atomically. Callers must hold mu.
func (s *JSONFileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrapf(err, "store: creating cache directory for %s", s.path)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.records); err != nil {
		return eris.Wrap(err, "store: encoding cache")
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return eris.Wrapf(err, "store: creating temp cache file %s", tmp)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close() //nolint:errcheck
		_ = os.Remove(tmp)
		return eris.Wrap(err, "store: writing temp cache file")
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck
		_ = os.Remove(tmp)
		return eris.Wrap(err, "store: syncing temp cache file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "store: closing temp cache file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrapf(err, "store: replacing cache file %s", s.path)
	}
	return nil
}
