// Package store persists the visitor's active location: one JSON record at
// a fixed key, written wholesale and never merged.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/riverbend/localwaters/internal/domain"
)

// LocationStore is the durable record of the active location. Load returns
// (nil, nil) when no location has been stored.
type LocationStore interface {
	Load() (*domain.Location, error)
	Save(loc domain.Location) error
	Clear() error
}

// FileStore keeps the location record in a single JSON file. Concurrent
// writers from separate processes race last-write-wins; the record is a
// single small value, so the loser's write is simply replaced.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The parent directory is created
// on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*domain.Location, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read location: %w", err)
	}

	var loc domain.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &loc, nil
}

func (s *FileStore) Save(loc domain.Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create location dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write location: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryLocationStore is an in-process LocationStore for tests and
// ephemeral runs.
type MemoryLocationStore struct {
	mu  sync.Mutex
	loc *domain.Location
}

// NewMemoryLocationStore creates an empty MemoryLocationStore.
func NewMemoryLocationStore() *MemoryLocationStore {
	return &MemoryLocationStore{}
}

func (s *MemoryLocationStore) Load() (*domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loc == nil {
		return nil, nil
	}
	loc := *s.loc
	return &loc, nil
}

func (s *MemoryLocationStore) Save(loc domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = &loc
	return nil
}

func (s *MemoryLocationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = nil
	return nil
}
