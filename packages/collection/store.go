package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store keeps collections in a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads every collection. A missing file yields none.
func (s *Store) Load() ([]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}

	var cols []Collection
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("failed to parse collections: %w", err)
	}
	for i := range cols {
		if err := cols[i].CheckDepth(); err != nil {
			return nil, fmt.Errorf("collection %q: %w", cols[i].Name, err)
		}
		normalize(&cols[i])
	}
	return cols, nil
}

// Save replaces the file contents with cols.
func (s *Store) Save(cols []Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range cols {
		if err := cols[i].CheckDepth(); err != nil {
			return fmt.Errorf("collection %q: %w", cols[i].Name, err)
		}
	}
	if cols == nil {
		cols = []Collection{}
	}

	data, err := json.MarshalIndent(cols, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Update loads, applies fn, and saves when fn succeeds.
func (s *Store) Update(fn func(cols []Collection) ([]Collection, error)) error {
	cols, err := s.Load()
	if err != nil {
		return err
	}
	cols, err = fn(cols)
	if err != nil {
		return err
	}
	return s.Save(cols)
}
