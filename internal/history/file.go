package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// FileStore persists the history as an indented JSON array on disk. The
// file is created empty on first use and rewritten in full on every
// mutation, via a temp-file rename so readers in the same process never see
// a partial write.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at path, initializing an empty
// history file if none exists.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize history file: %w", err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

func (s *FileStore) Load(ctx context.Context) ([]types.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []types.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt content degrades to an empty history, never an error.
		s.logger.Warn("history file is malformed, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return []types.Entry{}, nil
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, nil
}

func (s *FileStore) Save(ctx context.Context, recipe types.Recipe, imageURL string, userIngs []string, subs map[string][]string) (types.Entry, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return types.Entry{}, err
	}

	entry := newEntry(recipe, imageURL, userIngs, subs)
	entries = append(entries, entry)

	if err := s.write(entries); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return s.write(filtered)
}

func (s *FileStore) Clear(ctx context.Context) error {
	return s.write([]types.Entry{})
}

func (s *FileStore) write(entries []types.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
