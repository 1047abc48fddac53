package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store using a single JSON file
type FileStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
	closed     bool
}

// NewFileStore creates a file-backed high score log. The file is created on
// the first write.
func NewFileStore(path string, maxEntries int) (*FileStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create high score directory: %w", err)
		}
	}

	return &FileStore{
		path:       path,
		maxEntries: maxEntries,
	}, nil
}

// Add appends an entry and rewrites the ranked log
func (fs *FileStore) Add(ctx context.Context, entry Entry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return ErrStoreClosed
	}

	entries, err := fs.read()
	if err != nil {
		return err
	}
	entries = Rank(append(entries, entry), fs.maxEntries)
	return fs.write(entries)
}

// List returns the ranked entries
func (fs *FileStore) List(ctx context.Context) ([]Entry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil, ErrStoreClosed
	}

	entries, err := fs.read()
	if err != nil {
		return nil, err
	}
	return Rank(entries, fs.maxEntries), nil
}

// Clear truncates the log to an empty list
func (fs *FileStore) Clear(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return ErrStoreClosed
	}
	return fs.write([]Entry{})
}

// Close marks the store closed. The file stays on disk.
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

func (fs *FileStore) read() ([]Entry, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read high score file: %w", err)
	}
	if len(data) == 0 {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal high scores: %w", err)
	}
	return entries, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (fs *FileStore) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal high scores: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write high score file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace high score file: %w", err)
	}
	return nil
}
