package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/pavelpuchok/releasecourier/config"
)

// FileStorage keeps the state map in a single JSON file. Every operation
// reads and rewrites the whole file; the maps are two-entry sized and the
// orchestrator guarantees a single writer.
type FileStorage struct {
	mu       *sync.Mutex
	filePath string
}

func NewFileStorage(cfg config.FileStorageConfig) (*FileStorage, error) {
	dir := path.Dir(cfg.FilePath)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create parent directories for state file %s. %w", cfg.FilePath, err)
	}

	f := &FileStorage{
		mu:       new(sync.Mutex),
		filePath: cfg.FilePath,
	}

	return f, nil
}

func (f *FileStorage) writeFile(s StateMap) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(f.filePath, data, 0644)
}

func (f *FileStorage) readFile() (StateMap, error) {
	data, err := os.ReadFile(f.filePath)
	if os.IsNotExist(err) {
		return make(StateMap), nil
	}
	if err != nil {
		return nil, err
	}

	s := make(StateMap)
	err = json.Unmarshal(data, &s)
	if err != nil {
		slog.Warn("State file is malformed, starting fresh",
			slog.String("path", f.filePath),
			slog.String("error", err.Error()))
		return make(StateMap), nil
	}

	return s, nil
}

func (f *FileStorage) LastNotified(_ context.Context, feed string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.readFile()
	if err != nil {
		return "", fmt.Errorf("unable to read state file %s. %w", f.filePath, err)
	}

	id, has := s[feed]
	if !has {
		return "", ErrFeedNotFound
	}

	return id, nil
}

func (f *FileStorage) SetLastNotified(_ context.Context, feed string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.readFile()
	if err != nil {
		return fmt.Errorf("unable to read state file %s. %w", f.filePath, err)
	}
	s[feed] = id
	err = f.writeFile(s)
	if err != nil {
		return fmt.Errorf("unable to write state file %s. %w", f.filePath, err)
	}

	return nil
}

// Load reads the whole state map, for callers that own persistence
// themselves (the orchestrator commits the file back to version control).
func (f *FileStorage) Load() (StateMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.readFile()
	if err != nil {
		return nil, fmt.Errorf("unable to read state file %s. %w", f.filePath, err)
	}
	return s, nil
}

// Save replaces the persisted state map with s.
func (f *FileStorage) Save(s StateMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.writeFile(s)
	if err != nil {
		return fmt.Errorf("unable to write state file %s. %w", f.filePath, err)
	}
	return nil
}
