package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nodescape/nodescape/pkg/observability"
)

// FileStore persists snapshots as files in a directory, for CLI usage.
// Each snapshot is one JSON file carrying the payload plus metadata.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps the stored payload with metadata.
type fileEntry struct {
	Name    string    `json:"name"`
	Data    []byte    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// Get retrieves a snapshot by name.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		observability.Store().OnMiss("snapshot")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry - treat as missing.
		_ = os.Remove(s.path(name))
		observability.Store().OnMiss("snapshot")
		return nil, ErrNotFound
	}

	observability.Store().OnHit("snapshot")
	return entry.Data, nil
}

// Set stores a snapshot under the given name.
func (s *FileStore) Set(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return ErrInvalidName
	}

	entry := fileEntry{
		Name:    name,
		Data:    data,
		SavedAt: time.Now(),
	}
	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path(name), entryData, 0644); err != nil {
		return err
	}
	observability.Store().OnSet("snapshot", len(data))
	return nil
}

// Delete removes a snapshot.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns the stored snapshot names.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry fileEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		names = append(names, entry.Name)
	}
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// path converts a snapshot name to a file path. Names are hashed so
// arbitrary user input never escapes the store directory.
func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, Hash([]byte(name))+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
