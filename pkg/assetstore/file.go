package assetstore

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore implements a file-based asset store for CLI usage.
// Each record is stored as a JSON file in a directory tree sharded by the
// hash of the asset id.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string { return s.dir }

// Put writes rec, replacing any existing file for the same id.
func (s *FileStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// Write to a temp file and rename so a crash never leaves a torn entry.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Get reads the record for id.
func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAllKeys walks the store and returns the ids of every readable entry.
// Entries that fail to parse are skipped.
func (s *FileStore) GetAllKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var entry struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(data, &entry) == nil && entry.ID != "" {
			ids = append(ids, entry.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// Delete removes the file for id.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Count returns the number of readable entries.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	ids, err := s.GetAllKeys(ctx)
	return len(ids), err
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the file that holds id, whether or not it exists.
func (s *FileStore) Path(id string) string {
	return s.path(id)
}

// path converts an asset id to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (s *FileStore) path(id string) string {
	hash := Hash([]byte(id))
	// Use first 2 chars as subdirectory for distribution
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(s.dir, subdir, filename)
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
