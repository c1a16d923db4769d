package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// FileStore keeps named canvases as JSON files in one directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("canvas dir cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create canvas dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) canvasPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Load reads and migrates the named canvas. A missing canvas is reported
// with ErrCodeNotFound.
func (s *FileStore) Load(ctx context.Context, name string) (*canvas.State, *Report, error) {
	if err := errors.ValidateAssetID(name); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.canvasPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "canvas %q not found", name)
		}
		return nil, nil, fmt.Errorf("read canvas file: %w", err)
	}
	return Migrate(data)
}

// Save writes st in the current format.
func (s *FileStore) Save(ctx context.Context, name string, st *canvas.State) error {
	if err := errors.ValidateAssetID(name); err != nil {
		return err
	}
	data, err := Encode(st)
	if err != nil {
		return fmt.Errorf("marshal canvas: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.canvasPath(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write canvas file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write canvas file: %w", err)
	}
	return nil
}

// Delete removes the named canvas. Deleting a missing canvas is not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateAssetID(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.canvasPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove canvas file: %w", err)
	}
	return nil
}

// List returns the stored canvas names, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read canvas dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

// Path returns the file backing the named canvas.
func (s *FileStore) Path(name string) string {
	return s.canvasPath(name)
}

// Dir returns the base directory.
func (s *FileStore) Dir() string {
	return s.baseDir
}
