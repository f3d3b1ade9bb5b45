package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/aretw0/clevrprog/pkg/ports"
)

// DefaultDir is used when New is given an empty directory.
var DefaultDir = filepath.Join(".clevrprog", "cache")

// validKey matches the hex digests produced by Pipeline.CacheKey, and any
// other key safe to use as a file name.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store implements ports.ResultCache with one file per entry. Entries
// survive restarts, which lets repeated corpus runs skip converted lines.
type Store struct {
	Dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.Dir, key+".sexpr"), nil
}

// Get reads an entry.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ports.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to read cache entry: %w", err)
	}
	return string(data), nil
}

// Put writes an entry atomically: the value goes to a temporary file in
// the same directory which is then renamed over the destination.
func (s *Store) Put(ctx context.Context, key, value string) error {
	dest, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	// Closed before rename for Windows.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move cache entry into place: %w", err)
	}
	return nil
}

// Delete removes an entry. Missing entries are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Len counts the stored entries.
func (s *Store) Len() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.sexpr"))
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}
