package results

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is the output directory every report is written to
type Store struct {
	Dir string
}

// New creates the output directory if needed
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the full path of a file in the store
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Exists returns true if name exists in the store and is a regular file
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Read returns the contents of name
func (s *Store) Read(name string) ([]byte, error) {
	return os.ReadFile(s.Path(name))
}

// Write stores data under name, replacing any previous file
func (s *Store) Write(name string, data []byte) error {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteWith streams a file produced by fn. The file is removed if fn fails,
// so a half-written report is never left behind.
func (s *Store) WriteWith(name string, fn func(w io.Writer) error) error {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
