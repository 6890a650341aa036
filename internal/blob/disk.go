package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps uploaded blobs as plain files under a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the uploads directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(name string) string {
	// stored names are generated server-side, but never trust them as paths
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (int64, error) {
	f, err := os.Create(s.path(name))
	if err != nil {
		return 0, fmt.Errorf("create blob %q: %w", name, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(s.path(name))
		return 0, fmt.Errorf("write blob %q: %w", name, err)
	}
	return n, nil
}

func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("open blob %q: %w", name, err)
	}
	return f, nil
}

func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a blob is present; used by tests and consistency checks.
func (s *DiskStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}
