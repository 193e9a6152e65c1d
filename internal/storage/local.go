package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when S3 operations are attempted
// without proper configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// LocalStorage implements FileManager using local disk. Its working
// directory is resolved and created once, at construction.
type LocalStorage struct {
	workDir string
}

// NewLocalStorage creates a new LocalStorage instance.
// If workDir is empty, a directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalStorage(workDir string) (*LocalStorage, error) {
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "audiotool")
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work directory: %w", err)
	}

	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	return &LocalStorage{workDir: abs}, nil
}

// WorkDir returns the working directory path.
func (s *LocalStorage) WorkDir() string {
	return s.workDir
}

// Copy streams src into dst. A partially written dst is removed on failure.
// Copying a file onto itself is a no-op.
func (s *LocalStorage) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	in, err := os.Open(src) // #nosec G304 - src is provided by trusted caller
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	// Truncating dst would empty src when both name the same file.
	if srcInfo, err := in.Stat(); err == nil {
		if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
			return nil
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy data: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}

// Rename replaces dst with src using os.Rename.
func (s *LocalStorage) Rename(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(src), err)
	}
	return nil
}

// Delete removes path, treating a missing file as already deleted.
func (s *LocalStorage) Delete(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context cancelled: %w", err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}

// Load opens path for reading.
// The caller is responsible for closing the returned ReadCloser.
func (s *LocalStorage) Load(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	return f, nil
}

// Exists reports whether path exists.
func (s *LocalStorage) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// List returns the names of the non-directory entries in dir.
func (s *LocalStorage) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Publish is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) Publish(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}

// Verify interface implementation at compile time.
var (
	_ FileManager = (*LocalStorage)(nil)
	_ Publisher   = (*LocalStorage)(nil)
	_ Storage     = (*LocalStorage)(nil)
)
