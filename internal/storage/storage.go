// Package storage provides the file management primitives a session relies
// on (copy, rename, delete, existence, listing) and optional publishing of
// results to S3.
package storage

import (
	"context"
	"io"
)

// FileManager defines the file operations a session needs on local storage.
type FileManager interface {
	// Copy copies src to dst byte for byte, replacing dst if it exists.
	Copy(ctx context.Context, src, dst string) error

	// Rename atomically replaces dst with src.
	Rename(ctx context.Context, src, dst string) error

	// Delete removes path. It reports whether a file was removed; a path
	// that does not exist is not an error.
	Delete(ctx context.Context, path string) (bool, error)

	// Load opens path for reading. The caller closes the returned ReadCloser.
	Load(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// List returns the names of the non-directory entries directly inside dir.
	List(ctx context.Context, dir string) ([]string, error)
}

// Publisher uploads finished results to remote storage.
type Publisher interface {
	// Publish uploads data under key and returns its public URL.
	// Returns ErrS3NotConfigured if no remote storage is configured.
	Publish(ctx context.Context, key string, data io.Reader) (url string, err error)
}

// Storage combines local file management with publishing.
type Storage interface {
	FileManager
	Publisher

	// WorkDir returns the directory session files are kept in.
	WorkDir() string
}
