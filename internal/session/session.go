// Package session manages the private working copy of an audio asset.
//
// A Session copies its source into a marker-prefixed file inside a working
// directory and owns that file until Release. Sweep removes every
// marker-prefixed file in the directory, including leftovers from sessions of
// earlier processes.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/oluwabajio/AudioTool/internal/session/id"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

// MarkerPrefix starts the name of every file a session creates.
const MarkerPrefix = "tmp_audio_file_"

const (
	shadowSuffix = ".shadow"
	lockFileName = ".audiotool.lock"
	lockRetry    = 50 * time.Millisecond
)

// Static errors for session operations.
var (
	// ErrSourceNotFound is returned when the source file does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrDestinationUnwritable is returned when the working file cannot be
	// copied to the requested destination.
	ErrDestinationUnwritable = errors.New("destination unwritable")
	// ErrReleased is returned when a released session is used.
	ErrReleased = errors.New("session released")
)

// Session owns one working file. It is not safe for concurrent use.
type Session struct {
	files    storage.FileManager
	dir      string
	id       string
	ext      string
	path     string
	released bool
}

// Open copies source into a new working file inside dir.
// Returns ErrSourceNotFound if source does not exist.
func Open(ctx context.Context, files storage.FileManager, dir, source string) (*Session, error) {
	if !files.Exists(source) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	s := &Session{
		files: files,
		dir:   dir,
		id:    id.Generate(),
		ext:   filepath.Ext(source),
	}
	s.path = filepath.Join(dir, MarkerPrefix+s.id+s.ext)

	if err := files.Copy(ctx, source, s.path); err != nil {
		return nil, fmt.Errorf("copy source: %w", err)
	}

	return s, nil
}

// ID returns the identifier embedded in the working file name.
func (s *Session) ID() string {
	return s.id
}

// Dir returns the working directory.
func (s *Session) Dir() string {
	return s.dir
}

// Path returns the working file path. The path is stable for the lifetime
// of the session.
func (s *Session) Path() string {
	return s.path
}

// Released reports whether Release has been called.
func (s *Session) Released() bool {
	return s.released
}

// ShadowPath returns the path an engine should write a pending result to.
// It carries the marker prefix and the working file extension.
func (s *Session) ShadowPath() (string, error) {
	if s.released {
		return "", ErrReleased
	}
	return filepath.Join(s.dir, MarkerPrefix+s.id+shadowSuffix+s.ext), nil
}

// Commit atomically replaces the working file with shadow.
func (s *Session) Commit(ctx context.Context, shadow string) error {
	if s.released {
		return ErrReleased
	}
	if err := s.files.Rename(ctx, shadow, s.path); err != nil {
		return fmt.Errorf("commit working file: %w", err)
	}
	return nil
}

// Discard removes a pending shadow file, leaving the working file untouched.
func (s *Session) Discard(ctx context.Context, shadow string) error {
	if _, err := s.files.Delete(ctx, shadow); err != nil {
		return fmt.Errorf("discard shadow file: %w", err)
	}
	return nil
}

// Persist copies the working file to dst. The working file is kept.
func (s *Session) Persist(ctx context.Context, dst string) error {
	if s.released {
		return ErrReleased
	}
	if abs, err := filepath.Abs(dst); err == nil && abs == s.path {
		return nil
	}
	if err := s.files.Copy(ctx, s.path, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, dst, err)
	}
	return nil
}

// Release deletes the working file. Further use of the session fails with
// ErrReleased. Releasing twice is a no-op.
func (s *Session) Release(ctx context.Context) error {
	if s.released {
		return nil
	}
	if _, err := s.files.Delete(ctx, s.path); err != nil {
		return fmt.Errorf("release working file: %w", err)
	}
	s.released = true
	return nil
}

// Sweep deletes every non-directory entry directly inside dir whose name
// starts with MarkerPrefix, whichever session created it. Entries that
// disappear before they can be deleted are skipped. Concurrent sweeps of the
// same directory, from any process, are serialised by an advisory file lock.
// It returns the number of files removed and the first error encountered.
func Sweep(ctx context.Context, files storage.FileManager, dir string) (int, error) {
	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return 0, fmt.Errorf("lock work directory: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("lock work directory: %w", ctx.Err())
	}
	defer func() { _ = lock.Unlock() }()

	names, err := files.List(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("list work directory: %w", err)
	}

	removed := 0
	var firstErr error
	for _, name := range names {
		if !strings.HasPrefix(name, MarkerPrefix) {
			continue
		}
		ok, err := files.Delete(ctx, filepath.Join(dir, name))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			removed++
		}
	}

	return removed, firstErr
}
