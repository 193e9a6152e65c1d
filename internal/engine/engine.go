// Package engine runs filter descriptors through the ffmpeg CLI and probes
// media duration with ffprobe.
package engine

import (
	"context"
	"errors"
)

// Static errors for engine operations.
var (
	// ErrInvocationFailed is returned when the engine reports failure.
	ErrInvocationFailed = errors.New("engine invocation failed")
	// ErrProbeFailed is returned when duration metadata cannot be extracted.
	ErrProbeFailed = errors.New("probe failed")
)

// Engine executes an engine argument list to completion.
type Engine interface {
	// Execute runs the engine with args and blocks until it exits.
	// A non-nil error wraps ErrInvocationFailed unless ctx was cancelled.
	Execute(ctx context.Context, args []string) error
}

// Probe extracts media duration from a file.
type Probe interface {
	// DurationMillis returns the media duration of path in milliseconds.
	// Failures wrap ErrProbeFailed.
	DurationMillis(ctx context.Context, path string) (int64, error)
}
