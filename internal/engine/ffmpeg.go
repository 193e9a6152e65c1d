package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// FFmpeg implements Engine using the ffmpeg CLI.
type FFmpeg struct {
	// path is the ffmpeg binary. Defaults to "ffmpeg".
	path string
}

// NewFFmpeg creates a new FFmpeg engine.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{path: ffmpegPath}
}

// Path returns the ffmpeg binary used by the engine.
func (f *FFmpeg) Path() string {
	return f.path
}

// Execute runs ffmpeg with the given arguments and returns an *FFmpegError
// carrying stderr output if the command fails.
func (f *FFmpeg) Execute(ctx context.Context, args []string) error {
	// #nosec G204 - path is set by the application, args are built from validated descriptors
	cmd := exec.CommandContext(ctx, f.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
// It matches ErrInvocationFailed with errors.Is.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() []error {
	return []error{ErrInvocationFailed, e.Err}
}

// Verify interface implementation at compile time.
var _ Engine = (*FFmpeg)(nil)
