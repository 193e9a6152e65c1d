package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// FFprobe implements Probe using ffprobe, falling back to the duration line
// ffmpeg prints for its input when the ffprobe binary is missing.
type FFprobe struct {
	ffprobePath string
	ffmpegPath  string
}

// NewFFprobe creates a new FFprobe. Empty paths default to "ffprobe" and
// "ffmpeg" (found via PATH).
func NewFFprobe(ffprobePath, ffmpegPath string) *FFprobe {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFprobe{ffprobePath: ffprobePath, ffmpegPath: ffmpegPath}
}

// DurationMillis returns the duration of the media file at path in milliseconds.
func (p *FFprobe) DurationMillis(ctx context.Context, path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	seconds, err := p.probeFormatDuration(ctx, path)
	if errors.Is(err, exec.ErrNotFound) {
		seconds, err = p.probeFFmpegDuration(ctx, path)
	}
	if err != nil {
		return 0, err
	}

	return int64(math.Round(seconds * 1000)), nil
}

// probeFormatDuration reads the container duration in seconds with ffprobe.
func (p *FFprobe) probeFormatDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrProbeFailed, err, stderr.String())
	}

	return parseSeconds(stdout.String())
}

// probeFFmpegDuration parses the "Duration: HH:MM:SS.xx" line ffmpeg writes
// to stderr when inspecting an input.
func (p *FFprobe) probeFFmpegDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, ffmpegHeaderArgs(path)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Without an output ffmpeg prints the input header and exits non-zero
	// before decoding anything.
	_ = cmd.Run()
	if ctx.Err() != nil {
		return 0, fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
	}

	return parseDurationLine(stderr.String())
}

// parseSeconds parses ffprobe's bare seconds output, e.g. "5400.000000".
func parseSeconds(output string) (float64, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" || trimmed == "N/A" {
		return 0, fmt.Errorf("%w: no duration metadata", ErrProbeFailed)
	}
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration %q: %w", ErrProbeFailed, trimmed, err)
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrProbeFailed, trimmed)
	}
	return seconds, nil
}

var durationLineRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

func ffmpegHeaderArgs(path string) []string {
	return []string{"-hide_banner", "-i", path}
}

// parseDurationLine extracts seconds from an ffmpeg "Duration:" line.
func parseDurationLine(output string) (float64, error) {
	matches := durationLineRe.FindStringSubmatch(output)
	if len(matches) < 5 {
		return 0, fmt.Errorf("%w: could not parse duration from ffmpeg output", ErrProbeFailed)
	}

	hours, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	fraction, _ := strconv.ParseFloat(matches[4], 64)

	// The fractional part has variable precision.
	fraction /= math.Pow(10, float64(len(matches[4])))

	return hours*3600 + minutes*60 + seconds + fraction, nil
}

// Verify interface implementation at compile time.
var _ Probe = (*FFprobe)(nil)
