// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidPort is returned when PORT is outside 1-65535.
	ErrInvalidPort = errors.New("config: PORT must be between 1 and 65535")
	// ErrInvalidLogFormat is returned when LOG_FORMAT is neither json nor text.
	ErrInvalidLogFormat = errors.New("config: LOG_FORMAT must be json or text")
	// ErrWorkDirRequired is returned when AUDIOTOOL_WORK_DIR is empty.
	ErrWorkDirRequired = errors.New("config: AUDIOTOOL_WORK_DIR is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Working directory for session files
	WorkDir string `env:"AUDIOTOOL_WORK_DIR, default=/tmp/audiotool" json:"work_dir"`

	// Engine binaries
	FFmpegPath  string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.WorkDir == "" {
		return ErrWorkDirRequired
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

// NewLogger creates a structured logger on stdout based on the configuration.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a structured logger writing to w.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, WorkDir: %s, FFmpegPath: %s, FFprobePath: %s, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.WorkDir,
		c.FFmpegPath,
		c.FFprobePath,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
