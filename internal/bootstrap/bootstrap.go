// Package bootstrap provides dependency initialization for the audiotool
// server and CLI.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
	"github.com/oluwabajio/AudioTool/internal/config"
	"github.com/oluwabajio/AudioTool/internal/engine"
	"github.com/oluwabajio/AudioTool/internal/registry"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Storage  storage.Storage
	Engine   engine.Engine
	Probe    engine.Probe
	Registry *registry.Registry
	Logger   *slog.Logger
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Storage: store,
		Engine:  engine.NewFFmpeg(cfg.FFmpegPath),
		Probe:   engine.NewFFprobe(cfg.FFprobePath, cfg.FFmpegPath),
		Logger:  logger,
	}
	deps.Registry = registry.New(deps.NewTool)

	return deps, nil
}

// NewTool returns an empty tool wired to the shared storage and engine.
func (d *Dependencies) NewTool() *audiotool.Tool {
	return audiotool.New(d.Storage, d.Storage.WorkDir(), d.Engine, d.Probe,
		audiotool.WithLogger(d.Logger),
		audiotool.WithPublisher(d.Storage),
	)
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.WorkDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("work_dir", localStore.WorkDir()),
	)
	return localStore, nil
}
