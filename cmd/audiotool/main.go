// Package main provides the audiotool command-line interface.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/oluwabajio/AudioTool/internal/bootstrap"
	"github.com/oluwabajio/AudioTool/internal/config"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version kong.VersionFlag `short:"V" help:"Show version information"`
	Verbose bool             `short:"v" help:"Log every engine invocation"`

	Run      RunCmd      `cmd:"" help:"Apply a TOML pipeline to an audio file"`
	Duration DurationCmd `cmd:"" help:"Print the duration of an audio file"`
	Sweep    SweepCmd    `cmd:"" help:"Delete leftover working files"`
}

// App carries what every command needs.
type App struct {
	ctx  context.Context
	deps *bootstrap.Dependencies
	out  io.Writer
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("audiotool"),
		kong.Description("Edit audio files with ffmpeg filter pipelines"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cli.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, verbose bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// stdout is reserved for results
	logger := cfg.NewLoggerTo(os.Stderr)

	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}

	return &App{ctx: ctx, deps: deps, out: os.Stdout}, nil
}
