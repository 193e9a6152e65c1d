// Package audiotool exposes a stateful editing session over a single audio
// asset. Operations are translated into filter descriptors and executed by
// an external engine against a private working copy of the source.
package audiotool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oluwabajio/AudioTool/internal/engine"
	"github.com/oluwabajio/AudioTool/internal/filter"
	"github.com/oluwabajio/AudioTool/internal/session"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

// State is the lifecycle state of a Tool.
type State int

// Tool lifecycle states.
const (
	StateEmpty State = iota
	StateReady
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Tool applies audio operations to one working file.
// It is not safe for concurrent use.
type Tool struct {
	files     storage.FileManager
	workDir   string
	engine    engine.Engine
	probe     engine.Probe
	publisher storage.Publisher
	logger    *slog.Logger

	state   State
	session *session.Session
}

// Option configures a Tool.
type Option func(*Tool)

// WithLogger sets the logger for the tool.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// WithPublisher sets the publisher used by Publish.
func WithPublisher(p storage.Publisher) Option {
	return func(t *Tool) {
		t.publisher = p
	}
}

// New creates a Tool that keeps its working files in workDir.
func New(files storage.FileManager, workDir string, eng engine.Engine, probe engine.Probe, opts ...Option) *Tool {
	t := &Tool{
		files:   files,
		workDir: workDir,
		engine:  eng,
		probe:   probe,
		state:   StateEmpty,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// State returns the current lifecycle state.
func (t *Tool) State() State {
	return t.state
}

// Open copies source into a new working file and makes the tool ready.
func (t *Tool) Open(ctx context.Context, source string) (string, error) {
	if t.state != StateEmpty {
		return "", fmt.Errorf("%w: open from %s", ErrInvalidState, t.state)
	}

	sess, err := session.Open(ctx, t.files, t.workDir, source)
	if err != nil {
		return "", err
	}

	t.session = sess
	t.state = StateReady
	t.logger.Debug("session opened",
		slog.String("source", source),
		slog.String("working_file", sess.Path()),
	)
	return sess.Path(), nil
}

// WorkingPath returns the path of the current working file.
func (t *Tool) WorkingPath() (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	return t.session.Path(), nil
}

// SaveTo copies the working file to dst. The working file is kept.
func (t *Tool) SaveTo(ctx context.Context, dst string) error {
	if err := t.ready(); err != nil {
		return err
	}
	return t.session.Persist(ctx, dst)
}

// ReleaseCurrent deletes the working file and moves the tool to released.
func (t *Tool) ReleaseCurrent(ctx context.Context) error {
	if err := t.ready(); err != nil {
		return err
	}
	if err := t.session.Release(ctx); err != nil {
		return err
	}
	t.state = StateReleased
	t.logger.Debug("session released", slog.String("working_file", t.session.Path()))
	return nil
}

// ReleaseAll removes every marker-prefixed file in the working directory,
// including files owned by other tools. If the tool's own working file was
// removed, the tool becomes released.
func (t *Tool) ReleaseAll(ctx context.Context) (int, error) {
	removed, err := session.Sweep(ctx, t.files, t.workDir)

	if t.state == StateReady && !t.files.Exists(t.session.Path()) {
		_ = t.session.Release(context.WithoutCancel(ctx))
		t.state = StateReleased
	}

	t.logger.Info("working directory swept",
		slog.String("dir", t.workDir),
		slog.Int("removed", removed),
	)
	if err != nil {
		return removed, fmt.Errorf("sweep: %w", err)
	}
	return removed, nil
}

// Publish uploads the working file under key and returns its URL.
func (t *Tool) Publish(ctx context.Context, key string) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	if t.publisher == nil {
		return "", storage.ErrS3NotConfigured
	}

	r, err := t.files.Load(ctx, t.session.Path())
	if err != nil {
		return "", fmt.Errorf("load working file: %w", err)
	}
	defer func() { _ = r.Close() }()

	url, err := t.publisher.Publish(ctx, key, r)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	t.logger.Info("working file published", slog.String("key", key), slog.String("url", url))
	return url, nil
}

func (t *Tool) ready() error {
	switch t.state {
	case StateReady:
		return nil
	case StateReleased:
		return fmt.Errorf("%w: %w", ErrInvalidState, session.ErrReleased)
	default:
		return fmt.Errorf("%w: no source opened", ErrInvalidState)
	}
}

// apply runs d against the working file. The engine writes to a shadow file
// that replaces the working file only on success.
func (t *Tool) apply(ctx context.Context, d filter.Descriptor) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}

	shadow, err := t.session.ShadowPath()
	if err != nil {
		return "", err
	}

	d = d.WithPaths(t.session.Path(), shadow)
	t.logger.Debug("applying operation",
		slog.String("op", string(d.Kind)),
		slog.String("args", d.String()),
	)

	if err := t.engine.Execute(ctx, d.Args()); err != nil {
		t.discard(ctx, shadow)
		t.logger.Warn("operation failed",
			slog.String("op", string(d.Kind)),
			slog.String("error", err.Error()),
		)
		if !errors.Is(err, ErrEngineInvocationFailed) {
			err = fmt.Errorf("%w: %w", ErrEngineInvocationFailed, err)
		}
		return "", fmt.Errorf("%s: %w", d.Kind, err)
	}

	// The engine already finished; a late cancellation must not strand the
	// shadow file.
	if err := t.session.Commit(context.WithoutCancel(ctx), shadow); err != nil {
		t.discard(ctx, shadow)
		return "", fmt.Errorf("%s: %w", d.Kind, err)
	}

	return t.session.Path(), nil
}

func (t *Tool) discard(ctx context.Context, shadow string) {
	if err := t.session.Discard(context.WithoutCancel(ctx), shadow); err != nil {
		t.logger.Warn("failed to discard shadow file",
			slog.String("path", shadow),
			slog.String("error", err.Error()),
		)
	}
}
