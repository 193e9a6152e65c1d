package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

// copyEngine writes a fixed payload to the output path.
type copyEngine struct{}

func (copyEngine) Execute(_ context.Context, args []string) error {
	return os.WriteFile(args[len(args)-1], []byte("processed"), 0o600)
}

type fixedProbe struct{}

func (fixedProbe) DurationMillis(context.Context, string) (int64, error) {
	return 60_000, nil
}

func newTestRegistry(t *testing.T) (*Registry, *storage.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(filepath.Join(dir, "work"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	source := filepath.Join(dir, "in.wav")
	if err := os.WriteFile(source, []byte("audio"), 0o600); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := New(func() *audiotool.Tool {
		return audiotool.New(files, files.WorkDir(), copyEngine{}, fixedProbe{}, audiotool.WithLogger(logger))
	})
	return reg, files, source
}

func TestRegistry_Create(t *testing.T) {
	reg, files, source := newTestRegistry(t)
	ctx := context.Background()

	e, err := reg.Create(ctx, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID == "" {
		t.Error("expected ID to be set")
	}

	info := e.Info()
	if info.State != audiotool.StateReady {
		t.Errorf("expected state ready, got %s", info.State)
	}
	if filepath.Dir(info.WorkingPath) != files.WorkDir() {
		t.Errorf("expected working file in %s, got %s", files.WorkDir(), info.WorkingPath)
	}
	if info.Source != source {
		t.Errorf("expected source %s, got %s", source, info.Source)
	}

	found, err := reg.Get(e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != e {
		t.Error("expected the same entry")
	}
}

func TestRegistry_Create_MissingSource(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Create(context.Background(), "/does/not/exist.wav")
	if !errors.Is(err, audiotool.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	_, err := reg.Get("nonexistent")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg, _, source := newTestRegistry(t)
	ctx := context.Background()

	e, _ := reg.Create(ctx, source)
	path := e.Info().WorkingPath

	if err := reg.Remove(ctx, e.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected working file to be deleted, stat err = %v", err)
	}
	if _, err := reg.Get(e.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after remove, got %v", err)
	}
	if err := reg.Remove(ctx, e.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second remove, got %v", err)
	}
}

func TestRegistry_Sweep(t *testing.T) {
	reg, _, source := newTestRegistry(t)
	ctx := context.Background()

	a, _ := reg.Create(ctx, source)
	b, _ := reg.Create(ctx, source)

	removed, err := reg.Sweep(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 files removed, got %d", removed)
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}
	for _, e := range []*Entry{a, b} {
		if _, err := os.Stat(e.Info().WorkingPath); err == nil {
			t.Errorf("expected %s to be removed", e.ID)
		}
	}
}

func TestRegistry_Sweep_WaitsForRunningStep(t *testing.T) {
	reg, files, source := newTestRegistry(t)
	ctx := context.Background()
	e, _ := reg.Create(ctx, source)

	started := make(chan struct{})
	proceed := make(chan struct{})
	stepDone := make(chan error, 1)
	go func() {
		stepDone <- e.Do(func(tool *audiotool.Tool) error {
			close(started)
			<-proceed
			_, err := tool.Reverse(ctx)
			return err
		})
	}()
	<-started

	swept := make(chan struct{})
	go func() {
		_, _ = reg.Sweep(ctx)
		close(swept)
	}()

	select {
	case <-swept:
		t.Fatal("sweep finished while a step was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	if err := <-stepDone; err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	<-swept

	names, err := files.List(ctx, files.WorkDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no files left after sweep, got %v", names)
	}
}

func TestEntry_Do_Serialises(t *testing.T) {
	reg, _, source := newTestRegistry(t)
	ctx := context.Background()
	e, _ := reg.Create(ctx, source)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.Do(func(tool *audiotool.Tool) error {
				_, err := tool.Reverse(ctx)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if e.Info().State != audiotool.StateReady {
		t.Errorf("expected state ready, got %s", e.Info().State)
	}
}
