// Package registry keeps the live editing sessions of a long-running
// process, keyed by an opaque identifier.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// Factory creates an empty tool for a new session.
type Factory func() *audiotool.Tool

// Entry is one registered session. Calls through Do are serialised.
type Entry struct {
	ID        string
	Source    string
	CreatedAt time.Time

	mu   sync.Mutex
	tool *audiotool.Tool
}

// Do runs fn with exclusive access to the entry's tool.
func (e *Entry) Do(fn func(tool *audiotool.Tool) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.tool)
}

// Info is a point-in-time view of an entry.
type Info struct {
	ID          string
	Source      string
	WorkingPath string
	State       audiotool.State
	CreatedAt   time.Time
}

// Info returns a snapshot of the entry.
func (e *Entry) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	path, _ := e.tool.WorkingPath()
	return Info{
		ID:          e.ID,
		Source:      e.Source,
		WorkingPath: path,
		State:       e.tool.State(),
		CreatedAt:   e.CreatedAt,
	}
}

// Registry is an in-memory set of sessions, safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	newTool Factory
}

// New creates a registry that builds tools with factory.
func New(factory Factory) *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		newTool: factory,
	}
}

// Create opens source in a new tool and registers it.
func (r *Registry) Create(ctx context.Context, source string) (*Entry, error) {
	tool := r.newTool()
	if _, err := tool.Open(ctx, source); err != nil {
		return nil, err
	}

	e := &Entry{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		tool:      tool,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.ID] = e
	return e, nil
}

// Get returns the entry with id.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Remove releases the session's working file and unregisters it.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.entries, id)
	r.mu.Unlock()

	return e.Do(func(tool *audiotool.Tool) error {
		if tool.State() != audiotool.StateReady {
			return nil
		}
		return tool.ReleaseCurrent(ctx)
	})
}

// Sweep removes every marker-prefixed file in the working directory and
// forgets all sessions, whose working files are gone with it. It waits for
// in-flight operations so none can commit a file after the sweep.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.mu.Lock()
		defer e.mu.Unlock()
	}

	removed, err := r.newTool().ReleaseAll(ctx)
	r.entries = make(map[string]*Entry)
	return removed, err
}
