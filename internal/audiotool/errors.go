package audiotool

import (
	"errors"

	"github.com/oluwabajio/AudioTool/internal/engine"
	"github.com/oluwabajio/AudioTool/internal/filter"
	"github.com/oluwabajio/AudioTool/internal/session"
)

// Static errors for tool operations.
var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// tool's current state.
	ErrInvalidState = errors.New("invalid tool state")
	// ErrNotImplemented is returned by declared operations without a
	// working filter definition.
	ErrNotImplemented = errors.New("operation not implemented")
	// ErrInvalidUnit is returned for an unknown duration unit.
	ErrInvalidUnit = errors.New("invalid duration unit")
)

// Errors surfaced from collaborators, re-exported so callers can match them
// without importing the lower-level packages.
var (
	ErrSourceNotFound         = session.ErrSourceNotFound
	ErrDestinationUnwritable  = session.ErrDestinationUnwritable
	ErrReleased               = session.ErrReleased
	ErrProbeFailed            = engine.ErrProbeFailed
	ErrEngineInvocationFailed = engine.ErrInvocationFailed
	ErrInvalidTimecode        = filter.ErrInvalidTimecode
)
