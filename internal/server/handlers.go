package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/oluwabajio/AudioTool/internal/audiotool"
	"github.com/oluwabajio/AudioTool/internal/pipeline"
	"github.com/oluwabajio/AudioTool/internal/registry"
	"github.com/oluwabajio/AudioTool/internal/storage"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	sessions  *registry.Registry
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *registry.Registry, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		sessions:  sessions,
		validator: pipeline.NewValidator(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateSession handles POST /sessions requests.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.sessions.Create(r.Context(), req.SourcePath)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.logger.Info("session created",
		slog.String("session_id", entry.ID),
		slog.String("source", req.SourcePath),
	)
	writeJSON(w, http.StatusCreated, toSessionResponse(entry.Info()))
}

// GetSession handles GET /sessions/{id} requests.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(entry.Info()))
}

// ApplyStep handles POST /sessions/{id}/steps requests.
func (h *Handlers) ApplyStep(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var step pipeline.Step
	if !h.decode(w, r, &step) {
		return
	}

	var path string
	err := entry.Do(func(tool *audiotool.Tool) error {
		var err error
		path, err = step.Apply(r.Context(), tool)
		return err
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.logger.Info("step applied",
		slog.String("session_id", entry.ID),
		slog.String("op", string(step.Op)),
	)
	writeJSON(w, http.StatusOK, StepResponse{Path: path})
}

// GetDuration handles GET /sessions/{id}/duration requests.
func (h *Handlers) GetDuration(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	unit, err := audiotool.ParseDurationUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	var value int64
	err = entry.Do(func(tool *audiotool.Tool) error {
		var err error
		value, err = tool.Duration(r.Context(), unit)
		return err
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DurationResponse{Value: value, Unit: unit.String()})
}

// SaveSession handles POST /sessions/{id}/save requests.
func (h *Handlers) SaveSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req SaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := entry.Do(func(tool *audiotool.Tool) error {
		return tool.SaveTo(r.Context(), req.Destination)
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SaveResponse{Destination: req.Destination})
}

// PublishSession handles POST /sessions/{id}/publish requests.
func (h *Handlers) PublishSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req PublishRequest
	if !h.decode(w, r, &req) {
		return
	}

	var url string
	err := entry.Do(func(tool *audiotool.Tool) error {
		var err error
		url, err = tool.Publish(r.Context(), req.Key)
		return err
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{URL: url})
}

// DeleteSession handles DELETE /sessions/{id} requests.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Remove(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.logger.Info("session released", slog.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Sweep handles DELETE /sessions requests.
func (h *Handlers) Sweep(w http.ResponseWriter, r *http.Request) {
	removed, err := h.sessions.Sweep(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{Removed: removed})
}

// lookup resolves the {id} path value. It writes the error response itself
// and reports false when the session does not exist.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*registry.Entry, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session ID is required", "MISSING_SESSION_ID")
		return nil, false
	}
	entry, err := h.sessions.Get(id)
	if err != nil {
		h.writeDomainError(w, err)
		return nil, false
	}
	return entry, true
}

// decode reads and validates a JSON body into dst.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

// errorStatus maps domain errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, registry.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, audiotool.ErrSourceNotFound):
		return http.StatusNotFound, "SOURCE_NOT_FOUND"
	case errors.Is(err, audiotool.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, audiotool.ErrInvalidTimecode),
		errors.Is(err, audiotool.ErrInvalidUnit),
		errors.Is(err, pipeline.ErrUnknownOp):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, audiotool.ErrDestinationUnwritable):
		return http.StatusBadRequest, "DESTINATION_UNWRITABLE"
	case errors.Is(err, audiotool.ErrNotImplemented):
		return http.StatusNotImplemented, "NOT_IMPLEMENTED"
	case errors.Is(err, storage.ErrS3NotConfigured):
		return http.StatusNotImplemented, "S3_NOT_CONFIGURED"
	case errors.Is(err, audiotool.ErrProbeFailed):
		return http.StatusBadGateway, "PROBE_FAILED"
	case errors.Is(err, audiotool.ErrEngineInvocationFailed):
		return http.StatusBadGateway, "ENGINE_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error(), code)
}

func toSessionResponse(info registry.Info) SessionResponse {
	return SessionResponse{
		ID:          info.ID,
		Source:      info.Source,
		WorkingPath: info.WorkingPath,
		State:       info.State.String(),
		CreatedAt:   info.CreatedAt,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
