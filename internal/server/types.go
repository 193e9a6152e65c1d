// Package server provides the HTTP server for audiotool sessions.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "time"

// CreateSessionRequest is the HTTP request body for opening a session.
type CreateSessionRequest struct {
	// SourcePath is the server-side path of the audio file to edit.
	SourcePath string `json:"source_path" validate:"required"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	// ID is the unique identifier for the session.
	ID string `json:"id"`
	// Source is the path the session was opened from.
	Source string `json:"source"`
	// WorkingPath is the session's working file, empty once released.
	WorkingPath string `json:"working_path,omitempty"`
	// State is the session lifecycle state.
	State string `json:"state"`
	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"created_at"`
}

// StepResponse is returned after a step has been applied.
type StepResponse struct {
	// Path is the working file holding the result.
	Path string `json:"path"`
}

// DurationResponse reports the working file duration.
type DurationResponse struct {
	Value int64  `json:"value"`
	Unit  string `json:"unit"`
}

// SaveRequest is the HTTP request body for saving a session.
type SaveRequest struct {
	// Destination is the server-side path to copy the working file to.
	Destination string `json:"destination" validate:"required"`
}

// SaveResponse confirms a save.
type SaveResponse struct {
	Destination string `json:"destination"`
}

// PublishRequest is the HTTP request body for publishing a session.
type PublishRequest struct {
	// Key is the object key to upload to.
	Key string `json:"key" validate:"required"`
}

// PublishResponse carries the published URL.
type PublishResponse struct {
	URL string `json:"url"`
}

// SweepResponse reports how many working files were removed.
type SweepResponse struct {
	Removed int `json:"removed"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
