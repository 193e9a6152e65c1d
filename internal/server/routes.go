package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Register routes with method-based patterns (Go 1.22+)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /sessions", h.CreateSession)
	mux.HandleFunc("DELETE /sessions", h.Sweep)
	mux.HandleFunc("GET /sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /sessions/{id}", h.DeleteSession)
	mux.HandleFunc("POST /sessions/{id}/steps", h.ApplyStep)
	mux.HandleFunc("GET /sessions/{id}/duration", h.GetDuration)
	mux.HandleFunc("POST /sessions/{id}/save", h.SaveSession)
	mux.HandleFunc("POST /sessions/{id}/publish", h.PublishSession)

	// Apply middleware chain
	chain := ChainMiddleware(
		RequestIDMiddleware(),
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
