// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8788"

	// MaxQueryLength is the maximum query length in runes.
	MaxQueryLength = 100000

	// MaxRequestBodySize is the maximum size for a request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024
)

// Reply shapes.
const (
	ShapeOutput   = "output"
	ShapeResponse = "response"
	ShapeAnswer   = "answer"
	ShapeNested   = "nested"
	ShapeString   = "string"
	ShapeRaw      = "raw"
	ShapeMarkdown = "markdown"
	ShapeEmpty    = "empty"
	ShapeError    = "error"
)

// Shapes lists every reply shape.
var Shapes = []string{
	ShapeOutput, ShapeResponse, ShapeAnswer, ShapeNested, ShapeString,
	ShapeRaw, ShapeMarkdown, ShapeEmpty, ShapeError,
}

// ============================================================================
// SERVER
// ============================================================================

// Config contains server options.
type Config struct {
	// Addr is the listen address (default 127.0.0.1:8788).
	Addr string

	// Username and Password enable HTTP Basic auth when Username is set.
	Username string
	Password string

	// Shape is the default reply shape (default "output").
	Shape string

	// Delay is added before every answer.
	Delay time.Duration
}

// Server is the echo webhook.
type Server struct {
	config   Config
	router   *chi.Mux
	server   *http.Server
	log      *zap.Logger
	requests atomic.Int64
}

// New creates a server with routes and middleware installed.
func New(cfg Config, log *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Shape == "" {
		cfg.Shape = ShapeOutput
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		log:    log.Named("echo-server"),
	}
	s.setupRoutes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(LoggingMiddleware(s.log))

	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.config.Username != "" {
			r.Use(BasicAuthMiddleware("orb", s.config.Username, s.config.Password, s.log))
		}
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/webhook", s.handleWebhook)
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Requests returns how many queries have been answered.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// ============================================================================
// HANDLERS
// ============================================================================

// QueryRequest is the webhook request body.
type QueryRequest struct {
	Query string `json:"query"`
}

// handleWebhook handles POST /webhook.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len([]rune(query)) > MaxQueryLength {
		s.writeError(w, http.StatusRequestEntityTooLarge, "query too long")
		return
	}

	if s.config.Delay > 0 {
		select {
		case <-time.After(s.config.Delay):
		case <-r.Context().Done():
			return
		}
	}

	shape := s.shapeFor(r)
	s.requests.Add(1)
	s.log.Debug("answering query", zap.String("shape", shape), zap.Int("length", len(query)))

	switch shape {
	case ShapeError:
		s.writeError(w, http.StatusInternalServerError, "simulated failure")
	case ShapeString:
		s.writeJSON(w, http.StatusOK, answerFor(query))
	case ShapeResponse, ShapeAnswer, ShapeOutput:
		s.writeJSON(w, http.StatusOK, map[string]string{shape: answerFor(query)})
	case ShapeNested:
		s.writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"result": map[string]string{"output": answerFor(query)},
			},
		})
	case ShapeRaw:
		s.writeJSON(w, http.StatusOK, map[string]any{"echo": query, "length": len([]rune(query))})
	case ShapeMarkdown:
		s.writeJSON(w, http.StatusOK, map[string]string{"output": markdownFor(query)})
	case ShapeEmpty:
		s.writeJSON(w, http.StatusOK, map[string]string{"output": "  "})
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown shape %q", shape))
	}
}

func (s *Server) shapeFor(r *http.Request) string {
	if shape := r.URL.Query().Get("shape"); shape != "" {
		return shape
	}
	if shape := r.Header.Get("X-Orb-Shape"); shape != "" {
		return shape
	}
	return s.config.Shape
}

func answerFor(query string) string {
	return "You asked: " + query
}

func markdownFor(query string) string {
	return fmt.Sprintf("**You asked:** %s\n\n| field | value |\n|---|---|\n| runes | %d |\n| words | %d |\n\n~~nothing to see here~~",
		query, len([]rune(query)), len(strings.Fields(query)))
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Shape    string `json:"shape"`
	Auth     bool   `json:"auth"`
	Requests int64  `json:"requests"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Shape:    s.config.Shape,
		Auth:     s.config.Username != "",
		Requests: s.Requests(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Serve accepts connections on ln. It returns nil once Shutdown is called,
// even when Shutdown came first.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("echo server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("shape", s.config.Shape),
		zap.Bool("auth", s.config.Username != ""))

	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("echo server shutting down", zap.Int64("requests", s.Requests()))
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.log.Debug("failed to write response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
