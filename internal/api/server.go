// Package api serves the inbound call-platform webhook alongside health,
// readiness, a read-only view of the sink rows and rolling pass metrics.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/call-insights/internal/monitoring"
	"github.com/sells-group/call-insights/internal/pipeline"
)

// EventHandler processes one inbound event synchronously.
type EventHandler interface {
	Handle(ctx context.Context, ev pipeline.Event) (pipeline.EventResult, error)
}

// RowReader returns the sink's rows.
type RowReader interface {
	Rows(ctx context.Context) ([]map[string]string, error)
}

// StatusReader reports rolling pipeline metrics.
type StatusReader interface {
	Snapshot() monitoring.MetricsSnapshot
}

// Deps configures the server.
type Deps struct {
	// WebhookToken is the shared bearer secret. Empty disables auth.
	WebhookToken string
	// CORSOrigins are allowed to read /api/rows.
	CORSOrigins []string
	Rows        RowReader
	// Status is nil when the polling loop is not running in this process.
	Status StatusReader
	Now    func() time.Time
}

// Server routes HTTP requests. The event handler may be attached after the
// listener is up; until then /ready reports 503 and the webhook rejects
// events.
type Server struct {
	deps Deps

	mu      sync.RWMutex
	handler EventHandler
}

// NewServer creates a Server without an event handler.
func NewServer(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{deps: deps}
}

// Attach installs the event handler and marks the server ready.
func (s *Server) Attach(h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Server) eventHandler() EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusNotFound, "error", "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "error", "Method not allowed")
	})

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)

	r.With(BearerAuth(s.deps.WebhookToken)).Post("/webhook/exolve", s.webhook)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.deps.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(BearerAuth(s.deps.WebhookToken))
		r.Get("/rows", s.rows)
		r.Get("/status", s.status)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.deps.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(w http.ResponseWriter, _ *http.Request) {
	if s.eventHandler() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
