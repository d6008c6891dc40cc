// Package health serves the liveness endpoints used by the hosting platform.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const serviceName = "telegram-bot"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the health check HTTP server.
type Server struct {
	srv  *http.Server
	log  *slog.Logger
	addr string
}

type status struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Error       string `json:"error,omitempty"`
}

// NewRouter builds the health routes. db may be nil.
func NewRouter(environment string, db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// status pages poll these endpoints from the browser
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Telegram Bot is running"))
	})

	check := func(w http.ResponseWriter, r *http.Request) {
		body := status{Status: "healthy", Service: serviceName, Environment: environment}
		code := http.StatusOK
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				body.Status = "unhealthy"
				body.Error = "database unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}
	r.Get("/health", check)
	r.Get("/healthz", check)

	return r
}

// NewServer creates a server listening on port.
func NewServer(port int, environment string, db Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(environment, db),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:  logger,
		addr: addr,
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("health check server started", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("health check server failed", "error", err)
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop health server: %w", err)
	}
	s.log.Info("health check server stopped")
	return nil
}
