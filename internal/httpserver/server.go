// internal/httpserver/server.go
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/perchdesk/perch/internal/config"
	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/mw"
	"github.com/perchdesk/perch/internal/httpserver/routes"
	"github.com/perchdesk/perch/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// NewRouter builds the router with the full middleware chain and all
// registered routes. The surface is local by construction: it rejects
// non-loopback peers and Host headers outside the allowed set.
func NewRouter(loggerClient logger.Logger, d deps.Deps) chi.Router {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)                // X-Request-ID on each request
	r.Use(middleware.Recoverer)                // never crash the process on panic
	r.Use(middleware.Timeout(2 * time.Second)) // per-request timeout
	r.Use(mw.Log(loggerClient))                // structured access logs
	r.Use(mw.LoopbackOnly(d.EnforceLoopback, loggerClient))
	r.Use(mw.EnforceHost(d.AllowedHosts, loggerClient))

	// Auto-register all routes
	routes.RegisterAll(r, d)

	return r
}

// New builds the HTTP server around the router.
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	r := NewRouter(loggerClient, d)

	s := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:    s,
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("settings API listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("settings API shutting down...")
	return s.http.Shutdown(ctx)
}
