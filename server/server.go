// Package server exposes sessions over a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"webassist/config"
	"webassist/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

// Pinger checks that the model backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	GetModel() string
}

type Server struct {
	registry *session.Registry
	backend  Pinger
}

func New(registry *session.Registry, backend Pinger) *Server {
	return &Server{registry: registry, backend: backend}
}

// Router wires HTTP routes to the session registry.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)
		s.RegisterRoutes(api)
	})

	return r
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleEndSession)
			r.Post("/messages", s.handleSubmit)
			r.Delete("/messages", s.handleClear)
			r.Patch("/options", s.handleSetOptions)
			r.Get("/search", s.handleSearch)
			r.Get("/stats", s.handleStats)
			r.Get("/export", s.handleExport)
		})
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Server] Listening on %s", addr)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
