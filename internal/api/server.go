// Package api exposes the practice store over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/balkashynov/shed/internal/db"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server routes HTTP requests to the store.
type Server struct {
	store  *db.Store
	admins map[string]bool
	log    *slog.Logger
}

// NewServer creates a Server. Users listed in admins may read and modify
// every user's sessions and tags.
func NewServer(store *db.Store, admins []string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}
	return &Server{store: store, admins: set, log: log}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", s.healthz)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(s.extractUser)

		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)

		r.Get("/stats", s.summary)
		r.Get("/calendar", s.calendar)
		r.Get("/by-instrument", s.byInstrument)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.listTags)
			r.Post("/", s.createTag)
			r.Get("/{id:[0-9]+}", s.getTag)
			r.Patch("/{id:[0-9]+}", s.updateTag)
			r.Delete("/{id:[0-9]+}", s.deleteTag)
		})

		r.Route("/timer", func(r chi.Router) {
			r.Post("/start", s.startTimer)
			r.Get("/active", s.activeTimer)
			r.Post("/{id:[0-9]+}/pause", s.pauseTimer)
			r.Post("/{id:[0-9]+}/resume", s.resumeTimer)
			r.Post("/{id:[0-9]+}/stop", s.stopTimer)
		})

		r.Get("/{id:[0-9]+}", s.getSession)
		r.Patch("/{id:[0-9]+}", s.updateSession)
		r.Delete("/{id:[0-9]+}", s.deleteSession)
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "health check failed", "error", err)
		respondError(w, "database unavailable", "UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	s.log.Info("listening", "addr", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.log.Info("server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
