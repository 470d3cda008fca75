// Package server is the REST service behind remote-backed sessions: accounts, chat
// history with generated replies, friend preference and the personal journal.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/auth"
	"github.com/comigor/friendbot-go/internal/llm"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/metrics"
	"github.com/comigor/friendbot-go/internal/storage"
)

// Server serves the REST API.
type Server struct {
	db        *storage.DB
	auth      *auth.Manager
	generator llm.Generator
	window    int
	genName   string
}

// New builds a Server. window is the number of earlier messages given to the generator.
func New(db *storage.DB, authm *auth.Manager, generator llm.Generator, window int) *Server {
	if window <= 0 {
		window = 10
	}
	name := "llm"
	if _, ok := generator.(llm.Offline); ok {
		name = "offline"
	}
	return &Server{db: db, auth: authm, generator: generator, window: window, genName: name}
}

// Routes returns the HTTP handler of the service.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.With(s.requireUser).Get("/profile", s.getProfile)
			r.With(s.requireUser).Put("/profile", s.updateProfile)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/send", s.sendMessage)
			r.Get("/history", s.chatHistory)
			r.Delete("/clear", s.clearHistory)
			r.Put("/preferences", s.updatePreferences)
		})

		r.Route("/journal", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/", s.createJournal)
			r.Get("/", s.listJournals)
			r.Get("/search", s.searchJournals)
			r.Get("/{id}", s.getJournal)
			r.Put("/{id}", s.updateJournal)
			r.Delete("/{id}", s.deleteJournal)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.L.Info("shutting down api server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable!")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// observe logs and measures every request under its route pattern.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		took := time.Since(start)
		metrics.ObserveHTTP(route, r.Method, status, took)
		logger.L.Debug("http request", "method", r.Method, "route", route, "status", status,
			"duration_ms", took.Milliseconds(), "request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Message: msg})
}

// decode reads a JSON body into v. It reports false after writing a 400.
func decode(w http.ResponseWriter, r *http.Request, v any, missing string) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, missing)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, missing)
		return false
	}
	return true
}

// pageParams reads page and per_page, falling back to defaults on absent or bad values.
func pageParams(r *http.Request, defPerPage int) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = defPerPage
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
