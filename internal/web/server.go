// Package web provides the HTTP API over the roster service.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/metrics"
	"github.com/JonMunkholm/roster/internal/service"
	"github.com/JonMunkholm/roster/internal/web/middleware"
)

// Server is the HTTP server for the roster API.
type Server struct {
	service *service.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*ipLimiter
}

// NewServer creates a Server over svc.
func NewServer(svc *service.Service, cfg *config.Config) *Server {
	s := &Server{
		service: svc,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	read, write := s.rateLimits()

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(s.cfg.Security.APIKeys))
		r.Use(read)

		// Roster
		r.Get("/students", s.handleListStudents)
		r.Get("/students/{id}", s.handleGetStudent)
		r.Get("/search", s.handleSearch)
		r.Get("/similar", s.handleSimilar)
		r.Get("/stats", s.handleStats)

		r.Group(func(r chi.Router) {
			r.Use(write)

			// Mutations
			r.Post("/students", s.handleAddStudent)
			r.Post("/students/delete", s.handleRemoveStudents)
			r.Patch("/students/cell", s.handleUpdateCell)
			r.Post("/students/sort", s.handleSort)

			// Batch validation
			r.Post("/validate", s.handleValidate)
			r.Post("/validate/upload", s.handleValidateUpload)
			r.Post("/batches/{id}/commit", s.handleCommit)
			r.Delete("/batches/{id}", s.handleDiscard)

			// Persistence
			r.Post("/save", s.handleSave)
			r.Post("/reload", s.handleReload)
		})
	})
}

// rateLimits returns the read and write limiting middleware. Both are no-ops
// when rate limiting is disabled.
func (s *Server) rateLimits() (read, write func(http.Handler) http.Handler) {
	pass := func(next http.Handler) http.Handler { return next }
	if !s.cfg.Rate.Enabled {
		return pass, pass
	}

	rl := newIPLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
	wl := newIPLimiter(s.cfg.Rate.WriteLimit, time.Minute)
	s.limiters = append(s.limiters, rl, wl)
	return rl.middleware, wl.middleware
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the limiter janitors.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "json encode error", "error", err)
	}
}
