// Package server exposes the provider run triggers over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wefrigerator/fridge-ingest/internal/ingest"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
)

// Runner executes provider runs. *ingest.Engine satisfies it.
type Runner interface {
	RunRoute(ctx context.Context, route string, ro ingest.RunOptions) (*ingest.Result, error)
	Registry() *provider.Registry
}

// Options configure the server.
type Options struct {
	Addr string
	// Secret is the bearer token triggers must present.
	Secret string
	// AllowAnonymous lets triggers through without a token. It only takes
	// effect while Secret is empty.
	AllowAnonymous bool
	CORSOrigins    []string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Server serves the trigger, health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	runner     Runner
	opts       Options
}

// New creates a server with POST /api/ingest/{route}, GET /health and
// GET /metrics.
func New(runner Runner, opts Options) *Server {
	s := &Server{runner: runner, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(opts.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/api/ingest", func(r chi.Router) {
		r.Use(s.authorize)
		r.Post("/{route}", s.handleIngest)
	})

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	zap.L().Info("starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "route")
	if _, ok := s.runner.Registry().ByRoute(route); !ok {
		writeJSON(w, http.StatusNotFound, ingest.ErrorResponse{Error: "unknown provider route: " + route})
		return
	}

	res, err := s.runner.RunRoute(r.Context(), route, ingest.RunOptions{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ingest.ErrorResponse{Error: errorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// errorMessage is the client-facing text for a failed run.
func errorMessage(err error) string {
	if errors.Is(err, ingest.ErrConfigurationMissing) {
		return ingest.ConfigurationMessage
	}
	var runErr *ingest.RunError
	if errors.As(err, &runErr) {
		return runErr.Message
	}
	return err.Error()
}

// authorize enforces the bearer secret.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Secret == "" {
			if s.opts.AllowAnonymous {
				next.ServeHTTP(w, r)
				return
			}
			unauthorized(w)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Secret)) != 1 {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
