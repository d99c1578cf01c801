// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
)

// Runner executes one scrape, emitting events until its terminal event.
// *pipeline.Pipeline satisfies it; tests supply fakes.
type Runner interface {
	Run(ctx context.Context, seed string, prof *profile.Profile, emitter progress.Emitter)
}

// Server wires HTTP handlers to the scrape pipeline.
type Server struct {
	router chi.Router
	runner Runner
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/scrape", s.scrape)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// scrape streams the lifecycle of one crawl as server-sent events, one
// "data: <json>" frame per progress event. The connection stays open until
// the pipeline's terminal event, then closes.
func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("url")
	if seed == "" {
		s.writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}
	if u, err := url.Parse(seed); err != nil || u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		s.writeError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}
	platform := r.URL.Query().Get("platform")
	prof, err := profile.Lookup(platform)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown platform %q", platform))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := progress.NewStream(0)
	// The crawl is never aborted mid-flight: it runs to its page cap (or
	// terminal error) even if the client goes away, so the detached context.
	go func() {
		s.runner.Run(context.WithoutCancel(r.Context()), seed, prof, stream)
		stream.Close()
	}()

	clientGone := false
	for evt := range stream.Events() {
		if clientGone {
			// Keep draining so the producer never blocks on a full buffer.
			continue
		}
		payload, err := json.Marshal(evt)
		if err != nil {
			s.logger.Error("event marshal failed", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			clientGone = true
			continue
		}
		flusher.Flush()
		select {
		case <-r.Context().Done():
			clientGone = true
		default:
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Flush lets the SSE handler stream through the logging wrapper.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
