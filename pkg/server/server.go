// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the debate and dialectic orchestrators over
// HTTP: inline SSE runs, background sessions with attachable event
// streams, trace evaluation, and health/version endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teradata-labs/arena/pkg/evals"
	"github.com/teradata-labs/arena/pkg/llm/factory"
	"github.com/teradata-labs/arena/pkg/observability"
	"github.com/teradata-labs/arena/pkg/storage"
)

// CORSConfig controls cross-origin access for browser clients.
type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
}

// DefaultCORSConfig allows the local dev frontends.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled: true,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
	}
}

// Config holds the server's runtime settings.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	CORS CORSConfig

	// SessionTTL is how long a finished session stays queryable before
	// the sweeper purges it. Zero keeps sessions forever.
	SessionTTL time.Duration

	// SweepSchedule is a cron spec for the purge job, e.g. "@every 5m".
	// Empty disables the sweeper.
	SweepSchedule string
}

// Server is the REST+SSE façade over the orchestrators. Each request
// builds its own per-session orchestrator; the server itself only
// shares the provider factory, the stores, and the stream registry.
type Server struct {
	cfg     Config
	logger  *zap.Logger
	tracer  observability.Tracer
	factory *factory.ProviderFactory

	store   *storage.DebateStore
	results *evals.Store

	registry *sessionRegistry
	events   *sse.Server
	sweeper  *cron.Cron

	httpServer *http.Server
}

// Option customises a Server beyond its required pieces.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTracer sets the observability tracer for the orchestrators the
// server spawns.
func WithTracer(tracer observability.Tracer) Option {
	return func(s *Server) { s.tracer = tracer }
}

// WithStore attaches the persistent debate store. Without it runs are
// not persisted; the stream protocol is unchanged.
func WithStore(store *storage.DebateStore) Option {
	return func(s *Server) { s.store = store }
}

// WithResultStore attaches the evaluation result store used by the
// eval endpoints' save path.
func WithResultStore(results *evals.Store) Option {
	return func(s *Server) { s.results = results }
}

// New creates a server around the given provider factory.
func New(cfg Config, providers *factory.ProviderFactory, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   zap.NewNop(),
		tracer:   observability.NewNoOpTracer(),
		factory:  providers,
		registry: newSessionRegistry(),
		events:   sse.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = observability.NewNoOpTracer()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no timeout for SSE
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/version", s.handleVersion)

	mux.HandleFunc("GET /api/v1/debate/stream", s.handleDebateStream)
	mux.HandleFunc("POST /api/v1/debates", s.handleCreateDebate)
	mux.HandleFunc("GET /api/v1/debates/{id}/events", s.handleDebateEvents)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)

	mux.HandleFunc("GET /api/v1/dialectic/stream", s.handleDialecticStream)

	mux.HandleFunc("POST /api/v1/eval/trace", s.handleEvalTrace)
	mux.HandleFunc("POST /api/v1/eval/compare", s.handleEvalCompare)

	var handler http.Handler = mux
	if s.cfg.CORS.Enabled {
		handler = s.corsMiddleware(mux)
	}
	return handler
}

// Start begins serving and blocks until the listener fails or Stop is
// called. The session sweeper starts alongside the listener.
func (s *Server) Start(ctx context.Context) error {
	s.startSweeper()

	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// startSweeper schedules the periodic purge of finished sessions.
func (s *Server) startSweeper() {
	if s.cfg.SweepSchedule == "" || s.cfg.SessionTTL <= 0 {
		return
	}
	s.sweeper = cron.New()
	_, err := s.sweeper.AddFunc(s.cfg.SweepSchedule, func() {
		purged := s.registry.sweep(s.cfg.SessionTTL)
		for _, id := range purged {
			s.events.RemoveStream(id)
		}
		if len(purged) > 0 {
			s.logger.Info("swept finished sessions", zap.Int("count", len(purged)))
		}
	})
	if err != nil {
		s.logger.Warn("invalid sweep schedule, sweeper disabled",
			zap.String("schedule", s.cfg.SweepSchedule), zap.Error(err))
		s.sweeper = nil
		return
	}
	s.sweeper.Start()
}

// corsMiddleware adds CORS headers and answers preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	for _, allowed := range s.cfg.CORS.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}
