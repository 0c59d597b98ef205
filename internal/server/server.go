// Package server is the inspection server: a read-only HTTP surface over
// the arbitrage engine's current state, process health, Prometheus
// metrics, and a best-effort live feed of accepted price updates.
package server

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arborwatch/xvenue-arb/internal/metrics"
	"github.com/arborwatch/xvenue-arb/internal/server/handler"
	"github.com/arborwatch/xvenue-arb/internal/server/middleware"
	"github.com/arborwatch/xvenue-arb/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr string
}

// Server is the inspection server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered. updatesHub may be nil,
// in which case /ws/updates is not registered.
func New(cfg Config, engine handler.OpportunitySource, updatesHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	health := handler.NewHealthHandler()
	arbs := handler.NewArbsHandler(engine, logger)

	mux.HandleFunc("GET /healthz", health.HealthCheck)
	mux.HandleFunc("GET /arbs", arbs.ListOpportunities)
	mux.Handle("/metrics", promhttp.Handler())

	if updatesHub != nil {
		mux.HandleFunc("GET /ws/updates", updatesHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = recordMetrics(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      h,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With(slog.String("component", "inspection_server")),
	}
}

// recordMetrics wraps a handler to record the http_requests_total counter.
// It is the outermost wrapper, around middleware.Logging, and captures the
// status code with its own lightweight wrapper, read after ServeHTTP
// returns.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		metrics.RecordHTTPRequest(r.URL.Path, fmt.Sprintf("%d", rw.status))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker so that /ws/updates upgrades work
// through this wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return h.Hijack()
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests to complete within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
