// Package server provides the HTTP predictor that serves a preloaded evaluator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sentimentlab/sentiment-service/internal/evaluation"
	"github.com/sentimentlab/sentiment-service/internal/metrics"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
	"github.com/sentimentlab/sentiment-service/internal/pkg/middleware"
	"github.com/sentimentlab/sentiment-service/internal/pkg/security"
	"github.com/sentimentlab/sentiment-service/internal/sentiment"
)

// Server is the HTTP predictor.
type Server struct {
	cfg        Config
	log        *logger.Logger
	httpServer *http.Server
	handler    http.Handler

	evaluator sentiment.Evaluator
	registry  *sentiment.Registry
	metrics   *metrics.Metrics
	limiter   *middleware.RateLimiter
	history   evaluation.HistoryReader

	mu      sync.RWMutex
	started bool
}

// Config configures the server.
type Config struct {
	// Host is the address to bind to.
	Host string

	// Port is the HTTP port.
	Port int

	// Version is the application version.
	Version string

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration

	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration

	// ReadyTimeout bounds the pipeline probe behind /ready.
	ReadyTimeout time.Duration

	// RateLimit is requests per second per client. 0 disables limiting.
	RateLimit int

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers key
	// the rate limiter. Empty keys clients by peer address.
	TrustedProxies []string

	// CORSOrigins lists allowed origins. Empty or "*" allows any.
	CORSOrigins []string

	// MetricsPath is where Prometheus metrics are served when metrics are set.
	MetricsPath string
}

// DefaultConfig returns sensible server defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Version:         "dev",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ReadyTimeout:    5 * time.Second,
		CORSOrigins:     []string{"*"},
		MetricsPath:     "/metrics",
	}
}

// Option configures optional server features.
type Option func(*Server)

// WithHistory serves recorded benchmark series under /v1/benchmarks.
func WithHistory(h evaluation.HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// New creates a server around a single long-lived evaluator.
// reg and m are optional.
func New(cfg Config, e sentiment.Evaluator, reg *sentiment.Registry, m *metrics.Metrics, log *logger.Logger, opts ...Option) (*Server, error) {
	if e == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultConfig().Port
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultConfig().ReadyTimeout
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = DefaultConfig().MetricsPath
	}
	if log == nil {
		log = logger.Default()
	}
	if reg == nil {
		reg = sentiment.DefaultRegistry()
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		evaluator: e,
		registry:  reg,
		metrics:   m,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.RateLimit > 0 {
		trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return nil, err
		}
		rlCfg := middleware.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = float64(cfg.RateLimit)
		rlCfg.Burst = cfg.RateLimit * 2
		rlCfg.TrustedProxies = trusted
		s.limiter = middleware.NewRateLimiter(rlCfg)
	}

	s.handler = s.setupRoutes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.log.Info("Starting HTTP server",
		"addr", addr,
		"model", s.evaluator.Name(),
		"version", s.cfg.Version,
	)
	return srv.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limiter != nil {
		s.limiter.Stop()
	}

	if !s.started {
		return nil
	}

	s.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		if err = s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("HTTP shutdown error", "error", err)
		}
	}

	s.started = false
	s.log.Info("Server stopped")

	return err
}

// setupRoutes configures all HTTP routes and middleware.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /v1/models", s.handleModels)
	mux.HandleFunc("GET /v1/version", s.handleVersion)

	if s.metrics != nil {
		mux.Handle("GET "+s.cfg.MetricsPath, s.metrics.Handler())
	}

	if s.history != nil {
		evaluation.NewHandler(s.history).RegisterRoutes(mux)
	}

	// Route-labelled middleware must see the request the mux mutates, so it
	// sits inside anything that calls r.WithContext.
	var inner http.Handler = mux
	if s.limiter != nil {
		inner = s.limiter.Middleware(inner)
	}
	if s.metrics != nil {
		inner = metrics.HTTPMiddleware(s.metrics, inner)
	}

	return middleware.Chain(inner,
		middleware.Recover(s.log),
		middleware.RequestID,
		middleware.CORS(s.cfg.CORSOrigins),
		withLogging(s.log),
	)
}

// withLogging logs each request at debug level.
func withLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			log.WithContext(r.Context()).Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
				"headers", security.MaskSensitiveHeaders(r.Header),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
