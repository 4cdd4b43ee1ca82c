package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/spyglass/pkg/config"
	"mercator-hq/spyglass/pkg/directory"
	"mercator-hq/spyglass/pkg/hub"
	"mercator-hq/spyglass/pkg/ollama"
	"mercator-hq/spyglass/pkg/pipeline"
	"mercator-hq/spyglass/pkg/server/handlers"
	"mercator-hq/spyglass/pkg/server/middleware"
	"mercator-hq/spyglass/pkg/telemetry/metrics"
)

// observerPath is the WebSocket endpoint; it is exempt from the request
// timeout.
const observerPath = "/ws/logs"

// Deps carries the components the server routes requests into.
type Deps struct {
	Store    directory.Store
	Ollama   *ollama.Client
	Hub      *hub.Hub
	Pipeline *pipeline.Pipeline

	// Metrics is optional; when nil the /metrics endpoint is not
	// registered and request metrics are not recorded.
	Metrics *metrics.Collector
}

// Server is the Spyglass HTTP server.
type Server struct {
	config       config.ServerConfig
	deps         Deps
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server from configuration and its dependencies.
func New(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM, or a listener error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the
// configured grace period for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	users := handlers.NewUsers(s.deps.Store, s.deps.Pipeline)
	health := handlers.NewHealth(s.deps.Ollama, s.deps.Hub)
	observers := handlers.NewObservers(s.deps.Hub)

	var upstream *metrics.UpstreamMetrics
	var request *metrics.RequestMetrics
	if s.deps.Metrics != nil {
		upstream = s.deps.Metrics.Upstream
		request = s.deps.Metrics.Request
	}
	generate := handlers.NewGenerate(s.deps.Store, s.deps.Ollama, s.deps.Pipeline, upstream)

	mux.HandleFunc("POST /register/", users.Register)
	mux.HandleFunc("POST /login/", users.Login)
	mux.HandleFunc("GET /user/{username}/", users.Get)
	mux.HandleFunc("PUT /user/{username}/", users.Update)
	mux.Handle("POST /llm/generate", generate)
	mux.Handle("GET "+observerPath, observers)
	mux.HandleFunc("GET /health", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Timeout(s.config.WriteTimeout, observerPath)(handler)
	handler = middleware.CORS(s.corsConfig())(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(request)(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// corsConfig converts the server's CORS settings to the middleware's.
func (s *Server) corsConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:          s.config.CORS.Enabled,
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   s.config.CORS.AllowedMethods,
		AllowedHeaders:   s.config.CORS.AllowedHeaders,
		MaxAge:           s.config.CORS.MaxAge,
		AllowCredentials: s.config.CORS.AllowCredentials,
	}
}
