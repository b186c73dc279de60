// Package http provides the prediction service HTTP surface.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
}

// ServerConfig server configuration
type ServerConfig struct {
	Port            int
	Timeout         time.Duration
	MaxRequestBytes int64
	AllowedOrigins  []string
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		Timeout:         30 * time.Second,
		MaxRequestBytes: 1 << 20,
		AllowedOrigins:  []string{"*"},
	}
}

// NewServer creates the HTTP server around the given handlers.
func NewServer(config ServerConfig, h *Handlers) *Server {
	mux := http.NewServeMux()
	h.Register(mux)

	chain := Chain(
		RecoveryMiddleware,
		LoggerMiddleware,
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxRequestBytes),
	)
	handler := chain(mux)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      handler,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
	}
}

// Start runs the server until Stop or failure.
func (s *Server) Start() error {
	zap.L().Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zap.L().Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.server.Addr
}
