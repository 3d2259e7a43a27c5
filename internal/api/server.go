package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/alphalab/pkg/config"
	"github.com/wonny/alphalab/pkg/logger"
)

// Server wraps the HTTP server carrying the signal and backtest API.
// SSOT: listener timeouts and lifecycle live only in this file; routes
// and middleware belong to the router.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New builds the server on the given router. The port comes from the
// environment config so `serve --port` and PORT behave the same.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests, bounded by ctx. Websocket
// clients are dropped when their connections close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
