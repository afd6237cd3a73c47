// Package http provides a Gin based HTTP server with graceful shutdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpoptions "github.com/kart-io/docqa/pkg/options/server/http"
)

// Server wraps a Gin engine with a configured http.Server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	opts   *httpoptions.Options
}

// NewServer creates a new HTTP server with the given options and middleware.
func NewServer(opts *httpoptions.Options, middlewares ...gin.HandlerFunc) *Server {
	if opts == nil {
		opts = httpoptions.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middlewares...)

	return &Server{
		engine: engine,
		opts:   opts,
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Engine returns the underlying Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// Start runs the server and blocks until the context is canceled or the
// listener fails. Shutdown drains in-flight requests for up to 10 seconds.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Infow("http server starting", "addr", s.opts.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
