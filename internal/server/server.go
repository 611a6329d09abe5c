// Package server runs the demo server: a handful of routes, each ending a
// request in a different way, behind a CORS middleware, on the framework
// selected by the configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/taisey/cors"
	"github.com/taisey/cors/internal/config"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg  *config.Config
	log  *slog.Logger
	cors *cors.Middleware

	handler http.Handler // nil on fiber
	http    *http.Server
	app     *fiber.App // nil unless on fiber
}

// New creates a Server with all routes wired up.
func New(cfg *config.Config, log *slog.Logger, mw *cors.Middleware) *Server {
	s := &Server{
		cfg:  cfg,
		log:  log,
		cors: mw,
	}
	switch cfg.Server.Framework {
	case config.FrameworkFiber:
		s.app = s.fiberApp()
		return s
	case config.FrameworkGin:
		s.handler = s.ginRouter()
	default:
		s.handler = s.httpMux()
	}
	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the root handler of a net/http or gin server, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// App returns the application of a fiber server, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the server and blocks until shutdown.
// It shuts down gracefully on SIGINT/SIGTERM.
func (s *Server) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
			"framework", s.cfg.Server.Framework,
		)
		if err := s.listen(); err != nil {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}
	return s.Shutdown()
}

func (s *Server) listen() error {
	if s.app != nil {
		return s.app.Listen(s.cfg.Server.Addr())
	}
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	var err error
	if s.app != nil {
		err = s.app.ShutdownWithContext(ctx)
	} else {
		err = s.http.Shutdown(ctx)
	}
	if err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("server stopped gracefully")
	return nil
}
