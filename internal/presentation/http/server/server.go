// Package server wraps the HTTP listener around the FlowBuild router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/application/container"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/routes"
	"github.com/flowbuild/flowbuild-go/pkg/config"
)

// Server owns the http.Server and the container whose handlers it serves.
type Server struct {
	inner     *http.Server
	container *container.Container
}

// New builds the router and the timeout-configured listener for the given port.
func New(port string, c *container.Container) *Server {
	return &Server{
		inner: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      routes.SetupRoutes(c),
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		container: c,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.container.Logger.Startup().Info("HTTP server listening", "addr", s.inner.Addr)

	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("HTTP server draining")
	return s.inner.Shutdown(ctx)
}
