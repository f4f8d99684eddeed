// Package server exposes the acquisition pipeline over HTTP: starting
// acquisitions, readiness and status queries, the catalog and a WebSocket
// event stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/catalog"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/orchestrator"
)

// Acquirer starts acquisitions. *orchestrator.Orchestrator implements it.
type Acquirer interface {
	Acquire(ctx context.Context, req asset.Request) (*orchestrator.Task, bool)
	Root() string
}

// Options configures a Server.
type Options struct {
	Acquirer Acquirer
	Broker   *events.Broker
	Catalog  *catalog.Catalog
	System   catalog.System
}

// Server is the HTTP API.
type Server struct {
	echo     *echo.Echo
	acquirer Acquirer
	broker   *events.Broker
	system   catalog.System
	catalog  atomic.Pointer[catalog.Catalog]
}

// New builds the server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		echo:     echo.New(),
		acquirer: opts.Acquirer,
		broker:   opts.Broker,
		system:   opts.System,
	}
	if opts.Catalog == nil {
		opts.Catalog, _ = catalog.New(nil)
	}
	s.catalog.Store(opts.Catalog)

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(requestLogger())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api/v1")
	api.POST("/assets", s.acquire)
	api.GET("/assets/:category/:name", s.status)
	api.GET("/assets/:category/:name/ready", s.ready)
	api.GET("/catalog", s.listCatalog)
	api.GET("/events", s.stream)
}

// SetCatalog swaps the served catalog.
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.catalog.Store(c)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", logger.Fields{"addr": addr})
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if s.broker != nil {
		s.broker.Close()
	}
	return s.echo.Shutdown(shutdownCtx)
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Debug("HTTP request", logger.Fields{
				"method":   c.Request().Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			})
			return nil
		}
	}
}
