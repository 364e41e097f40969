// Package server exposes the wall over HTTP: the current view-model, page and
// retry commands, Prometheus metrics and a websocket that pushes every new
// view-model.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"camera-wall-go/internal/health"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/wall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Wall is the part of wall.Controller the API drives.
type Wall interface {
	Snapshot() wall.ViewModel
	Subscribe() (<-chan wall.ViewModel, func())
	Advance(delta int) (bool, error)
	GoTo(index int) (bool, error)
	Refresh() (int, error)
	Retry(index int) error
	Activate(index int) (bool, error)
	SetViewport(v wall.Viewport) error
	SetLayout(spec layout.Spec) error
}

// Options configures a Server.
type Options struct {
	Addr     string
	Wall     Wall
	Health   *health.Reporter // optional
	Gatherer prometheus.Gatherer
	Capacity int // slot capacity, for the "auto" layout preset
}

// Server manages the HTTP listener.
type Server struct {
	opts       Options
	engine     *gin.Engine
	httpServer *http.Server
	log        zerolog.Logger
}

// New builds the server and its routes.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		opts:   opts,
		engine: engine,
		log:    log.With().Str("component", "server").Logger(),
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api/wall")
	api.GET("", s.handleGetWall)
	api.GET("/health", s.handleWallHealth)
	api.POST("/page", s.handlePage)
	api.POST("/refresh", s.handleRefresh)
	api.POST("/slots/:index/retry", s.handleRetry)
	api.POST("/slots/:index/activate", s.handleActivate)
	api.PUT("/viewport", s.handleViewport)
	api.PUT("/layout", s.handleLayout)

	if s.opts.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	return s.Shutdown()
}

// Shutdown stops the listener, waiting up to five seconds for requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	logger := log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
