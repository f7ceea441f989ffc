// Package api provides the daemon's read-only management HTTP surface:
// the current answer index dump, Prometheus metrics, and a liveness/health
// route, behind a Gin engine.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cachewarden/cachewarden/internal/api/handlers"
	"github.com/cachewarden/cachewarden/internal/api/middleware"
	"github.com/cachewarden/cachewarden/internal/config"
	"github.com/cachewarden/cachewarden/internal/index"
	"github.com/cachewarden/cachewarden/internal/persistence"
)

// Server is the management HTTP server.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New constructs a Server reading from idx, optionally reporting on store's
// health (nil when persistence is disabled).
func New(cfg config.APIConfig, idx *index.Index, store *persistence.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(idx, store, logger)
	RegisterRoutes(engine, h)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the underlying Gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
