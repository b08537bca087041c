// Package http hosts the gin engine shared by the prediction API and the
// operational endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"eiv-admissions/internal/common/config"
	"eiv-admissions/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Server serves /health, /ready and /metrics alongside any routes mounted on
// its engine.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	checks map[string]Check
	logger logger.Logger
}

func NewServer(cfg config.ServerConfig, log logger.Logger, checks map[string]Check) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		engine: engine,
		checks: checks,
		logger: log,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		},
	}

	engine.GET("/health", s.health)
	engine.GET("/ready", s.ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Engine exposes the router so callers can mount their own routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.srv.Addr})
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ready runs every check with a short deadline; one failure makes the
// service unready.
func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"checks": failed})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unready",
			"failed": failed,
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" {
			return
		}
		log.Debug("http request", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}
