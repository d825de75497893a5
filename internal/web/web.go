package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"agendacal/internal/agenda"
	"agendacal/internal/config"
	appLog "agendacal/internal/log"
	"agendacal/internal/metrics"
)

// Server is the HTTP host of the planner: a JSON API over every day's
// agenda plus an interactive page that measures its own rows and streams
// pointer gestures back.
//
// All planner access goes through mu, which is shared with the refresher.
type Server struct {
	cfg     *config.Config
	planner *agenda.Planner
	mu      sync.Locker
	metrics *metrics.Service
	engine  *gin.Engine
}

// NewServer wires routes and middleware. metrics may be nil.
func NewServer(cfg *config.Config, planner *agenda.Planner, mu sync.Locker, m *metrics.Service) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), observe(m))

	s := &Server{
		cfg:     cfg,
		planner: planner,
		mu:      mu,
		metrics: m,
		engine:  engine,
	}
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+cfg.Listen)
		engine.Use(s.basicAuth())
	}
	s.registerRoutes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.engine.Group("/api")
	api.GET("/days", s.handleDays)
	api.GET("/days/:day", s.withDay(s.handleDay))
	api.PUT("/days/:day/rows", s.withDay(s.handleRows))
	api.POST("/days/:day/events", s.withDay(s.handleAddEvent))
	api.POST("/days/:day/events/:id/pointer", s.withDay(s.handlePointer))
	api.POST("/days/:day/events/:id/cancel", s.withDay(s.handleCancel))

	s.registerPage()
}

// basicAuthEnabled reports whether complete credentials are configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuth guards everything except /health.
func (s *Server) basicAuth() gin.HandlerFunc {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			c.Header("WWW-Authenticate", `Basic realm="agendacal", charset="UTF-8"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		appLog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func observe(m *metrics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
