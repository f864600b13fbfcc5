// Package api provides the HTTP API server for Fibertrack.
// It uses Echo framework to serve the inventory REST endpoints, the change
// event WebSocket and the Prometheus metrics endpoint.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "evalgo.org/fibertrack/docs" // Import generated docs
	"evalgo.org/fibertrack/internal/config"
	"evalgo.org/fibertrack/internal/events"
	"evalgo.org/fibertrack/internal/observability"
	"evalgo.org/fibertrack/internal/storage"
	"evalgo.org/fibertrack/internal/validation"
	"evalgo.org/fibertrack/internal/version"
)

// Server represents the Fibertrack API server.
type Server struct {
	echo      *echo.Echo
	storage   *storage.Storage
	config    *config.Config
	hub       *events.Hub
	publisher events.Publisher
	metrics   *observability.Collector
	validator *validation.Validator
	logger    *slog.Logger
	stopHub   context.CancelFunc
}

// New creates a new API server instance and starts its event hub.
func New(cfg *config.Config, store *storage.Storage, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := events.NewHub(logger, cfg.Security.AllowedOrigins)
	go hub.Run(hubCtx)

	server := &Server{
		echo:      e,
		storage:   store,
		config:    cfg,
		hub:       hub,
		publisher: hub,
		metrics:   metrics,
		validator: validation.New(),
		logger:    logger,
		stopHub:   stopHub,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(RequestID())
	s.echo.Use(RequestLogger(s.logger))
	s.echo.Use(middleware.Recover())
	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	if s.config.Metrics.Enabled {
		s.echo.Use(s.metrics.Middleware())
	}

	s.echo.Use(middleware.BodyLimit("1M"))
	s.echo.Use(ValidateContentType)
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	s.echo.GET("/docs/*", echoSwagger.WrapHandler)

	if s.config.Metrics.Enabled {
		path := s.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.echo.GET(path, echo.WrapHandler(s.metrics.Handler()))
	}

	ws := s.echo.Group("/ws")
	ws.GET("/events", s.handleWebSocket)
	ws.GET("/stats", s.getWebSocketStats)

	v1 := s.echo.Group("/api/v1")

	for _, kind := range storage.Kinds() {
		g := v1.Group("/" + kind.Name)
		g.GET("", s.listEntities(kind))
		g.POST("", s.createEntity(kind))
		g.GET("/:id", s.getEntity(kind), ValidateIDFormat)
		g.PUT("/:id", s.updateEntity(kind), ValidateIDFormat)
		g.PATCH("/:id", s.updateEntity(kind), ValidateIDFormat)
		g.GET("/:id/children", s.getChildren(kind), ValidateIDFormat)

		if !kind.Lifecycle {
			continue
		}
		g.PATCH("/:id/archive", s.transition(kind, storage.ActionArchive), ValidateIDFormat)
		g.PATCH("/:id/unarchive", s.transition(kind, storage.ActionUnarchive), ValidateIDFormat)
		g.PATCH("/:id/restore", s.transition(kind, storage.ActionRestore), ValidateIDFormat)
		g.DELETE("/:id", s.transition(kind, storage.ActionDelete), ValidateIDFormat)
		g.POST("/bulk", s.bulkAction(kind))
	}

	v1.POST("/validate/:kind", s.validateEntity)
	v1.GET("/stats", s.getStatistics)
	v1.GET("/hierarchy", s.getHierarchy)
	v1.GET("/info", s.getDatabaseInfo)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.logger.Info("starting Fibertrack API server",
		"address", addr,
		"driver", s.config.Database.Driver,
		"debug", s.config.Server.Debug,
		"version", version.GetVersion(),
	)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	if s.config.Server.TLSEnabled {
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down Fibertrack API server")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	s.stopHub()

	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	resp := HealthResponse{
		Status:  "healthy",
		Service: "fibertrack",
		Version: version.GetVersion(),
		Clients: s.hub.ClientCount(),
	}

	ctx := c.Request().Context()
	if err := s.storage.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Error = "database unreachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	info, err := s.storage.GetDatabaseInfo(ctx)
	if err != nil {
		resp.Status = "unhealthy"
		resp.Error = "database connection failed"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.Database = info

	return c.JSON(http.StatusOK, resp)
}

// publish sends a change event to WebSocket subscribers.
func (s *Server) publish(t events.Type, kind string, id uint, data interface{}) {
	s.publisher.Publish(events.Event{Type: t, Kind: kind, ID: id, Data: data})
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
