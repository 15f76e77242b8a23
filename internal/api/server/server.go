package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaobohan917/douyin-toolbox/internal/api/dto"
	"github.com/shaobohan917/douyin-toolbox/internal/api/middleware"
	"github.com/shaobohan917/douyin-toolbox/internal/api/routes"
	"github.com/shaobohan917/douyin-toolbox/internal/config"
)

// Version is the API version reported by the health endpoint.
const Version = "1.0.0"

// Server is the HTTP front of the toolbox.
type Server struct {
	config     config.ServerConfig
	router     *gin.Engine
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
	stop       chan struct{}
}

// NewServer builds a configured server around the given handlers.
func NewServer(cfg config.ServerConfig, h routes.Handlers, logger *slog.Logger) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Window(), cfg.RateLimit.MaxRequests)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(metrics.Handler())

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.Use(limiter.Handler())

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.OK("Douyin Toolbox API is running", gin.H{
			"version":   Version,
			"timestamp": time.Now().Format(time.RFC3339),
		}))
	})

	routes.Register(api, h)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	return &Server{
		config:     cfg,
		router:     router,
		httpServer: httpServer,
		limiter:    limiter,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Start begins serving and launches the limiter janitor. It returns
// immediately; use Shutdown to stop.
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		"host", s.config.Host,
		"port", s.config.Port,
		"environment", s.config.Environment,
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	go s.janitor()

	s.logger.Info("API server started", "address", s.httpServer.Addr)
	return nil
}

// janitor drops expired rate-limit windows so idle clients do not leak.
func (s *Server) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.limiter.Cleanup()
		case <-s.stop:
			return
		}
	}
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	close(s.stop)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
