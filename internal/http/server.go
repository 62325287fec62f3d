// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/concierge/internal/config"
	externalErrorHTTP "github.com/allisson/concierge/internal/externalerror/http"
	"github.com/allisson/concierge/internal/metrics"
	supplierHTTP "github.com/allisson/concierge/internal/supplier/http"
	syncHTTP "github.com/allisson/concierge/internal/sync/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handlers groups the domain handlers mounted under /v1.
type Handlers struct {
	Booking       *supplierHTTP.BookingHandler
	SyncWorker    *syncHTTP.SyncWorkerHandler
	SyncProcess   *syncHTTP.SyncProcessHandler
	Webhook       *syncHTTP.WebhookHandler
	ExternalError *externalErrorHTTP.ExternalErrorHandler
}

// SetupRouter builds the gin engine with middleware and every route.
// A nil meterProvider disables the HTTP metrics middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	meterProvider metric.MeterProvider,
	metricsNamespace string,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger, "/health", "/ready"))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	suppliers := v1.Group("/suppliers/:supplier")
	{
		suppliers.POST("/quote", handlers.Booking.QuoteHandler)
		suppliers.POST("/booking", handlers.Booking.BookHandler)
		suppliers.POST("/cancel", handlers.Booking.CancelHandler)
	}

	workers := v1.Group("/sync-workers")
	{
		workers.POST("", handlers.SyncWorker.CreateHandler)
		workers.GET("", handlers.SyncWorker.ListHandler)
		workers.GET("/:id", handlers.SyncWorker.GetHandler)
		workers.POST("/:id/resync", handlers.SyncWorker.ResyncHandler)
	}

	v1.GET("/sync-processes", handlers.SyncProcess.ListHandler)
	v1.POST("/webhooks/:supplier", handlers.Webhook.ReceiveHandler)
	v1.GET("/external-errors", handlers.ExternalError.ListHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("database not ready", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
