// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/application/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	JWTSecret      string
	MaxUploadBytes int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxUploadBytes: 20 << 20,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config            ServerConfig
	httpServer        *http.Server
	router            *gin.Engine
	extractionService service.ExtractionService
	ingestService     service.IngestService
	historyService    service.HistoryService
	analyticsService  service.AnalyticsService
	logger            *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	extractionService service.ExtractionService,
	ingestService service.IngestService,
	historyService service.HistoryService,
	analyticsService service.AnalyticsService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:            config,
		router:            router,
		extractionService: extractionService,
		ingestService:     ingestService,
		historyService:    historyService,
		analyticsService:  analyticsService,
		logger:            logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("latency", latency.String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(
		s.extractionService,
		s.ingestService,
		s.historyService,
		s.analyticsService,
		s.config.MaxUploadBytes,
		s.logger,
	)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes, all behind the identity middleware
	api := s.router.Group("/api")
	api.Use(authMiddleware(s.config.JWTSecret, s.logger))
	{
		// Invoices
		api.POST("/invoices/analyze", handlers.AnalyzeInvoice)
		api.POST("/invoices", handlers.SaveInvoice)
		api.GET("/invoices", handlers.ListInvoices)
		api.GET("/invoices/export", handlers.ExportInvoices)
		api.GET("/invoices/:id", handlers.GetInvoice)
		api.PUT("/invoices/:id", handlers.UpdateInvoice)
		api.DELETE("/invoices/:id", handlers.DeleteInvoice)

		// Analytics
		api.GET("/analytics/summary", handlers.SpendSummary)
		api.GET("/analytics/products", handlers.ProductStats)
		api.GET("/analytics/price-history", handlers.PriceHistory)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
