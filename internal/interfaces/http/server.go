// Package http provides the HTTP adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/application/service"
	"github.com/fnev4/fnev4/internal/container"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthChecker reports the health of the running components
type HealthChecker interface {
	Health(ctx context.Context) *container.HealthStatus
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxUploadSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "127.0.0.1",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  120 * time.Second,
		MaxUploadSize: 20 << 20,
	}
}

// Services groups the application services exposed over HTTP
type Services struct {
	InvoiceImport service.InvoiceImportService
	ClientImport  service.ClientImportService
	Certification service.CertificationService
	Invoice       service.InvoiceService
	Client        service.ClientService

	// ParseCache is released for every uploaded workbook once the request
	// is done; uploads get unique names so their entries are never reused.
	ParseCache UploadCache
}

// UploadCache forgets parsed results for a file
type UploadCache interface {
	Invalidate(path string)
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	services Services,
	uploads port.UploadStorage,
	health HealthChecker,
	logger Logger,
) *Server {
	// Set gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = config.MaxUploadSize

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(services, uploads, health, config.MaxUploadSize, logger),
		logger:   logger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(loggingMiddleware(s.logger))

	s.router.Use(corsMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	// Health check
	s.router.GET("/health", h.HealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		// Invoices
		api.GET("/invoices", h.ListInvoices)
		api.POST("/invoices/certify", h.CertifyBatch)
		api.GET("/invoices/:id", h.GetInvoice)
		api.DELETE("/invoices/:id", h.DeleteInvoice)
		api.POST("/invoices/:id/certify", h.CertifyInvoice)
		api.POST("/invoices/:id/reset", h.ResetInvoice)
		api.PUT("/invoices/:id/payment-method", h.UpdatePaymentMethod)
		api.GET("/invoices/:id/logs", h.InvoiceLogs)

		// Imports
		api.POST("/imports/invoices", h.ImportInvoices)
		api.POST("/imports/clients", h.ImportClients)
		api.GET("/imports", h.ListImports)

		// Clients
		api.GET("/clients", h.ListClients)
		api.GET("/clients/template", h.DownloadClientTemplate)
		api.GET("/clients/:code", h.GetClient)
		api.POST("/clients", h.CreateClient)
		api.PUT("/clients/:code", h.UpdateClient)
		api.DELETE("/clients/:code", h.DeactivateClient)

		api.GET("/vat-types", h.ListVatTypes)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
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
