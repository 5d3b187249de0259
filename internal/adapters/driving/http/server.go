package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the driving ports exposed over HTTP
type Services struct {
	Auth            driving.AuthService // optional; nil or disabled leaves the API open
	Recommendations driving.RecommendationService
	Catalog         driving.CatalogService
	Proposals       driving.ProposalService

	// Dependencies checked by /ready, keyed by name
	Dependencies map[string]Pinger
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	// RateLimitRPS limits requests across all clients; 0 disables limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// WriteTimeout must exceed the recommendation request timeout
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
		WriteTimeout:   90 * time.Second,
	}
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger
	validate   *validator.Validate
	services   Services
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, services Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	s := &Server{
		router:   http.NewServeMux(),
		version:  cfg.Version,
		logger:   logger,
		validate: newValidator(),
		services: services,
	}
	s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.RateLimitRPS > 0 {
		handler = NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler(handler)
	}
	handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// newValidator reports field errors by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	auth := NewAuthMiddleware(s.services.Auth)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Concierge endpoints (authenticated)
	s.router.Handle("POST /api/v1/recommendations",
		auth.Authenticate(http.HandlerFunc(s.handleRecommend)))
	s.router.Handle("POST /api/v1/proposals",
		auth.Authenticate(http.HandlerFunc(s.handleProposal)))

	// Catalog endpoints (refresh is admin-only)
	s.router.Handle("GET /api/v1/catalog/status",
		auth.Authenticate(http.HandlerFunc(s.handleCatalogStatus)))
	s.router.Handle("GET /api/v1/catalog/documents",
		auth.Authenticate(http.HandlerFunc(s.handleCatalogDocuments)))
	s.router.Handle("POST /api/v1/catalog/refresh",
		auth.Authenticate(
			auth.RequireAdmin(http.HandlerFunc(s.handleCatalogRefresh))))
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
