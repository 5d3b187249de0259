// Package mcp exposes the concierge as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Config holds MCP server settings
type Config struct {
	Name    string
	Version string
	// HTTPAddr selects the streamable HTTP transport; empty means stdio
	HTTPAddr string
	Logger   *slog.Logger
}

// Server wraps an MCP server exposing the concierge tools
type Server struct {
	config          Config
	mcp             *mcp.Server
	recommendations driving.RecommendationService
	catalog         driving.CatalogService
	logger          *slog.Logger
}

// New creates the MCP server and registers its tools
func New(cfg Config, recommendations driving.RecommendationService, catalog driving.CatalogService) *Server {
	if cfg.Name == "" {
		cfg.Name = "concierge"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:          cfg,
		mcp:             mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
		recommendations: recommendations,
		catalog:         catalog,
		logger:          logger,
	}

	mcp.AddTool[RecommendInput, any](s.mcp, RecommendRestaurantsTool, s.handleRecommend)
	mcp.AddTool[CatalogStatusInput, any](s.mcp, CatalogStatusTool, s.handleCatalogStatus)

	return s
}

// MCP returns the underlying server, used to attach transports
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on stdio or streamable HTTP until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if s.config.HTTPAddr == "" {
		s.logger.Info("starting mcp server", "transport", "stdio", "name", s.config.Name)
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	}
	return s.runHTTP(ctx)
}

func (s *Server) runHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	httpServer := &http.Server{
		Addr:              s.config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting mcp server", "transport", "streamable-http", "addr", s.config.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleRecommend(ctx context.Context, req *mcp.CallToolRequest, input RecommendInput) (*mcp.CallToolResult, any, error) {
	rec, err := s.recommendations.Recommend(ctx, driving.RecommendRequest{
		Text: input.Request,
		TopK: input.TopK,
	})
	if err != nil {
		s.logger.Warn("recommend_restaurants failed", "error", err)
		return toolError(err), nil, nil
	}

	out := RecommendOutput{
		ID:       rec.ID,
		Language: string(rec.Query.Language),
		Answer:   rec.Answer,
		Venues:   make([]VenueResult, 0, len(rec.Sources)),
	}
	for _, src := range rec.Sources {
		out.Venues = append(out.Venues, VenueResult{
			Name:    src.Document.Venue.Name,
			Address: src.Document.Venue.Address,
			Score:   src.Score,
		})
	}
	for _, d := range rec.Disclosures {
		out.Disclosures = append(out.Disclosures, fmt.Sprintf("%s (%s) is outside %s", d.Venue, d.Address, d.RequestedLocation))
	}

	details, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to format recommendation: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: rec.Answer},
			&mcp.TextContent{Text: string(details)},
		},
	}, out, nil
}

func (s *Server) handleCatalogStatus(ctx context.Context, req *mcp.CallToolRequest, input CatalogStatusInput) (*mcp.CallToolResult, any, error) {
	status := s.catalog.Status()
	if status == nil {
		status = &domain.IndexStatus{}
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to format status: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, status, nil
}

// toolError reports a failure to the calling model without exposing provider detail
func toolError(err error) *mcp.CallToolResult {
	var msg string
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		msg = err.Error()
	case errors.Is(err, domain.ErrIndexNotReady):
		msg = "The venue catalog is still loading. Try again shortly."
	case errors.Is(err, context.DeadlineExceeded):
		msg = "The request timed out."
	case domain.IsServiceError(err):
		msg = "An upstream service is unavailable; no recommendation could be produced."
	default:
		msg = "The recommendation failed."
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
