package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/adapters/driving/mcp"
	"github.com/custodia-labs/concierge/internal/worker"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server exposing the recommend_restaurants
and catalog_status tools.

By default the server communicates over stdio. Use --http (or MCP_HTTP_ADDR)
to serve the streamable HTTP transport instead.

Examples:
  # Stdio mode, for desktop assistants
  concierge mcp

  # HTTP mode, for MCP Inspector or remote access
  concierge mcp --http :8090`,
		Args: cobra.NoArgs,
		RunE: runMCP,
	}
	cmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	addr, _ := cmd.Flags().GetString("http")
	if addr == "" {
		addr = a.cfg.MCPHTTPAddr
	}

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Catalog:    a.catalog,
		Logger:     a.logger,
		Interval:   a.cfg.CatalogRefreshInterval,
		RunOnStart: true,
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	server := mcp.New(mcp.Config{
		Name:     "concierge",
		Version:  version,
		HTTPAddr: addr,
		Logger:   a.logger,
	}, a.recommendations, a.catalog)

	return server.Run(ctx)
}
