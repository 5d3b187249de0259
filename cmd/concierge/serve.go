package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/adapters/driving/http"
	"github.com/custodia-labs/concierge/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API and the catalog refresher.

The catalog is loaded in the background; /ready reports 503 until the first
index build completes. Set CATALOG_REFRESH_INTERVAL to rebuild it periodically.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	refresher := worker.NewRefresher(worker.RefresherConfig{
		Catalog:    a.catalog,
		Logger:     a.logger,
		Interval:   a.cfg.CatalogRefreshInterval,
		RunOnStart: true,
	})
	refresher.Start(ctx)
	defer refresher.Stop()

	httpCfg := http.DefaultConfig()
	if a.cfg.Host != "" {
		httpCfg.Host = a.cfg.Host
	}
	httpCfg.Port = a.cfg.Port
	httpCfg.Version = version
	httpCfg.AllowedOrigins = a.cfg.AllowedOrigins
	httpCfg.RateLimitRPS = a.cfg.RateLimitRPS
	httpCfg.WriteTimeout = a.cfg.RequestTimeout + 30*time.Second
	httpCfg.Logger = a.logger

	server := http.NewServer(httpCfg, http.Services{
		Auth:            a.auth,
		Recommendations: a.recommendations,
		Catalog:         a.catalog,
		Proposals:       a.proposals,
		Dependencies:    a.dependencies,
	})

	return server.Start(ctx)
}
