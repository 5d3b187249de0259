package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/concierge/internal/adapters/driven/ai"
	authadapter "github.com/custodia-labs/concierge/internal/adapters/driven/auth"
	"github.com/custodia-labs/concierge/internal/adapters/driven/catalog"
	"github.com/custodia-labs/concierge/internal/adapters/driven/language"
	"github.com/custodia-labs/concierge/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/concierge/internal/adapters/driven/redis"
	"github.com/custodia-labs/concierge/internal/adapters/driven/render"
	"github.com/custodia-labs/concierge/internal/adapters/driven/translate"
	"github.com/custodia-labs/concierge/internal/adapters/driving/http"
	"github.com/custodia-labs/concierge/internal/config"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/core/services"
	"github.com/custodia-labs/concierge/internal/index"
	"github.com/custodia-labs/concierge/internal/normalisers"
	"github.com/custodia-labs/concierge/internal/runtime"
)

// app holds the wired services shared by every command
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	runtime *runtime.Services
	source  driven.CatalogSource
	venues  *postgres.VenueSource // set when DATABASE_URL is configured

	recommendations driving.RecommendationService
	catalog         driving.CatalogService
	proposals       driving.ProposalService
	auth            driving.AuthService

	dependencies map[string]http.Pinger
	closers      []func() error
}

// loadApp reads the configuration and wires the application.
// Tests replace it to run commands against stub services.
var loadApp = func(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return newApp(ctx, cfg, logger)
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (a *app, err error) {
	a = &app{
		cfg:          cfg,
		logger:       logger,
		runtime:      runtime.NewServices(),
		dependencies: make(map[string]http.Pinger),
	}
	a.closers = append(a.closers, a.runtime.Close)
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// ===== Redis (optional): embedding cache + refresh lock =====
	var lock driven.DistributedLock
	var cache driven.EmbeddingCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		redisLock := redisadapter.NewLock(client)
		lock = redisLock
		cache = redisadapter.NewEmbeddingCache(client, cfg.EmbeddingCacheTTL)
		a.dependencies["redis"] = redisLock
		logger.Info("redis connected")
	}

	// ===== PostgreSQL (optional): venue table, fallback lock =====
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.InitSchema(ctx); err != nil {
			return nil, err
		}
		a.venues = postgres.NewVenueSource(db)
		if lock == nil {
			lock = postgres.NewAdvisoryLock(db)
		}
		a.dependencies["postgres"] = db
		logger.Info("postgres connected")
	}

	// ===== AI providers =====
	factory := ai.NewFactory()
	embedder, err := factory.CreateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		return nil, fmt.Errorf("create embedding service: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrInvalidInput)
	}
	if cache != nil {
		embedder = ai.NewCachedEmbedding(embedder, cache, logger)
	}
	a.runtime.SetEmbeddingService(embedder)

	llm, err := factory.CreateLLMService(cfg.LLMSettings())
	if err != nil {
		return nil, fmt.Errorf("create generation service: %w", err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: generation provider is not configured", domain.ErrInvalidInput)
	}
	a.runtime.SetLLMService(llm)

	// ===== Translation =====
	switch domain.TranslationProvider(cfg.TranslationProvider) {
	case domain.TranslationProviderGoogle:
		translator, err := translate.NewGoogleTranslator(ctx, translate.GoogleConfig{
			APIKey: cfg.GoogleTranslateAPIKey,
			RateLimit: translate.RateLimitConfig{
				RequestsPerSecond: cfg.GoogleTranslateRPS,
				BurstSize:         int(cfg.GoogleTranslateRPS),
			},
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		a.runtime.SetTranslator(translator)
	case domain.TranslationProviderLLM:
		a.runtime.SetTranslator(translate.NewLLMTranslator(llm))
	}

	// ===== Catalog source =====
	a.source, err = newCatalogSource(cfg, a.venues)
	if err != nil {
		return nil, err
	}

	// ===== Core services =====
	a.catalog = services.NewCatalogService(services.CatalogConfig{
		Source:     a.source,
		Normaliser: normalisers.NewRecordNormaliser(),
		Builder: index.Builder{Options: index.Options{
			BatchSize: cfg.EmbeddingBatchSize,
			Logger:    logger,
		}},
		Services:    a.runtime,
		Lock:        lock,
		Logger:      logger,
		SkipInvalid: cfg.CatalogSkipInvalid,
	})

	engine := services.NewEngine(a.runtime, services.EngineConfig{
		TopK:        cfg.TopK,
		Temperature: float32(cfg.LLMTemperature),
		MaxTokens:   cfg.LLMMaxTokens,
		City:        cfg.City,
		Logger:      logger,
	})

	a.recommendations = services.NewConciergeService(
		engine,
		newDetector(cfg),
		a.runtime,
		services.ConciergeConfig{
			Timeout:         cfg.RequestTimeout,
			DefaultLanguage: cfg.Language(),
			Logger:          logger,
		},
	)

	a.proposals = services.NewProposalService(
		services.ProposalConfig{
			DefaultClientName: "Client",
			DefaultPrice:      cfg.ProposalDefaultPrice,
			Currency:          cfg.ProposalCurrency,
			DefaultLanguage:   cfg.Language(),
		},
		render.NewPDFRenderer(cfg.ProposalAuthor),
		render.NewHTMLRenderer(),
	)

	a.auth = services.NewAuthService(
		authadapter.NewAdapter(cfg.JWTSecret),
		cfg.TokenTTL,
		services.AgentCredential{
			Email:        cfg.AgentEmail,
			PasswordHash: cfg.AgentPasswordHash,
			Role:         domain.RoleAdmin,
		},
	)

	return a, nil
}

// newDetector returns nil when no translator is configured, so every
// request is answered in the default language instead of failing on
// translation.
func newDetector(cfg *config.Config) driven.LanguageDetector {
	if domain.TranslationProvider(cfg.TranslationProvider) == domain.TranslationProviderNone {
		return nil
	}
	return language.NewDetector(language.Config{Fallback: cfg.Language()})
}

func newCatalogSource(cfg *config.Config, venues *postgres.VenueSource) (driven.CatalogSource, error) {
	switch domain.CatalogSourceKind(cfg.CatalogSource) {
	case domain.CatalogSourceAirtable:
		return catalog.NewAirtableSource(catalog.AirtableConfig{
			APIKey:    cfg.AirtableAPIKey,
			BaseID:    cfg.AirtableBaseID,
			TableName: cfg.AirtableTableName,
			View:      cfg.AirtableView,
		})
	case domain.CatalogSourceFile:
		return catalog.NewFileSource(cfg.CatalogFile), nil
	case domain.CatalogSourcePostgres:
		if venues == nil {
			return nil, fmt.Errorf("%w: DATABASE_URL is required for the postgres catalog", domain.ErrInvalidInput)
		}
		return venues, nil
	default:
		return nil, fmt.Errorf("%w: unknown catalog source %q", domain.ErrInvalidInput, cfg.CatalogSource)
	}
}

// Close releases connections in reverse order of acquisition
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error during shutdown", "error", err)
	}
}

// newLogger builds the process logger. Logs always go to w (stderr) so
// stdout stays free for command output and the MCP stdio transport.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
