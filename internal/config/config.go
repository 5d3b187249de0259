// Package config loads the concierge configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// Config holds every setting of the concierge service and CLI.
// The env tag names the variable each field is read from.
type Config struct {
	// AI providers
	OpenAIAPIKey       string  `env:"OPENAI_API_KEY" validate:"required_if=EmbeddingProvider openai"`
	EmbeddingProvider  string  `env:"EMBEDDING_PROVIDER" validate:"oneof=openai ollama"`
	EmbeddingModel     string  `env:"EMBEDDING_MODEL" validate:"required"`
	EmbeddingBaseURL   string  `env:"EMBEDDING_BASE_URL" validate:"omitempty,url"`
	EmbeddingBatchSize int     `env:"EMBEDDING_BATCH_SIZE" validate:"gte=1,lte=2048"`
	LLMProvider        string  `env:"LLM_PROVIDER" validate:"oneof=openai ollama"`
	LLMModel           string  `env:"LLM_MODEL" validate:"required"`
	LLMBaseURL         string  `env:"LLM_BASE_URL" validate:"omitempty,url"`
	LLMTemperature     float64 `env:"LLM_TEMPERATURE" validate:"gte=0,lte=2"`
	LLMMaxTokens       int     `env:"LLM_MAX_TOKENS" validate:"gte=0"`

	// Catalog
	CatalogSource          string        `env:"CATALOG_SOURCE" validate:"oneof=airtable file postgres"`
	AirtableAPIKey         string        `env:"AIRTABLE_API_KEY" validate:"required_if=CatalogSource airtable"`
	AirtableBaseID         string        `env:"AIRTABLE_BASE_ID" validate:"required_if=CatalogSource airtable"`
	AirtableTableName      string        `env:"AIRTABLE_TABLE_NAME" validate:"required_if=CatalogSource airtable"`
	AirtableView           string        `env:"AIRTABLE_VIEW"`
	CatalogFile            string        `env:"CATALOG_FILE" validate:"required_if=CatalogSource file"`
	DatabaseURL            string        `env:"DATABASE_URL" validate:"required_if=CatalogSource postgres"`
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" validate:"gte=0"`
	CatalogSkipInvalid     bool          `env:"CATALOG_SKIP_INVALID"`
	City                   string        `env:"CATALOG_CITY"`

	// Redis embedding cache and refresh lock
	RedisURL          string        `env:"REDIS_URL"`
	EmbeddingCacheTTL time.Duration `env:"EMBEDDING_CACHE_TTL" validate:"gte=0"`

	// Languages
	TranslationProvider   string  `env:"TRANSLATION_PROVIDER" validate:"oneof=google llm none"`
	GoogleTranslateAPIKey string  `env:"GOOGLE_TRANSLATE_API_KEY" validate:"required_if=TranslationProvider google"`
	GoogleTranslateRPS    float64 `env:"GOOGLE_TRANSLATE_RPS" validate:"gt=0"`
	DefaultLanguage       string  `env:"DEFAULT_LANGUAGE" validate:"oneof=en fr de es it pt nl"`

	// Requests
	TopK           int           `env:"TOP_K" validate:"gte=1,lte=50"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`

	// HTTP
	Host           string        `env:"HOST"`
	Port           int           `env:"PORT" validate:"gte=1,lte=65535"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS" validate:"gte=0"`
	JWTSecret      string        `env:"JWT_SECRET" validate:"required_with=AgentPasswordHash,omitempty,min=32"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" validate:"gt=0"`
	AgentEmail     string        `env:"AGENT_EMAIL" validate:"required_with=AgentPasswordHash,omitempty,email"`
	// AgentPasswordHash is a bcrypt hash; empty leaves the API open
	AgentPasswordHash string `env:"AGENT_PASSWORD_HASH"`

	// MCP
	MCPHTTPAddr string `env:"MCP_HTTP_ADDR"`

	// Proposals
	ProposalDefaultPrice float64 `env:"PROPOSAL_DEFAULT_PRICE" validate:"gte=0"`
	ProposalCurrency     string  `env:"PROPOSAL_CURRENCY" validate:"len=3"`
	ProposalAuthor       string  `env:"PROPOSAL_AUTHOR"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=text json"`
}

// Load reads a .env file if present, then the environment, and validates
// the result. Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the configuration from environment variables without validating it
func FromEnv() *Config {
	return &Config{
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", "openai")),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingBatchSize: getEnvInt("EMBEDDING_BATCH_SIZE", 100),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMTemperature:     getEnvFloat("LLM_TEMPERATURE", 0),
		LLMMaxTokens:       getEnvInt("LLM_MAX_TOKENS", 0),

		CatalogSource:          strings.ToLower(getEnv("CATALOG_SOURCE", "airtable")),
		AirtableAPIKey:         getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:         getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTableName:      getEnv("AIRTABLE_TABLE_NAME", ""),
		AirtableView:           getEnv("AIRTABLE_VIEW", ""),
		CatalogFile:            getEnv("CATALOG_FILE", ""),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		CatalogRefreshInterval: getEnvDuration("CATALOG_REFRESH_INTERVAL", 0),
		CatalogSkipInvalid:     getEnvBool("CATALOG_SKIP_INVALID", false),
		City:                   getEnv("CATALOG_CITY", "Paris"),

		RedisURL:          getEnv("REDIS_URL", ""),
		EmbeddingCacheTTL: getEnvDuration("EMBEDDING_CACHE_TTL", 7*24*time.Hour),

		TranslationProvider:   strings.ToLower(getEnv("TRANSLATION_PROVIDER", "google")),
		GoogleTranslateAPIKey: getEnv("GOOGLE_TRANSLATE_API_KEY", ""),
		GoogleTranslateRPS:    getEnvFloat("GOOGLE_TRANSLATE_RPS", 10),
		DefaultLanguage:       strings.ToLower(getEnv("DEFAULT_LANGUAGE", string(domain.DefaultLanguage))),

		TopK:           getEnvInt("TOP_K", domain.DefaultTopK),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),

		Host:              getEnv("HOST", ""),
		Port:              getEnvInt("PORT", 8080),
		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:      getEnvFloat("RATE_LIMIT_RPS", 0),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AgentEmail:        getEnv("AGENT_EMAIL", ""),
		AgentPasswordHash: getEnv("AGENT_PASSWORD_HASH", ""),

		MCPHTTPAddr: getEnv("MCP_HTTP_ADDR", ""),

		ProposalDefaultPrice: getEnvFloat("PROPOSAL_DEFAULT_PRICE", 70),
		ProposalCurrency:     strings.ToUpper(getEnv("PROPOSAL_CURRENCY", "EUR")),
		ProposalAuthor:       getEnv("PROPOSAL_AUTHOR", "Concierge"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if c.LLMProvider == string(domain.AIProviderOpenAI) && c.OpenAIAPIKey == "" {
		problems = append(problems, "OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: invalid configuration: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "required_if":
		cond := strings.Fields(fe.Param())
		if len(cond) == 2 {
			return fmt.Sprintf("%s is required when %s=%s", fe.Field(), envName(cond[0]), cond[1])
		}
		return fe.Field() + " is required"
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", fe.Field(), envName(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// envName maps a Config field name to its variable name
func envName(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	return f.Tag.Get("env")
}

// AuthEnabled reports whether agent credentials are configured
func (c *Config) AuthEnabled() bool {
	return c.AgentEmail != "" && c.AgentPasswordHash != ""
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Language returns the configured fallback language
func (c *Config) Language() domain.Language {
	lang, ok := domain.ParseLanguage(c.DefaultLanguage)
	if !ok {
		return domain.DefaultLanguage
	}
	return lang
}

// EmbeddingSettings returns the embedding provider settings
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider:  domain.AIProvider(c.EmbeddingProvider),
		Model:     c.EmbeddingModel,
		APIKey:    c.OpenAIAPIKey,
		BaseURL:   c.EmbeddingBaseURL,
		BatchSize: c.EmbeddingBatchSize,
	}
}

// LLMSettings returns the generation provider settings
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider:    domain.AIProvider(c.LLMProvider),
		Model:       c.LLMModel,
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.LLMBaseURL,
		Temperature: float32(c.LLMTemperature),
		MaxTokens:   c.LLMMaxTokens,
	}
}

// TranslationSettings returns the translation provider settings
func (c *Config) TranslationSettings() *domain.TranslationSettings {
	return &domain.TranslationSettings{
		Provider:          domain.TranslationProvider(c.TranslationProvider),
		APIKey:            c.GoogleTranslateAPIKey,
		RequestsPerSecond: c.GoogleTranslateRPS,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
