package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider  AIProvider `json:"provider"`
	Model     string     `json:"model"`
	APIKey    string     `json:"-"` // Never serialize to JSON
	BaseURL   string     `json:"base_url,omitempty"`
	BatchSize int        `json:"batch_size"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the generative model
type LLMSettings struct {
	Provider    AIProvider `json:"provider"`
	Model       string     `json:"model"`
	APIKey      string     `json:"-"` // Never serialize to JSON
	BaseURL     string     `json:"base_url,omitempty"`
	Temperature float32    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// TranslationProvider identifies the translation backend
type TranslationProvider string

const (
	TranslationProviderGoogle TranslationProvider = "google"
	TranslationProviderLLM    TranslationProvider = "llm"
	TranslationProviderNone   TranslationProvider = "none"
)

// TranslationSettings configures the translation service
type TranslationSettings struct {
	Provider          TranslationProvider `json:"provider"`
	APIKey            string              `json:"-"`
	BaseURL           string              `json:"base_url,omitempty"`
	RequestsPerSecond float64             `json:"requests_per_second"`
}

// CatalogSourceKind identifies where venue records are read from
type CatalogSourceKind string

const (
	CatalogSourceAirtable CatalogSourceKind = "airtable"
	CatalogSourceFile     CatalogSourceKind = "file"
	CatalogSourcePostgres CatalogSourceKind = "postgres"
)
