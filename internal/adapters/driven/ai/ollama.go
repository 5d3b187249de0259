package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*OllamaEmbedding)(nil)
	_ driven.LLMService       = (*OllamaLLM)(nil)
)

// newOllamaClient uses OLLAMA_HOST when baseURL is empty
func newOllamaClient(baseURL string, timeout time.Duration) (*api.Client, *http.Client, error) {
	hostURL := envconfig.Host()
	if baseURL != "" {
		parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid Ollama URL %q: %w", baseURL, err)
		}
		hostURL = parsed
	}
	httpClient := &http.Client{Timeout: timeout}
	return api.NewClient(hostURL, httpClient), httpClient, nil
}

// OllamaEmbedding implements EmbeddingService with a local Ollama server
type OllamaEmbedding struct {
	client     *api.Client
	http       *http.Client
	model      string
	dimensions atomic.Int64
}

// NewOllamaEmbedding creates a new Ollama embedding service
func NewOllamaEmbedding(baseURL, model string) (driven.EmbeddingService, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	client, httpClient, err := newOllamaClient(baseURL, 60*time.Second)
	if err != nil {
		return nil, err
	}
	return &OllamaEmbedding{client: client, http: httpClient, model: model}, nil
}

// Embed generates embeddings for multiple texts in one call
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrEmbeddingService, len(texts), len(resp.Embeddings))
	}

	e.dimensions.Store(int64(len(resp.Embeddings[0])))
	return resp.Embeddings, nil
}

// EmbedQuery generates an embedding for a retrieval query
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the size seen on the last call, 0 before the first one
func (e *OllamaEmbedding) Dimensions() int {
	return int(e.dimensions.Load())
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the Ollama server is reachable
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	if err := e.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	return nil
}

// Close releases resources held by the embedding service
func (e *OllamaEmbedding) Close() error {
	e.http.CloseIdleConnections()
	return nil
}

// OllamaLLM implements LLMService with a local Ollama server
type OllamaLLM struct {
	client *api.Client
	http   *http.Client
	model  string
}

// NewOllamaLLM creates a new Ollama generation service
func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		model = "llama3"
	}
	client, httpClient, err := newOllamaClient(baseURL, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	return &OllamaLLM{client: client, http: httpClient, model: model}, nil
}

// Generate runs a single non-streaming completion
func (l *OllamaLLM) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	stream := false
	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	var sb strings.Builder
	err := l.client.Generate(ctx, &api.GenerateRequest{
		Model:   l.model,
		System:  req.System,
		Prompt:  req.Prompt,
		Stream:  &stream,
		Options: options,
	}, func(resp api.GenerateResponse) error {
		_, err := sb.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("%w: empty response from %s", domain.ErrGenerationService, l.model)
	}
	return answer, nil
}

// Model returns the model name being used
func (l *OllamaLLM) Model() string {
	return l.model
}

// Ping verifies the Ollama server is reachable
func (l *OllamaLLM) Ping(ctx context.Context) error {
	if err := l.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	return nil
}

// Close releases resources held by the LLM service
func (l *OllamaLLM) Close() error {
	l.http.CloseIdleConnections()
	return nil
}
