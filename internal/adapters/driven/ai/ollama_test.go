package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func newOllamaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		embeddings := make([][]float32, len(req.Input))
		for i := range req.Input {
			embeddings[i] = []float32{float32(i), 1, 0}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": embeddings})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be concise", req["system"])
		assert.Equal(t, false, req["stream"])
		options := req["options"].(map[string]any)
		assert.Equal(t, 0.0, options["temperature"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"  Try Le Jardin. ","done":true}` + "\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestOllamaEmbedding(t *testing.T) {
	server := newOllamaServer(t)
	defer server.Close()

	svc, err := NewOllamaEmbedding(server.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.Model())
	assert.Equal(t, 0, svc.Dimensions())

	vectors, err := svc.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(1), vectors[1][0])
	assert.Equal(t, 3, svc.Dimensions())

	query, err := svc.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, query, 3)

	assert.NoError(t, svc.HealthCheck(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestOllamaEmbedding_Unreachable(t *testing.T) {
	svc, err := NewOllamaEmbedding("http://localhost:1", "nomic-embed-text")
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), []string{"a"})
	assert.True(t, errors.Is(err, domain.ErrEmbeddingService))
}

func TestOllamaLLM_Generate(t *testing.T) {
	server := newOllamaServer(t)
	defer server.Close()

	svc, err := NewOllamaLLM(server.URL, "llama3")
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), domain.GenerationRequest{
		System: "be concise",
		Prompt: "Context: ...",
	})
	require.NoError(t, err)
	assert.Equal(t, "Try Le Jardin.", answer)
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestOllamaLLM_Unreachable(t *testing.T) {
	svc, err := NewOllamaLLM("http://localhost:1", "llama3")
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
	assert.ErrorIs(t, err, domain.ErrGenerationService)
}
