package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func TestFactory_CreateEmbeddingService(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  error
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "not configured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantNil: true},
		{name: "openai", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk-test"}},
		{name: "ollama", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://localhost:11434"}},
		{name: "invalid provider", settings: &domain.EmbeddingSettings{Provider: "invalid", APIKey: "x"}, wantNil: true, wantErr: domain.ErrInvalidProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := factory.CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (svc == nil) != tt.wantNil {
				t.Errorf("expected nil service %v, got %v", tt.wantNil, svc)
			}
		})
	}
}

func TestFactory_CreateLLMService(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantModel string
		wantErr   error
	}{
		{name: "nil settings", settings: nil},
		{name: "not configured", settings: &domain.LLMSettings{}},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o"}, wantModel: "gpt-4o"},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama}, wantModel: "llama3"},
		{name: "invalid provider", settings: &domain.LLMSettings{Provider: "invalid", APIKey: "x"}, wantErr: domain.ErrInvalidProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := factory.CreateLLMService(tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantModel == "" {
				if svc != nil {
					t.Error("expected nil service")
				}
				return
			}
			if svc == nil || svc.Model() != tt.wantModel {
				t.Errorf("expected model %s, got %v", tt.wantModel, svc)
			}
		})
	}
}
