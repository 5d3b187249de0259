package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrInvalidCredentials", ErrInvalidCredentials, "invalid credentials"},
		{"ErrMissingRequiredField", ErrMissingRequiredField, "missing required field"},
		{"ErrEmbeddingService", ErrEmbeddingService, "embedding service error"},
		{"ErrTranslationService", ErrTranslationService, "translation service error"},
		{"ErrGenerationService", ErrGenerationService, "generation service error"},
		{"ErrCatalogFetch", ErrCatalogFetch, "catalog fetch error"},
		{"ErrIndexNotReady", ErrIndexNotReady, "index not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrInvalidInput,
		ErrUnauthorized,
		ErrInvalidCredentials,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidProvider,
		ErrMissingRequiredField,
		ErrEmbeddingService,
		ErrTranslationService,
		ErrGenerationService,
		ErrCatalogFetch,
		ErrIndexNotReady,
		ErrRefreshInProgress,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestMissingRequiredFieldError(t *testing.T) {
	err := &MissingRequiredFieldError{RecordID: "rec1", Position: 3, Field: FieldAddress}

	if !errors.Is(err, ErrMissingRequiredField) {
		t.Error("expected errors.Is to match ErrMissingRequiredField")
	}
	want := `record rec1 (position 3): missing required field "Address"`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	anon := &MissingRequiredFieldError{Position: 0, Field: FieldName}
	if anon.Error() != `record at position 0: missing required field "Name"` {
		t.Errorf("unexpected message: %s", anon.Error())
	}

	var target *MissingRequiredFieldError
	wrapped := fmt.Errorf("build: %w", err)
	if !errors.As(wrapped, &target) || target.Field != FieldAddress {
		t.Error("expected errors.As to unwrap MissingRequiredFieldError")
	}
}

func TestIsServiceError(t *testing.T) {
	if !IsServiceError(fmt.Errorf("%w: timeout", ErrGenerationService)) {
		t.Error("generation error should be a service error")
	}
	if !IsServiceError(fmt.Errorf("%w: 500", ErrCatalogFetch)) {
		t.Error("catalog error should be a service error")
	}
	if IsServiceError(ErrInvalidInput) {
		t.Error("invalid input is not a service error")
	}
}
