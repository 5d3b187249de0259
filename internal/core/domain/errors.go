package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidProvider indicates an unknown AI or catalog provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrMissingRequiredField indicates a catalog record lacks Name or Address
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrEmbeddingService indicates the embedding service failed
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrTranslationService indicates the translation service failed
	ErrTranslationService = errors.New("translation service error")

	// ErrGenerationService indicates the generative model failed
	ErrGenerationService = errors.New("generation service error")

	// ErrCatalogFetch indicates the catalog source could not be read
	ErrCatalogFetch = errors.New("catalog fetch error")

	// ErrIndexNotReady indicates no semantic index has been built yet
	ErrIndexNotReady = errors.New("index not ready")

	// ErrRefreshInProgress indicates another catalog refresh holds the lock
	ErrRefreshInProgress = errors.New("catalog refresh already in progress")
)

// MissingRequiredFieldError reports a catalog record that cannot become a Document.
type MissingRequiredFieldError struct {
	RecordID string
	Position int
	Field    string
}

func (e *MissingRequiredFieldError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("record %s (position %d): missing required field %q", e.RecordID, e.Position, e.Field)
	}
	return fmt.Sprintf("record at position %d: missing required field %q", e.Position, e.Field)
}

// Is lets errors.Is(err, ErrMissingRequiredField) match.
func (e *MissingRequiredFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// IsServiceError reports whether err came from an external collaborator
// (embedding, generation, translation or catalog source).
func IsServiceError(err error) bool {
	return errors.Is(err, ErrEmbeddingService) ||
		errors.Is(err, ErrGenerationService) ||
		errors.Is(err, ErrTranslationService) ||
		errors.Is(err, ErrCatalogFetch)
}
