package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// ReadyResponse reports index and dependency readiness
// @Description Readiness status
type ReadyResponse struct {
	Status       string            `json:"status" example:"ready"`
	Documents    int               `json:"documents" example:"42"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// DocumentListResponse lists the indexed venues
type DocumentListResponse struct {
	Documents []*domain.Document `json:"documents"`
	Total     int                `json:"total"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Ready once a semantic index is loaded and every dependency answers
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready"}
	ready := true

	if status := s.services.Catalog.Status(); status == nil || !status.Ready {
		ready = false
	} else {
		resp.Documents = status.Documents
	}

	if len(s.services.Dependencies) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Dependencies = make(map[string]string, len(s.services.Dependencies))
		for name, dep := range s.services.Dependencies {
			if err := dep.Ping(ctx); err != nil {
				resp.Dependencies[name] = "unavailable"
				ready = false
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}

	if !ready {
		resp.Status = "not ready"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      Agent login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      404      {object}  ErrorResponse  "Authentication disabled"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.services.Auth == nil || !s.services.Auth.Enabled() {
		writeError(w, http.StatusNotFound, "authentication disabled")
		return
	}

	var req domain.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.services.Auth.Authenticate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Concierge endpoints

// handleRecommend godoc
// @Summary      Recommend restaurants
// @Description  Answers a free-text client request from the venue catalog, in the request's language
// @Tags         Concierge
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.RecommendRequest  true  "Client request"
// @Success      200      {object}  domain.Recommendation
// @Failure      400      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse  "Upstream model or translation failure"
// @Failure      503      {object}  ErrorResponse  "Index not ready"
// @Failure      504      {object}  ErrorResponse  "Timed out"
// @Router       /recommendations [post]
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req driving.RecommendRequest
	if !s.decode(w, r, &req) {
		return
	}

	rec, err := s.services.Recommendations.Recommend(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleProposal godoc
// @Summary      Render a proposal
// @Description  Renders a recommendation into a client proposal (PDF or HTML)
// @Tags         Concierge
// @Accept       json
// @Produce      application/pdf
// @Produce      text/html
// @Security     BearerAuth
// @Param        request  body      driving.ProposalRequest  true  "Proposal content"
// @Success      200
// @Failure      400      {object}  ErrorResponse
// @Router       /proposals [post]
func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req driving.ProposalRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, err := s.services.Proposals.Render(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// Catalog endpoints

// handleCatalogStatus godoc
// @Summary      Catalog index status
// @Tags         Catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.IndexStatus
// @Router       /catalog/status [get]
func (s *Server) handleCatalogStatus(w http.ResponseWriter, r *http.Request) {
	status := s.services.Catalog.Status()
	if status == nil {
		status = &domain.IndexStatus{}
	}
	writeJSON(w, http.StatusOK, status)
}

// handleCatalogDocuments godoc
// @Summary      List indexed venues
// @Tags         Catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DocumentListResponse
// @Router       /catalog/documents [get]
func (s *Server) handleCatalogDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.services.Catalog.Documents()
	if docs == nil {
		docs = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// handleCatalogRefresh godoc
// @Summary      Refresh the catalog
// @Description  Refetches the venue catalog and swaps in a rebuilt index (admin only)
// @Tags         Catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.IndexStatus
// @Failure      409  {object}  ErrorResponse  "Refresh already running"
// @Failure      502  {object}  ErrorResponse  "Catalog or embedding failure"
// @Router       /catalog/refresh [post]
func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	status, err := s.services.Catalog.Refresh(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// writeServiceError maps domain errors onto status codes.
// Deadline checks come first since service errors wrap the context cause.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingRequiredField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrIndexNotReady):
		writeError(w, http.StatusServiceUnavailable, "catalog index not ready")
	case errors.Is(err, domain.ErrRefreshInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	case domain.IsServiceError(err):
		s.logger.Warn("upstream service failure", "error", err)
		writeError(w, http.StatusBadGateway, upstreamMessage(err))
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// upstreamMessage names the failing collaborator without leaking provider detail
func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationService):
		return "generation service unavailable"
	case errors.Is(err, domain.ErrTranslationService):
		return "translation service unavailable"
	case errors.Is(err, domain.ErrEmbeddingService):
		return "embedding service unavailable"
	default:
		return "catalog source unavailable"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
