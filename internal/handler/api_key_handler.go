package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// APIKeyHandler handles API key management HTTP requests
type APIKeyHandler struct {
	apiKeyService *service.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(apiKeyService *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService}
}

// CreateAPIKeyRequest represents the create API key request body
type CreateAPIKeyRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	ExpiresAt   *string  `json:"expiresAt,omitempty"`
}

// APIKeyResponse represents an API key in API responses. The secret is
// never included; see CreateAPIKeyResponse.
type APIKeyResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	KeyPrefix   string   `json:"keyPrefix"`
	Permissions []string `json:"permissions"`
	ExpiresAt   *string  `json:"expiresAt,omitempty"`
	LastUsedAt  *string  `json:"lastUsedAt,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

// CreateAPIKeyResponse carries the plaintext secret exactly once.
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key     string `json:"key"`
	Warning string `json:"warning"`
}

// CreateAPIKey handles POST /api/v1/api-keys
func (h *APIKeyHandler) CreateAPIKey(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	permissions := make([]domain.APIKeyPermission, len(req.Permissions))
	for i, p := range req.Permissions {
		permissions[i] = domain.APIKeyPermission(p)
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "expiresAt", Message: "Must be an RFC 3339 timestamp"},
			})
		}
		expiresAt = &parsed
	}

	result, err := h.apiKeyService.Create(c.Request().Context(), userID, req.Name, permissions, expiresAt)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrPermissionRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "permissions", Message: "At least one permission is required"},
			})
		}
		if errors.Is(err, domain.ErrInvalidPermission) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "permissions", Message: "Must be one of: transactions.create, transactions.delete"},
			})
		}
		if errors.Is(err, domain.ErrTooManyAPIKeys) {
			return NewConflictError(c, "Maximum number of API keys reached")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create API key")
		return NewInternalError(c, "Failed to create API key")
	}

	return c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(result.Key),
		Key:            result.Secret,
		Warning:        result.Warning,
	})
}

// GetAPIKeys handles GET /api/v1/api-keys
func (h *APIKeyHandler) GetAPIKeys(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	keys, err := h.apiKeyService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get API keys")
		return NewInternalError(c, "Failed to get API keys")
	}

	response := make([]APIKeyResponse, len(keys))
	for i, key := range keys {
		response[i] = toAPIKeyResponse(key)
	}
	return c.JSON(http.StatusOK, response)
}

// RevokeAPIKey handles DELETE /api/v1/api-keys/:id
func (h *APIKeyHandler) RevokeAPIKey(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid API key ID", nil)
	}

	if err := h.apiKeyService.Revoke(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return NewNotFoundError(c, "API key not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("key_id", id.String()).Msg("Failed to revoke API key")
		return NewInternalError(c, "Failed to revoke API key")
	}

	return c.NoContent(http.StatusNoContent)
}

// Helper function to convert domain.APIKey to APIKeyResponse
func toAPIKeyResponse(key *domain.APIKey) APIKeyResponse {
	resp := APIKeyResponse{
		ID:          key.ID.String(),
		Name:        key.Name,
		KeyPrefix:   key.KeyPrefix,
		Permissions: make([]string, len(key.Permissions)),
		CreatedAt:   key.CreatedAt.Format(time.RFC3339),
	}
	for i, p := range key.Permissions {
		resp.Permissions[i] = string(p)
	}
	if key.ExpiresAt != nil {
		expiresAt := key.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expiresAt
	}
	if key.LastUsedAt != nil {
		lastUsedAt := key.LastUsedAt.Format(time.RFC3339)
		resp.LastUsedAt = &lastUsedAt
	}
	return resp
}
