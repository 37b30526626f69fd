package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// APIKeyHeader carries the opaque secret on external requests
	APIKeyHeader = "x-api-key"

	// APIKeyIDKey is the context key for the API key id
	APIKeyIDKey contextKey = "api_key_id"
	// APIKeyPermissionsKey is the context key for granted permissions
	APIKeyPermissionsKey contextKey = "api_key_permissions"
	// IsAPIKeyAuthKey marks requests authenticated via API key
	IsAPIKeyAuthKey contextKey = "is_api_key_auth"
)

// APIKeyValidator provides API key validation
type APIKeyValidator interface {
	ValidateKey(ctx context.Context, secret string) (*domain.APIKey, error)
}

// APIKeyAuthMiddleware authenticates external requests via x-api-key.
type APIKeyAuthMiddleware struct {
	validator APIKeyValidator
}

// NewAPIKeyAuthMiddleware creates a new APIKeyAuthMiddleware
func NewAPIKeyAuthMiddleware(validator APIKeyValidator) *APIKeyAuthMiddleware {
	return &APIKeyAuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that validates API keys. It
// rejects missing, unknown and expired keys before any data access.
func (m *APIKeyAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := c.Request().Header.Get(APIKeyHeader)
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "API key is required")
			}

			key, err := m.validator.ValidateKey(c.Request().Context(), secret)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrAPIKeyNotFound):
					log.Debug().Msg("API key not found or revoked")
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid API key")
				case errors.Is(err, domain.ErrAPIKeyExpired):
					log.Debug().Msg("API key expired")
					return echo.NewHTTPError(http.StatusUnauthorized, "API key has expired")
				default:
					log.Error().Err(err).Msg("API key validation failed")
					return echo.NewHTTPError(http.StatusUnauthorized, "API key validation failed")
				}
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, key.UserID)
			ctx = context.WithValue(ctx, APIKeyIDKey, key.ID)
			ctx = context.WithValue(ctx, APIKeyPermissionsKey, key.Permissions)
			ctx = context.WithValue(ctx, IsAPIKeyAuthKey, true)

			c.SetRequest(c.Request().WithContext(ctx))

			log.Debug().
				Str("user_id", key.UserID.String()).
				Str("key_id", key.ID.String()).
				Msg("API key authentication successful")

			return next(c)
		}
	}
}

// RequirePermission returns a middleware rejecting requests whose API key
// lacks the given permission.
func RequirePermission(permission domain.APIKeyPermission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, granted := range GetAPIKeyPermissions(c) {
				if granted == permission {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetAPIKeyID extracts the API key id from the context
func GetAPIKeyID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(APIKeyIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetAPIKeyPermissions extracts the granted permissions from the context
func GetAPIKeyPermissions(c echo.Context) []domain.APIKeyPermission {
	if perms, ok := c.Request().Context().Value(APIKeyPermissionsKey).([]domain.APIKeyPermission); ok {
		return perms
	}
	return nil
}

// IsAPIKeyAuth checks if the request was authenticated via API key
func IsAPIKeyAuth(c echo.Context) bool {
	if v, ok := c.Request().Context().Value(IsAPIKeyAuthKey).(bool); ok {
		return v
	}
	return false
}
