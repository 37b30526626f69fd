package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// keyPrefix is the prefix for all API key secrets
	keyPrefix = "pw_"
	// keyRandomBytes is the number of random bytes per secret (256 bits)
	keyRandomBytes = 32
	// keyDisplayLength is the length of the displayable prefix
	keyDisplayLength = 8
	// maxKeysPerUser is the maximum number of active API keys per user
	maxKeysPerUser = 10
)

// APIKeyService handles API key business logic
type APIKeyService struct {
	repo domain.APIKeyRepository
}

// NewAPIKeyService creates a new APIKeyService
func NewAPIKeyService(repo domain.APIKeyRepository) *APIKeyService {
	return &APIKeyService{repo: repo}
}

// CreateAPIKeyResult includes the full secret for one-time display.
type CreateAPIKeyResult struct {
	Key     *domain.APIKey
	Secret  string
	Warning string
}

// Create creates a new API key. The plaintext secret is returned exactly
// once; only its SHA-256 hash is stored.
func (s *APIKeyService) Create(ctx context.Context, userID uuid.UUID, name string, permissions []domain.APIKeyPermission, expiresAt *time.Time) (*CreateAPIKeyResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(permissions) == 0 {
		return nil, domain.ErrPermissionRequired
	}
	for _, p := range permissions {
		if !p.Valid() {
			return nil, domain.ErrInvalidPermission
		}
	}

	existing, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxKeysPerUser {
		return nil, domain.ErrTooManyAPIKeys
	}

	raw, err := generateSecret()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate API key secret")
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	secret := keyPrefix + raw
	key := &domain.APIKey{
		UserID:      userID,
		Name:        name,
		KeyHash:     hashSecret(secret),
		KeyPrefix:   keyPrefix + raw[:keyDisplayLength] + "...",
		Permissions: permissions,
		ExpiresAt:   expiresAt,
	}

	if err := s.repo.Create(ctx, key); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create API key")
		return nil, err
	}

	log.Info().
		Str("key_id", key.ID.String()).
		Str("user_id", userID.String()).
		Str("name", name).
		Msg("API key created")

	return &CreateAPIKeyResult{
		Key:     key,
		Secret:  secret,
		Warning: "Make sure to copy your API key now. You won't be able to see it again!",
	}, nil
}

// GetByUser returns the user's active API keys, without secrets.
func (s *APIKeyService) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error) {
	return s.repo.GetByUser(ctx, userID)
}

// Revoke soft-deletes an API key.
func (s *APIKeyService) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, userID, keyID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Str("key_id", keyID.String()).Msg("API key revoked")
	return nil
}

// ValidateKey checks a presented secret and returns the matching key.
// Expired keys are rejected before any data access. last_used_at updates
// asynchronously so validation never blocks on the write.
func (s *APIKeyService) ValidateKey(ctx context.Context, secret string) (*domain.APIKey, error) {
	if !strings.HasPrefix(secret, keyPrefix) {
		return nil, domain.ErrAPIKeyNotFound
	}

	key, err := s.repo.GetByHash(ctx, hashSecret(secret))
	if err != nil {
		return nil, err
	}
	if key.Expired(time.Now()) {
		return nil, domain.ErrAPIKeyExpired
	}

	go func() {
		if err := s.repo.UpdateLastUsed(context.Background(), key.ID); err != nil {
			log.Error().Err(err).Str("key_id", key.ID.String()).Msg("Failed to update last_used_at")
		}
	}()

	return key, nil
}

// generateSecret generates a cryptographically secure random secret
func generateSecret() (string, error) {
	bytes := make([]byte, keyRandomBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashSecret creates a SHA-256 hash of the secret
func hashSecret(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("%x", hash)
}
