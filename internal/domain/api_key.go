package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// APIKeyPermission scopes what an API key may do on the external surface.
type APIKeyPermission string

const (
	PermissionTransactionsCreate APIKeyPermission = "transactions.create"
	PermissionTransactionsDelete APIKeyPermission = "transactions.delete"
)

// Valid reports whether p is a known permission.
func (p APIKeyPermission) Valid() bool {
	return p == PermissionTransactionsCreate || p == PermissionTransactionsDelete
}

// APIKey grants programmatic access to the external REST surface.
// Only the SHA-256 hash of the secret is stored.
type APIKey struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"userId"`
	Name        string             `json:"name"`
	KeyHash     string             `json:"-"`
	KeyPrefix   string             `json:"keyPrefix"`
	Permissions []APIKeyPermission `json:"permissions"`
	ExpiresAt   *time.Time         `json:"expiresAt,omitempty"`
	LastUsedAt  *time.Time         `json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	DeletedAt   *time.Time         `json:"deletedAt,omitempty"`
}

// Deleted reports whether the key carries a soft-delete tombstone.
func (k *APIKey) Deleted() bool {
	return k.DeletedAt != nil
}

// Expired reports whether the key has passed its expiry at the given time.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}

// HasPermission reports whether the key grants the given permission.
func (k *APIKey) HasPermission(p APIKeyPermission) bool {
	for _, granted := range k.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*APIKey, error)
	GetByHash(ctx context.Context, hash string) (*APIKey, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}
