package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
)

// APIKeyRepository implements domain.APIKeyRepository using PostgreSQL
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

const apiKeyColumns = `id, user_id, name, key_hash, key_prefix, permissions, expires_at, last_used_at, created_at, deleted_at`

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var (
		k           domain.APIKey
		permissions []string
	)
	err := row.Scan(
		&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &permissions,
		&k.ExpiresAt, &k.LastUsedAt, &k.CreatedAt, &k.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	k.Permissions = make([]domain.APIKeyPermission, len(permissions))
	for i, p := range permissions {
		k.Permissions[i] = domain.APIKeyPermission(p)
	}
	return &k, nil
}

func permissionStrings(permissions []domain.APIKeyPermission) []string {
	out := make([]string, len(permissions))
	for i, p := range permissions {
		out[i] = string(p)
	}
	return out
}

// Create stores a new API key record and fills in its generated fields
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO api_keys (user_id, name, key_hash, key_prefix, permissions, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		key.UserID, key.Name, key.KeyHash, key.KeyPrefix,
		permissionStrings(key.Permissions), key.ExpiresAt,
	).Scan(&key.ID, &key.CreatedAt)
}

// GetByUser retrieves the user's non-revoked API keys, newest first
func (r *APIKeyRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]*domain.APIKey, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetByHash looks up a non-revoked key by its secret hash. Expiry is the
// caller's concern.
func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		WHERE key_hash = $1 AND deleted_at IS NULL`,
		hash,
	)
	k, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return k, nil
}

// SoftDelete revokes an owned API key
func (r *APIKeyRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPIKeyNotFound
	}
	return nil
}

// UpdateLastUsed records that the key just authenticated a request
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = now() WHERE id = $1`,
		id,
	)
	return err
}
