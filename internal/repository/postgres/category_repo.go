package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, type, color, icon, description, is_default, created_at, updated_at, deleted_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.Description,
		&c.IsDefault, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, type, color, icon, description, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+categoryColumns,
		category.UserID, category.Name, category.Type, category.Color,
		category.Icon, category.Description, category.IsDefault,
	)
	return scanCategory(row)
}

// GetByID retrieves an owned, non-deleted category by id
func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id,
	)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetAllByUser retrieves the user's non-deleted categories, name ascending
func (r *CategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update updates the mutable fields of an owned category. Type never changes.
func (r *CategoryRepository) Update(ctx context.Context, userID, id uuid.UUID, update domain.CategoryUpdate) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE categories
		SET name = $3, color = $4, icon = $5, description = $6, updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		userID, id, update.Name, update.Color, update.Icon, update.Description,
	)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// SoftDelete sets the deletion timestamp on an owned category
func (r *CategoryRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasTransactions reports whether any non-deleted transactions reference
// the category
func (r *CategoryRepository) HasTransactions(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND category_id = $2 AND deleted_at IS NULL
		)`,
		userID, id,
	).Scan(&exists)
	return exists, err
}
