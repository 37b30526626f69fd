package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category classifies transactions. Type is immutable after creation.
type Category struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Color       string       `json:"color"`
	Icon        *string      `json:"icon,omitempty"`
	Description *string      `json:"description,omitempty"`
	IsDefault   bool         `json:"isDefault"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty"`
}

// Deleted reports whether the category carries a soft-delete tombstone.
// Call sites must use this instead of inspecting DeletedAt.
func (c *Category) Deleted() bool {
	return c.DeletedAt != nil
}

// CategoryUpdate carries the mutable fields of a category. Type is
// deliberately absent.
type CategoryUpdate struct {
	Name        string
	Color       string
	Icon        *string
	Description *string
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, update CategoryUpdate) (*Category, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	HasTransactions(ctx context.Context, userID, id uuid.UUID) (bool, error)
}
