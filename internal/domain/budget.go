package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBudgetThreshold is the usage percentage above which a budget
// emits an alert when no explicit threshold is configured.
const DefaultBudgetThreshold = 80

// Budget caps spending for one expense category over an inclusive date
// range. Progress is derived from transactions on demand, never stored.
type Budget struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"userId"`
	CategoryID            uuid.UUID       `json:"categoryId"`
	Amount                decimal.Decimal `json:"amount"`
	StartDate             time.Time       `json:"startDate"`
	EndDate               time.Time       `json:"endDate"`
	NotificationThreshold *int            `json:"notificationThreshold,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	DeletedAt             *time.Time      `json:"deletedAt,omitempty"`

	// Joined category name/type for display.
	CategoryName *string       `json:"categoryName,omitempty"`
	CategoryType *CategoryType `json:"categoryType,omitempty"`
}

// Deleted reports whether the budget carries a soft-delete tombstone.
func (b *Budget) Deleted() bool {
	return b.DeletedAt != nil
}

// Threshold returns the configured notification threshold, falling back
// to DefaultBudgetThreshold.
func (b *Budget) Threshold() decimal.Decimal {
	if b.NotificationThreshold != nil {
		return decimal.NewFromInt(int64(*b.NotificationThreshold))
	}
	return decimal.NewFromInt(DefaultBudgetThreshold)
}

// BudgetProgress is the derived state of one budget.
type BudgetProgress struct {
	BudgetID     uuid.UUID       `json:"budgetId"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   decimal.Decimal `json:"percentage"`
	IsOverBudget bool            `json:"isOverBudget"`
}

type AlertSeverity string

const (
	AlertSeverityWarning AlertSeverity = "warning"
	AlertSeverityDanger  AlertSeverity = "danger"
)

// BudgetAlert is ephemeral: recomputed on every fetch, never persisted.
type BudgetAlert struct {
	BudgetID   uuid.UUID       `json:"budgetId"`
	Severity   AlertSeverity   `json:"severity"`
	Message    string          `json:"message"`
	Percentage decimal.Decimal `json:"percentage"`
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Budget, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
}
