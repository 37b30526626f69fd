package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// DateLayout is the wire format for transaction and budget dates.
// Dates are calendar dates; time-of-day never participates in bucketing.
const DateLayout = "2006-01-02"

// Transaction is a single income or expense record. Amount is always
// positive; Type carries the sign.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	ReceiptPath *string         `json:"receiptPath,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`

	// Joined for display; nil when the category has been deleted.
	// Unresolved categories must render as "Unknown", never fail.
	Category *Category `json:"category,omitempty"`
}

// Deleted reports whether the transaction carries a soft-delete tombstone.
func (t *Transaction) Deleted() bool {
	return t.DeletedAt != nil
}

// DateKey returns the calendar-date bucket key (YYYY-MM-DD).
func (t *Transaction) DateKey() string {
	return t.Date.Format(DateLayout)
}

// MonthKey returns the calendar-month bucket key (YYYY-MM).
func (t *Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}

// TransactionFilters narrows a transaction fetch. Unset fields impose no
// constraint; set fields combine with logical AND. Date bounds are
// inclusive.
type TransactionFilters struct {
	StartDate   *time.Time
	EndDate     *time.Time
	CategoryIDs []uuid.UUID
	Type        *TransactionType
	Search      *string
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *TransactionFilters) ([]*Transaction, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) error
	SetReceiptPath(ctx context.Context, userID, id uuid.UUID, path *string) error
}
