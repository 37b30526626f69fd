package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `t.id, t.user_id, t.category_id, t.type, t.amount, t.description, t.date,
	t.receipt_path, t.created_at, t.updated_at, t.deleted_at,
	c.id, c.name, c.type, c.color, c.icon, c.is_default`

const transactionJoin = ` FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id AND c.deleted_at IS NULL`

// scanTransaction scans one joined row. The category columns are nullable
// because the join misses soft-deleted categories.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var catID *uuid.UUID
	var catName, catColor *string
	var catType *domain.CategoryType
	var catIcon *string
	var catDefault *bool

	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &t.Type, &t.Amount, &t.Description, &t.Date,
		&t.ReceiptPath, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
		&catID, &catName, &catType, &catColor, &catIcon, &catDefault,
	)
	if err != nil {
		return nil, err
	}

	if catID != nil {
		t.Category = &domain.Category{
			ID:        *catID,
			UserID:    t.UserID,
			Name:      *catName,
			Type:      *catType,
			Color:     *catColor,
			Icon:      catIcon,
			IsDefault: *catDefault,
		}
	}
	return &t, nil
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, category_id, type, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		transaction.UserID, transaction.CategoryID, transaction.Type,
		transaction.Amount, transaction.Description, transaction.Date,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, transaction.UserID, id)
}

// GetByID retrieves an owned, non-deleted transaction by id
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+transactionJoin+`
		WHERE t.user_id = $1 AND t.id = $2 AND t.deleted_at IS NULL`,
		userID, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByUser retrieves the user's non-deleted transactions, newest date
// first, narrowed by the optional filters.
func (r *TransactionRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + transactionJoin + `
		WHERE t.user_id = $1 AND t.deleted_at IS NULL`
	args := []interface{}{userID}

	if filters != nil {
		if filters.StartDate != nil {
			args = append(args, *filters.StartDate)
			query += fmt.Sprintf(" AND t.date >= $%d", len(args))
		}
		if filters.EndDate != nil {
			args = append(args, *filters.EndDate)
			query += fmt.Sprintf(" AND t.date <= $%d", len(args))
		}
		if len(filters.CategoryIDs) > 0 {
			args = append(args, filters.CategoryIDs)
			query += fmt.Sprintf(" AND t.category_id = ANY($%d)", len(args))
		}
		if filters.Type != nil {
			args = append(args, *filters.Type)
			query += fmt.Sprintf(" AND t.type = $%d", len(args))
		}
		if filters.Search != nil && *filters.Search != "" {
			args = append(args, "%"+*filters.Search+"%")
			query += fmt.Sprintf(" AND t.description ILIKE $%d", len(args))
		}
	}

	query += " ORDER BY t.date DESC, t.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Update updates an owned transaction
func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		SET category_id = $3, type = $4, amount = $5, description = $6, date = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		transaction.UserID, transaction.ID, transaction.CategoryID,
		transaction.Type, transaction.Amount, transaction.Description, transaction.Date,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrTransactionNotFound
	}
	return r.GetByID(ctx, transaction.UserID, transaction.ID)
}

// SoftDelete sets the deletion timestamp on an owned transaction
func (r *TransactionRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SetReceiptPath stores or clears the receipt object path
func (r *TransactionRepository) SetReceiptPath(ctx context.Context, userID, id uuid.UUID, path *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET receipt_path = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id, path,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
