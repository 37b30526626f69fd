package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `b.id, b.user_id, b.category_id, b.amount, b.start_date, b.end_date,
	b.notification_threshold, b.created_at, b.updated_at, b.deleted_at,
	c.name, c.type`

const budgetJoin = `budgets b
	LEFT JOIN categories c ON c.id = b.category_id AND c.deleted_at IS NULL`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.StartDate, &b.EndDate,
		&b.NotificationThreshold, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
		&b.CategoryName, &b.CategoryType,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create creates a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category_id, amount, start_date, end_date, notification_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		budget.UserID, budget.CategoryID, budget.Amount,
		budget.StartDate, budget.EndDate, budget.NotificationThreshold,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, budget.UserID, id)
}

// GetByID retrieves an owned, non-deleted budget with its category joined
func (r *BudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM `+budgetJoin+`
		WHERE b.user_id = $1 AND b.id = $2 AND b.deleted_at IS NULL`,
		userID, id,
	)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetAllByUser retrieves the user's non-deleted budgets, newest window first
func (r *BudgetRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM `+budgetJoin+`
		WHERE b.user_id = $1 AND b.deleted_at IS NULL
		ORDER BY b.start_date DESC, b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]*domain.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// Update updates an owned budget
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets
		SET category_id = $3, amount = $4, start_date = $5, end_date = $6,
			notification_threshold = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		budget.UserID, budget.ID, budget.CategoryID, budget.Amount,
		budget.StartDate, budget.EndDate, budget.NotificationThreshold,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}
	return r.GetByID(ctx, budget.UserID, budget.ID)
}

// SoftDelete sets the deletion timestamp on an owned budget
func (r *BudgetRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		userID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
