package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget CRUD and derived progress/alerts.
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateBudgetInput carries validated budget creation fields
type CreateBudgetInput struct {
	CategoryID            uuid.UUID
	Amount                decimal.Decimal
	StartDate             time.Time
	EndDate               time.Time
	NotificationThreshold *int
}

// CreateBudget validates and creates a budget for an expense category.
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, input CreateBudgetInput) (*domain.Budget, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if domain.DateOnly(input.EndDate).Before(domain.DateOnly(input.StartDate)) {
		return nil, domain.ErrInvalidDateRange
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != domain.CategoryTypeExpense {
		return nil, domain.ErrInvalidCategoryType
	}

	budget := &domain.Budget{
		UserID:                userID,
		CategoryID:            input.CategoryID,
		Amount:                input.Amount,
		StartDate:             domain.DateOnly(input.StartDate),
		EndDate:               domain.DateOnly(input.EndDate),
		NotificationThreshold: input.NotificationThreshold,
	}

	created, err := s.budgetRepo.Create(ctx, budget)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create budget")
		return nil, err
	}
	return created, nil
}

// UpdateBudget updates amount, dates and threshold of an owned budget.
func (s *BudgetService) UpdateBudget(ctx context.Context, userID, budgetID uuid.UUID, input CreateBudgetInput) (*domain.Budget, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if domain.DateOnly(input.EndDate).Before(domain.DateOnly(input.StartDate)) {
		return nil, domain.ErrInvalidDateRange
	}

	budget, err := s.budgetRepo.GetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != budget.CategoryID {
		category, err := s.categoryRepo.GetByID(ctx, userID, input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != domain.CategoryTypeExpense {
			return nil, domain.ErrInvalidCategoryType
		}
	}

	budget.CategoryID = input.CategoryID
	budget.Amount = input.Amount
	budget.StartDate = domain.DateOnly(input.StartDate)
	budget.EndDate = domain.DateOnly(input.EndDate)
	budget.NotificationThreshold = input.NotificationThreshold

	return s.budgetRepo.Update(ctx, budget)
}

// GetBudgets returns the user's budgets with joined category details.
func (s *BudgetService) GetBudgets(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(ctx, userID)
}

// DeleteBudget soft-deletes an owned budget.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	return s.budgetRepo.SoftDelete(ctx, userID, budgetID)
}

// Progress computes the derived state of one budget from a transaction
// snapshot. Pure. Transactions outside the budget window or in other
// categories never contribute; classification is not re-checked because
// the category is expense-typed by construction. A zero budget amount
// yields percentage 0 rather than dividing.
func Progress(budget *domain.Budget, transactions []*domain.Transaction) *domain.BudgetProgress {
	window := domain.DateRange{From: budget.StartDate, To: budget.EndDate}

	spent := decimal.Zero
	for _, t := range transactions {
		if t.CategoryID != budget.CategoryID || !window.Contains(t.Date) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	percentage := decimal.Zero
	if budget.Amount.IsPositive() {
		percentage = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100))
	}

	return &domain.BudgetProgress{
		BudgetID:     budget.ID,
		Spent:        spent,
		Remaining:    budget.Amount.Sub(spent),
		Percentage:   percentage,
		IsOverBudget: spent.GreaterThan(budget.Amount),
	}
}

// DeriveAlert returns the alert a budget's progress warrants, or nil when
// usage is below the threshold. Severity is danger once the budget is
// exceeded, warning otherwise.
func DeriveAlert(budget *domain.Budget, progress *domain.BudgetProgress) *domain.BudgetAlert {
	if progress.Percentage.LessThan(budget.Threshold()) {
		return nil
	}

	name := "Unknown"
	if budget.CategoryName != nil {
		name = *budget.CategoryName
	}

	severity := domain.AlertSeverityWarning
	state := "nearly reached"
	if progress.IsOverBudget {
		severity = domain.AlertSeverityDanger
		state = "exceeded"
	}

	return &domain.BudgetAlert{
		BudgetID:   budget.ID,
		Severity:   severity,
		Message:    fmt.Sprintf("%s budget is %s", name, state),
		Percentage: progress.Percentage,
	}
}

// GetProgress computes progress for a single owned budget. A missing
// budget surfaces as ErrBudgetNotFound, never as zeroed progress.
func (s *BudgetService) GetProgress(ctx context.Context, userID, budgetID uuid.UUID) (*domain.BudgetProgress, error) {
	budget, err := s.budgetRepo.GetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	return Progress(budget, transactions), nil
}

// GetAlerts recomputes alerts for every budget still running at now.
// Progress runs per budget over one shared snapshot, so no single budget
// can abort the batch.
func (s *BudgetService) GetAlerts(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.BudgetAlert, error) {
	budgets, err := s.budgetRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	alerts := make([]*domain.BudgetAlert, 0)
	for _, budget := range budgets {
		if domain.DateOnly(budget.EndDate).Before(domain.DateOnly(now)) {
			continue
		}
		alert := DeriveAlert(budget, Progress(budget, transactions))
		if alert != nil {
			alerts = append(alerts, alert)
		}
	}

	return alerts, nil
}
