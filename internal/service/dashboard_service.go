package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// recentTransactionLimit caps the dashboard's recent-transactions list.
const recentTransactionLimit = 5

// DashboardService assembles the dashboard summary from one transaction
// snapshot plus the budget list.
type DashboardService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(transactionRepo domain.TransactionRepository, budgetRepo domain.BudgetRepository) *DashboardService {
	return &DashboardService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
	}
}

// GetSummary builds the dashboard for the selected range. now anchors the
// today/this-week totals independently of the range. Budget counting
// tolerates a failed budget fetch: the widgets degrade to zero counts
// rather than failing the whole summary.
func (s *DashboardService) GetSummary(ctx context.Context, userID uuid.UUID, r domain.DateRange, now time.Time) (*domain.DashboardSummary, error) {
	transactions, err := s.transactionRepo.GetByUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Periods:            PeriodTotals(transactions, now, r),
		DailyTotals:        DailyTotals(transactions, r),
		CategoryTotals:     CategoryTotals(transactions, r, domain.TransactionTypeExpense),
		RecentTransactions: RecentTransactions(transactions, r, recentTransactionLimit),
	}

	budgets, err := s.budgetRepo.GetAllByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to fetch budgets for dashboard")
		return summary, nil
	}

	for _, budget := range budgets {
		summary.ActiveBudgets++
		progress := Progress(budget, transactions)
		if progress.Percentage.GreaterThanOrEqual(budget.Threshold()) {
			summary.BudgetsNearLimit++
		}
	}

	return summary, nil
}
