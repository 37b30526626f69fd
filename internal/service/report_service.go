package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportService builds filtered report summaries.
type ReportService struct {
	transactionRepo domain.TransactionRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{transactionRepo: transactionRepo}
}

// FilterTransactions applies the provided criteria with logical AND.
// Unset criteria impose no constraint; date bounds are inclusive. Search
// matches the description case-insensitively. Pure: the input slice is
// never mutated.
func FilterTransactions(transactions []*domain.Transaction, filters *domain.TransactionFilters) []*domain.Transaction {
	if filters == nil {
		return transactions
	}

	var categorySet map[uuid.UUID]struct{}
	if len(filters.CategoryIDs) > 0 {
		categorySet = make(map[uuid.UUID]struct{}, len(filters.CategoryIDs))
		for _, id := range filters.CategoryIDs {
			categorySet[id] = struct{}{}
		}
	}

	filtered := make([]*domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		date := domain.DateOnly(t.Date)
		if filters.StartDate != nil && date.Before(domain.DateOnly(*filters.StartDate)) {
			continue
		}
		if filters.EndDate != nil && date.After(domain.DateOnly(*filters.EndDate)) {
			continue
		}
		if categorySet != nil {
			if _, ok := categorySet[t.CategoryID]; !ok {
				continue
			}
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		if filters.Search != nil && *filters.Search != "" {
			if t.Description == nil || !strings.Contains(strings.ToLower(*t.Description), strings.ToLower(*filters.Search)) {
				continue
			}
		}
		filtered = append(filtered, t)
	}

	return filtered
}

// BuildSummary aggregates an already-filtered transaction set into a
// report summary. Savings rate is (income-expense)/income*100, 0 when
// income is zero.
func BuildSummary(transactions []*domain.Transaction) *domain.ReportSummary {
	totalIncome := decimal.Zero
	totalExpense := decimal.Zero

	for _, t := range transactions {
		switch t.Type {
		case domain.TransactionTypeIncome:
			totalIncome = totalIncome.Add(t.Amount)
		case domain.TransactionTypeExpense:
			totalExpense = totalExpense.Add(t.Amount)
		}
	}

	savingsRate := decimal.Zero
	if totalIncome.IsPositive() {
		savingsRate = totalIncome.Sub(totalExpense).Div(totalIncome).Mul(decimal.NewFromInt(100))
	}

	return &domain.ReportSummary{
		TotalIncome:   totalIncome,
		TotalExpense:  totalExpense,
		SavingsRate:   savingsRate,
		TopIncome:     TopCategories(transactions, domain.TransactionTypeIncome, DefaultTopCategoryLimit),
		TopExpense:    TopCategories(transactions, domain.TransactionTypeExpense, DefaultTopCategoryLimit),
		MonthlyTrends: MonthlyTrend(transactions),
	}
}

// GetSummary fetches the user's transactions, applies the filters and
// returns the report summary.
func (s *ReportService) GetSummary(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.ReportSummary, error) {
	transactions, err := s.transactionRepo.GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	// The repository already applies the filters; re-applying keeps the
	// contract honest for repositories that only scope by owner.
	return BuildSummary(FilterTransactions(transactions, filters)), nil
}
