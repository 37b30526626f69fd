package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func timePtr(t time.Time) *time.Time { return &t }

func typePtr(t domain.TransactionType) *domain.TransactionType { return &t }

func TestFilterTransactions_NilFiltersPassEverything(t *testing.T) {
	food := uuid.New()
	transactions := []*domain.Transaction{
		expense(food, 10, date(2024, 1, 1)),
		income(food, 20, date(2024, 1, 2)),
	}

	filtered := FilterTransactions(transactions, nil)
	if len(filtered) != 2 {
		t.Errorf("Expected all transactions with nil filters, got %d", len(filtered))
	}
}

func TestFilterTransactions_DateBoundsInclusive(t *testing.T) {
	food := uuid.New()
	transactions := []*domain.Transaction{
		expense(food, 1, date(2024, 1, 9)),
		expense(food, 2, date(2024, 1, 10)),
		expense(food, 3, date(2024, 1, 15)),
		expense(food, 4, date(2024, 1, 20)),
		expense(food, 5, date(2024, 1, 21)),
	}

	filtered := FilterTransactions(transactions, &domain.TransactionFilters{
		StartDate: timePtr(date(2024, 1, 10)),
		EndDate:   timePtr(date(2024, 1, 20)),
	})

	if len(filtered) != 3 {
		t.Fatalf("Expected 3 transactions inside inclusive bounds, got %d", len(filtered))
	}
	if !filtered[0].Amount.Equal(decimal.NewFromInt(2)) || !filtered[2].Amount.Equal(decimal.NewFromInt(4)) {
		t.Error("Expected boundary-dated transactions to be included")
	}
}

func TestFilterTransactions_TimeOfDayIgnored(t *testing.T) {
	food := uuid.New()
	late := expense(food, 1, time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC))

	filtered := FilterTransactions([]*domain.Transaction{late}, &domain.TransactionFilters{
		EndDate: timePtr(date(2024, 1, 10)),
	})
	if len(filtered) != 1 {
		t.Error("Expected end-date comparison to ignore time of day")
	}
}

func TestFilterTransactions_CategorySet(t *testing.T) {
	food := uuid.New()
	transport := uuid.New()
	rent := uuid.New()
	transactions := []*domain.Transaction{
		expense(food, 1, date(2024, 1, 1)),
		expense(transport, 2, date(2024, 1, 2)),
		expense(rent, 3, date(2024, 1, 3)),
	}

	filtered := FilterTransactions(transactions, &domain.TransactionFilters{
		CategoryIDs: []uuid.UUID{food, rent},
	})

	if len(filtered) != 2 {
		t.Fatalf("Expected 2 transactions for the category set, got %d", len(filtered))
	}
	for _, tr := range filtered {
		if tr.CategoryID == transport {
			t.Error("Expected transport to be filtered out")
		}
	}
}

func TestFilterTransactions_SearchCaseInsensitive(t *testing.T) {
	food := uuid.New()
	groceries := expense(food, 1, date(2024, 1, 1))
	groceries.Description = strPtr("Weekly GROCERIES run")
	coffee := expense(food, 2, date(2024, 1, 2))
	coffee.Description = strPtr("coffee")
	blank := expense(food, 3, date(2024, 1, 3))

	filtered := FilterTransactions([]*domain.Transaction{groceries, coffee, blank}, &domain.TransactionFilters{
		Search: strPtr("groceries"),
	})

	if len(filtered) != 1 {
		t.Fatalf("Expected 1 search match, got %d", len(filtered))
	}
	if filtered[0].ID != groceries.ID {
		t.Error("Expected the groceries transaction to match")
	}
}

func TestFilterTransactions_AllCriteriaAnded(t *testing.T) {
	food := uuid.New()
	transport := uuid.New()

	match := expense(food, 10, date(2024, 1, 15))
	match.Description = strPtr("lunch at work")

	wrongDate := expense(food, 11, date(2024, 2, 15))
	wrongDate.Description = strPtr("lunch again")

	wrongCategory := expense(transport, 12, date(2024, 1, 15))
	wrongCategory.Description = strPtr("lunch commute")

	wrongType := income(food, 13, date(2024, 1, 15))
	wrongType.Description = strPtr("lunch reimbursement")

	wrongSearch := expense(food, 14, date(2024, 1, 15))
	wrongSearch.Description = strPtr("dinner")

	filtered := FilterTransactions(
		[]*domain.Transaction{match, wrongDate, wrongCategory, wrongType, wrongSearch},
		&domain.TransactionFilters{
			StartDate:   timePtr(date(2024, 1, 1)),
			EndDate:     timePtr(date(2024, 1, 31)),
			CategoryIDs: []uuid.UUID{food},
			Type:        typePtr(domain.TransactionTypeExpense),
			Search:      strPtr("lunch"),
		},
	)

	if len(filtered) != 1 {
		t.Fatalf("Expected exactly 1 transaction to satisfy every criterion, got %d", len(filtered))
	}
	if filtered[0].ID != match.ID {
		t.Error("Expected only the fully matching transaction to survive")
	}
}

func TestBuildSummary_TotalsAndSavingsRate(t *testing.T) {
	salary := uuid.New()
	food := uuid.New()
	transactions := []*domain.Transaction{
		income(salary, 1000, date(2024, 1, 1)),
		expense(food, 250, date(2024, 1, 10)),
		expense(food, 150, date(2024, 1, 20)),
	}

	summary := BuildSummary(transactions)

	if !summary.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected income 1000, got %s", summary.TotalIncome)
	}
	if !summary.TotalExpense.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected expense 400, got %s", summary.TotalExpense)
	}
	if !summary.SavingsRate.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected savings rate 60, got %s", summary.SavingsRate)
	}
}

func TestBuildSummary_ZeroIncomeSavingsRate(t *testing.T) {
	food := uuid.New()
	summary := BuildSummary([]*domain.Transaction{expense(food, 100, date(2024, 1, 1))})

	if !summary.SavingsRate.IsZero() {
		t.Errorf("Expected savings rate 0 with no income, got %s", summary.SavingsRate)
	}
}

func TestBuildSummary_NegativeSavingsRate(t *testing.T) {
	salary := uuid.New()
	food := uuid.New()
	summary := BuildSummary([]*domain.Transaction{
		income(salary, 100, date(2024, 1, 1)),
		expense(food, 150, date(2024, 1, 2)),
	})

	if !summary.SavingsRate.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Expected savings rate -50 when overspending, got %s", summary.SavingsRate)
	}
}

func TestGetSummary_FiltersBeforeAggregating(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewReportService(transactionRepo)

	jan := expense(food, 100, date(2024, 1, 10))
	jan.UserID = userID
	feb := expense(food, 200, date(2024, 2, 10))
	feb.UserID = userID
	transactionRepo.AddTransaction(jan)
	transactionRepo.AddTransaction(feb)

	summary, err := svc.GetSummary(context.Background(), userID, &domain.TransactionFilters{
		StartDate: timePtr(date(2024, 1, 1)),
		EndDate:   timePtr(date(2024, 1, 31)),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.TotalExpense.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected only January's expense in the summary, got %s", summary.TotalExpense)
	}
	if len(summary.MonthlyTrends) != 1 {
		t.Errorf("Expected a single trend month, got %d", len(summary.MonthlyTrends))
	}
}
