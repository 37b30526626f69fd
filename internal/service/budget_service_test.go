package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newBudget(userID, categoryID uuid.UUID, amount int64, from, to time.Time) *domain.Budget {
	return &domain.Budget{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.NewFromInt(amount),
		StartDate:  from,
		EndDate:    to,
	}
}

func TestProgress_SumsOnlyWindowedCategoryExpenses(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	other := uuid.New()
	budget := newBudget(userID, food, 500, date(2024, 1, 1), date(2024, 1, 31))

	transactions := []*domain.Transaction{
		expense(food, 100, date(2024, 1, 10)),
		expense(food, 150, date(2024, 1, 31)),  // end date inclusive
		expense(food, 999, date(2024, 2, 1)),   // outside window
		expense(other, 300, date(2024, 1, 15)), // other category
	}

	progress := Progress(budget, transactions)

	if !progress.Spent.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected spent 250, got %s", progress.Spent)
	}
	if !progress.Remaining.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected remaining 250, got %s", progress.Remaining)
	}
	if !progress.Percentage.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected percentage 50, got %s", progress.Percentage)
	}
	if progress.IsOverBudget {
		t.Error("Expected budget not over")
	}
}

func TestProgress_Idempotent(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	transactions := []*domain.Transaction{expense(food, 40, date(2024, 1, 5))}

	first := Progress(budget, transactions)
	second := Progress(budget, transactions)

	if !first.Spent.Equal(second.Spent) || !first.Percentage.Equal(second.Percentage) {
		t.Error("Expected identical progress on repeated computation")
	}
}

func TestProgress_ZeroAmountBudget(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 0, date(2024, 1, 1), date(2024, 1, 31))
	transactions := []*domain.Transaction{expense(food, 40, date(2024, 1, 5))}

	progress := Progress(budget, transactions)

	if !progress.Percentage.IsZero() {
		t.Errorf("Expected percentage 0 for zero-amount budget, got %s", progress.Percentage)
	}
	if !progress.IsOverBudget {
		t.Error("Expected zero-amount budget with spending to be over budget")
	}
}

func TestProgress_OverBudget(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	transactions := []*domain.Transaction{expense(food, 120, date(2024, 1, 5))}

	progress := Progress(budget, transactions)

	if !progress.IsOverBudget {
		t.Error("Expected over-budget flag")
	}
	if !progress.Remaining.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("Expected remaining -20, got %s", progress.Remaining)
	}
	if !progress.Percentage.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected percentage 120, got %s", progress.Percentage)
	}
}

func TestDeriveAlert_BelowThresholdIsNil(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	budget.CategoryName = strPtr("Food")

	progress := Progress(budget, []*domain.Transaction{expense(food, 79, date(2024, 1, 5))})
	if alert := DeriveAlert(budget, progress); alert != nil {
		t.Errorf("Expected no alert at 79%%, got %+v", alert)
	}
}

func TestDeriveAlert_WarningAtDefaultThreshold(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	budget.CategoryName = strPtr("Food")

	progress := Progress(budget, []*domain.Transaction{expense(food, 85, date(2024, 1, 5))})
	alert := DeriveAlert(budget, progress)

	if alert == nil {
		t.Fatal("Expected alert at 85% with default threshold 80")
	}
	if alert.Severity != domain.AlertSeverityWarning {
		t.Errorf("Expected warning severity, got %s", alert.Severity)
	}
	if alert.Message != "Food budget is nearly reached" {
		t.Errorf("Unexpected message: %q", alert.Message)
	}
}

func TestDeriveAlert_DangerWhenExceeded(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	budget.CategoryName = strPtr("Food")

	progress := Progress(budget, []*domain.Transaction{expense(food, 101, date(2024, 1, 5))})
	alert := DeriveAlert(budget, progress)

	if alert == nil {
		t.Fatal("Expected alert when over budget")
	}
	if alert.Severity != domain.AlertSeverityDanger {
		t.Errorf("Expected danger severity, got %s", alert.Severity)
	}
	if alert.Message != "Food budget is exceeded" {
		t.Errorf("Unexpected message: %q", alert.Message)
	}
}

func TestDeriveAlert_CustomThreshold(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budget := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	budget.NotificationThreshold = intPtr(50)
	budget.CategoryName = strPtr("Food")

	progress := Progress(budget, []*domain.Transaction{expense(food, 50, date(2024, 1, 5))})
	if alert := DeriveAlert(budget, progress); alert == nil {
		t.Error("Expected alert at exactly the configured threshold")
	}
}

func TestCreateBudget_RejectsIncomeCategory(t *testing.T) {
	userID := uuid.New()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewBudgetService(budgetRepo, categoryRepo, transactionRepo)

	salary := &domain.Category{ID: uuid.New(), UserID: userID, Name: "Salary", Type: domain.CategoryTypeIncome}
	categoryRepo.AddCategory(salary)

	_, err := svc.CreateBudget(context.Background(), userID, CreateBudgetInput{
		CategoryID: salary.ID,
		Amount:     decimal.NewFromInt(100),
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 31),
	})
	if !errors.Is(err, domain.ErrInvalidCategoryType) {
		t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestCreateBudget_RejectsInvertedDates(t *testing.T) {
	userID := uuid.New()
	svc := NewBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := svc.CreateBudget(context.Background(), userID, CreateBudgetInput{
		CategoryID: uuid.New(),
		Amount:     decimal.NewFromInt(100),
		StartDate:  date(2024, 2, 1),
		EndDate:    date(2024, 1, 1),
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestGetProgress_MissingBudgetSurfacesNotFound(t *testing.T) {
	userID := uuid.New()
	svc := NewBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	_, err := svc.GetProgress(context.Background(), userID, uuid.New())
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Errorf("Expected ErrBudgetNotFound, got %v", err)
	}
}

func TestGetAlerts_SkipsEndedBudgets(t *testing.T) {
	userID := uuid.New()
	food := uuid.New()
	budgetRepo := testutil.NewMockBudgetRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewBudgetService(budgetRepo, testutil.NewMockCategoryRepository(), transactionRepo)

	ended := newBudget(userID, food, 100, date(2023, 12, 1), date(2023, 12, 31))
	ended.CategoryName = strPtr("Food")
	budgetRepo.AddBudget(ended)

	running := newBudget(userID, food, 100, date(2024, 1, 1), date(2024, 1, 31))
	running.CategoryName = strPtr("Food")
	budgetRepo.AddBudget(running)

	transactionRepo.AddTransaction(&domain.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: food,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(90),
		Date:       date(2024, 1, 10),
	})
	// Would have tripped the ended budget too.
	transactionRepo.AddTransaction(&domain.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: food,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(90),
		Date:       date(2023, 12, 10),
	})

	alerts, err := svc.GetAlerts(context.Background(), userID, date(2024, 1, 15))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].BudgetID != running.ID {
		t.Error("Expected alert for the running budget only")
	}
}

func TestGetAlerts_EmptyWhenNothingTrips(t *testing.T) {
	userID := uuid.New()
	svc := NewBudgetService(testutil.NewMockBudgetRepository(), testutil.NewMockCategoryRepository(), testutil.NewMockTransactionRepository())

	alerts, err := svc.GetAlerts(context.Background(), userID, date(2024, 1, 15))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %d", len(alerts))
	}
}
