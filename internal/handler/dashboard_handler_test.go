package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/pennywise-app/pennywise-backend/internal/testutil"
)

func newDashboardHandler() (*DashboardHandler, *testutil.MockTransactionRepository, *testutil.MockBudgetRepository, *testutil.MockCategoryRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo.Categories = categoryRepo
	dashboardService := service.NewDashboardService(transactionRepo, budgetRepo)
	return NewDashboardHandler(dashboardService), transactionRepo, budgetRepo, categoryRepo
}

func TestDashboardGetSummary_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, budgetRepo, categoryRepo := newDashboardHandler()

	userID := uuid.New()
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)

	transactionRepo.AddTransaction(testTransaction(userID, food.ID, 50, testDate(2024, 1, 10)))
	transactionRepo.AddTransaction(testTransaction(userID, food.ID, 30, testDate(2024, 1, 12)))

	budget := testBudget(userID, food.ID, 100, testDate(2024, 1, 1), testDate(2024, 1, 31))
	budgetRepo.AddBudget(budget)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?startDate=2024-01-01&endDate=2024-01-31", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response DashboardSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Periods.Period != "80.00" {
		t.Errorf("Expected period total '80.00', got %s", response.Periods.Period)
	}
	if len(response.DailyTotals) != 2 {
		t.Errorf("Expected 2 daily buckets, got %d", len(response.DailyTotals))
	}
	if daily, ok := response.DailyTotals["2024-01-10"]; !ok {
		t.Error("Expected a bucket for 2024-01-10")
	} else if daily.TotalAmount != "50.00" {
		t.Errorf("Expected daily total '50.00', got %s", daily.TotalAmount)
	}
	if response.CategoryTotals[food.ID.String()] != "80.00" {
		t.Errorf("Expected category total '80.00', got %s", response.CategoryTotals[food.ID.String()])
	}
	if response.ActiveBudgets != 1 {
		t.Errorf("Expected 1 active budget, got %d", response.ActiveBudgets)
	}
	if response.BudgetsNearLimit != 1 {
		t.Errorf("Expected 1 budget near its limit, got %d", response.BudgetsNearLimit)
	}
	if len(response.RecentTransactions) != 2 {
		t.Errorf("Expected 2 recent transactions, got %d", len(response.RecentTransactions))
	}
}

func TestDashboardGetSummary_InvalidRange(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newDashboardHandler()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?startDate=2024-02-01&endDate=2024-01-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDashboardGetSummary_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newDashboardHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
