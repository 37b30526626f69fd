package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/pennywise-app/pennywise-backend/internal/testutil"
)

func newTransactionHandler(publisher *recordingPublisher) (*TransactionHandler, *testutil.MockTransactionRepository, *testutil.MockCategoryRepository, *testutil.MockBudgetRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	transactionRepo.Categories = categoryRepo
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, transactionRepo)
	return NewTransactionHandler(transactionService, budgetService, publisher), transactionRepo, categoryRepo, budgetRepo
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	publisher := &recordingPublisher{}
	handler, _, categoryRepo, _ := newTransactionHandler(publisher)

	userID := uuid.New()
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)

	body := `{"categoryId":"` + food.ID.String() + `","type":"EXPENSE","amount":"12.50","description":"lunch","date":"2024-01-15"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "12.50" {
		t.Errorf("Expected amount '12.50', got %s", response.Amount)
	}
	if response.CategoryName != "Food" {
		t.Errorf("Expected category name 'Food', got %s", response.CategoryName)
	}
	if response.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got %s", response.Date)
	}

	events := publisher.Events()
	if len(events) != 1 || events[0].Type != "transaction.created" {
		t.Errorf("Expected a transaction.created event, got %+v", events)
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newTransactionHandler(&recordingPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestCreateTransaction_MalformedFields(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newTransactionHandler(&recordingPublisher{})
	userID := uuid.New()

	body := `{"categoryId":"not-a-uuid","type":"EXPENSE","amount":"abc","date":"15/01/2024"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) != 3 {
		t.Errorf("Expected 3 field errors, got %d", len(problem.Errors))
	}
	fields := make(map[string]bool)
	for _, fieldErr := range problem.Errors {
		fields[fieldErr.Field] = true
	}
	for _, field := range []string{"categoryId", "amount", "date"} {
		if !fields[field] {
			t.Errorf("Expected a field error for %s", field)
		}
	}
}

func TestCreateTransaction_CategoryTypeMismatch(t *testing.T) {
	e := echo.New()
	handler, _, categoryRepo, _ := newTransactionHandler(&recordingPublisher{})

	userID := uuid.New()
	salary := testCategory(userID, "Salary", domain.CategoryTypeIncome)
	categoryRepo.AddCategory(salary)

	body := `{"categoryId":"` + salary.ID.String() + `","type":"EXPENSE","amount":"10.00","date":"2024-01-15"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "type" {
		t.Errorf("Expected a single 'type' field error, got %+v", problem.Errors)
	}
}

func TestGetTransactions_FiltersApplied(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, categoryRepo, _ := newTransactionHandler(&recordingPublisher{})

	userID := uuid.New()
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	transport := testCategory(userID, "Transport", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)
	categoryRepo.AddCategory(transport)

	transactionRepo.AddTransaction(testTransaction(userID, food.ID, 10, testDate(2024, 1, 10)))
	transactionRepo.AddTransaction(testTransaction(userID, transport.ID, 20, testDate(2024, 1, 11)))
	transactionRepo.AddTransaction(testTransaction(userID, food.ID, 30, testDate(2024, 2, 10)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?startDate=2024-01-01&endDate=2024-01-31&categoryId="+food.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 filtered transaction, got %d", len(response))
	}
	if response[0].Amount != "10.00" {
		t.Errorf("Expected the January food transaction, got amount %s", response[0].Amount)
	}
}

func TestGetTransactions_InvalidDateFilter(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newTransactionHandler(&recordingPublisher{})
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?startDate=01-15-2024", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newTransactionHandler(&recordingPublisher{})
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	setupUserContext(c, userID)

	if err := handler.GetTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteTransaction_Success(t *testing.T) {
	e := echo.New()
	publisher := &recordingPublisher{}
	handler, transactionRepo, categoryRepo, _ := newTransactionHandler(publisher)

	userID := uuid.New()
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)
	transaction := testTransaction(userID, food.ID, 10, testDate(2024, 1, 10))
	transactionRepo.AddTransaction(transaction)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+transaction.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(transaction.ID.String())
	setupUserContext(c, userID)

	if err := handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Error("Expected empty body on delete")
	}

	events := publisher.Events()
	if len(events) != 1 || events[0].Type != "transaction.deleted" {
		t.Errorf("Expected a transaction.deleted event, got %+v", events)
	}
}

func TestCreateTransaction_PushesBudgetAlert(t *testing.T) {
	e := echo.New()
	publisher := &recordingPublisher{}
	handler, _, categoryRepo, budgetRepo := newTransactionHandler(publisher)

	userID := uuid.New()
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)

	now := time.Now()
	budget := testBudget(userID, food.ID, 100, now.AddDate(0, 0, -10), now.AddDate(0, 0, 10))
	budgetRepo.AddBudget(budget)

	body := `{"categoryId":"` + food.ID.String() + `","type":"EXPENSE","amount":"90.00","date":"` + now.Format(domain.DateLayout) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	events := publisher.Events()
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %+v", events)
	}
	if events[0].Type != "transaction.created" {
		t.Errorf("Expected first event transaction.created, got %s", events[0].Type)
	}
	if events[1].Type != "budget_alert.raised" {
		t.Errorf("Expected second event budget_alert.raised, got %s", events[1].Type)
	}
	alert, ok := events[1].Payload.(BudgetAlertResponse)
	if !ok {
		t.Fatalf("Expected BudgetAlertResponse payload, got %T", events[1].Payload)
	}
	if alert.BudgetID != budget.ID.String() {
		t.Errorf("Expected alert for budget %s, got %s", budget.ID, alert.BudgetID)
	}
	if alert.Severity != "warning" {
		t.Errorf("Expected warning severity at 90%%, got %s", alert.Severity)
	}
}

func TestCreateTransaction_IncomeSkipsBudgetAlerts(t *testing.T) {
	e := echo.New()
	publisher := &recordingPublisher{}
	handler, _, categoryRepo, budgetRepo := newTransactionHandler(publisher)

	userID := uuid.New()
	salary := testCategory(userID, "Salary", domain.CategoryTypeIncome)
	food := testCategory(userID, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(salary)
	categoryRepo.AddCategory(food)

	now := time.Now()
	budgetRepo.AddBudget(testBudget(userID, food.ID, 100, now.AddDate(0, 0, -10), now.AddDate(0, 0, 10)))

	body := `{"categoryId":"` + salary.ID.String() + `","type":"INCOME","amount":"500.00","date":"` + now.Format(domain.DateLayout) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	events := publisher.Events()
	if len(events) != 1 || events[0].Type != "transaction.created" {
		t.Errorf("Expected only a transaction.created event, got %+v", events)
	}
}

func TestDeleteTransaction_OtherUsers(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, categoryRepo, _ := newTransactionHandler(&recordingPublisher{})

	owner := uuid.New()
	food := testCategory(owner, "Food", domain.CategoryTypeExpense)
	categoryRepo.AddCategory(food)
	transaction := testTransaction(owner, food.ID, 10, testDate(2024, 1, 10))
	transactionRepo.AddTransaction(transaction)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/transactions/"+transaction.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(transaction.ID.String())
	setupUserContext(c, uuid.New())

	if err := handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for foreign delete, got %d", rec.Code)
	}
}
