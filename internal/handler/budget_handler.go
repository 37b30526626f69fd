package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/pennywise-app/pennywise-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	publisher     websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, publisher websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		publisher:     publisher,
	}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	CategoryID            string `json:"categoryId"`
	Amount                string `json:"amount"`
	StartDate             string `json:"startDate"`
	EndDate               string `json:"endDate"`
	NotificationThreshold *int   `json:"notificationThreshold,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID                    string  `json:"id"`
	CategoryID            string  `json:"categoryId"`
	CategoryName          *string `json:"categoryName,omitempty"`
	Amount                string  `json:"amount"`
	StartDate             string  `json:"startDate"`
	EndDate               string  `json:"endDate"`
	NotificationThreshold int     `json:"notificationThreshold"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

// BudgetProgressResponse represents derived budget progress in API responses
type BudgetProgressResponse struct {
	BudgetID     string `json:"budgetId"`
	Spent        string `json:"spent"`
	Remaining    string `json:"remaining"`
	Percentage   string `json:"percentage"`
	IsOverBudget bool   `json:"isOverBudget"`
}

// BudgetAlertResponse represents a budget alert in API responses
type BudgetAlertResponse struct {
	BudgetID   string `json:"budgetId"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Percentage string `json:"percentage"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := parseBudgetInput(req)
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), userID, input)
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	resp := toBudgetResponse(budget)
	h.publisher.Publish(userID, websocket.BudgetUpdated(resp))

	log.Info().Str("user_id", userID.String()).Str("budget_id", budget.ID.String()).Msg("Budget created")
	return c.JSON(http.StatusCreated, resp)
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := parseBudgetInput(req)
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("budget_id", id.String()).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	resp := toBudgetResponse(budget)
	h.publisher.Publish(userID, websocket.BudgetUpdated(resp))

	log.Info().Str("user_id", userID.String()).Str("budget_id", id.String()).Msg("Budget updated")
	return c.JSON(http.StatusOK, resp)
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("budget_id", id.String()).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	log.Info().Str("user_id", userID.String()).Str("budget_id", id.String()).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetProgress handles GET /api/v1/budgets/:id/progress
func (h *BudgetHandler) GetProgress(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	progress, err := h.budgetService.GetProgress(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("budget_id", id.String()).Msg("Failed to compute budget progress")
		return NewInternalError(c, "Failed to compute budget progress")
	}

	return c.JSON(http.StatusOK, toBudgetProgressResponse(progress))
}

// GetAlerts handles GET /api/v1/budgets/alerts
func (h *BudgetHandler) GetAlerts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	alerts, err := h.budgetService.GetAlerts(c.Request().Context(), userID, time.Now())
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute budget alerts")
		return NewInternalError(c, "Failed to compute budget alerts")
	}

	response := make([]BudgetAlertResponse, len(alerts))
	for i, alert := range alerts {
		response[i] = BudgetAlertResponse{
			BudgetID:   alert.BudgetID.String(),
			Severity:   string(alert.Severity),
			Message:    alert.Message,
			Percentage: alert.Percentage.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// parseBudgetInput converts a request body into a service input,
// returning field-keyed validation errors for anything malformed.
func parseBudgetInput(req CreateBudgetRequest) (service.CreateBudgetInput, []ValidationError) {
	var errs []ValidationError

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "Must be a valid category ID"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	}

	startDate, err := time.Parse(domain.DateLayout, req.StartDate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"})
	}

	endDate, err := time.Parse(domain.DateLayout, req.EndDate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "endDate", Message: "Must be in YYYY-MM-DD format"})
	}

	if req.NotificationThreshold != nil && (*req.NotificationThreshold < 1 || *req.NotificationThreshold > 100) {
		errs = append(errs, ValidationError{Field: "notificationThreshold", Message: "Must be between 1 and 100"})
	}

	if errs != nil {
		return service.CreateBudgetInput{}, errs
	}

	return service.CreateBudgetInput{
		CategoryID:            categoryID,
		Amount:                amount,
		StartDate:             startDate,
		EndDate:               endDate,
		NotificationThreshold: req.NotificationThreshold,
	}, nil
}

// budgetValidationResponse maps service validation errors to 400
// responses. Returns nil for errors the caller must handle itself.
func budgetValidationResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	}
	if errors.Is(err, domain.ErrInvalidDateRange) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not precede start date"},
		})
	}
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		})
	}
	if errors.Is(err, domain.ErrInvalidCategoryType) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Budgets require an expense category"},
		})
	}
	return nil
}

// Helper function to convert domain.Budget to BudgetResponse
func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	threshold := domain.DefaultBudgetThreshold
	if budget.NotificationThreshold != nil {
		threshold = *budget.NotificationThreshold
	}
	return BudgetResponse{
		ID:                    budget.ID.String(),
		CategoryID:            budget.CategoryID.String(),
		CategoryName:          budget.CategoryName,
		Amount:                budget.Amount.StringFixed(2),
		StartDate:             budget.StartDate.Format(domain.DateLayout),
		EndDate:               budget.EndDate.Format(domain.DateLayout),
		NotificationThreshold: threshold,
		CreatedAt:             budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             budget.UpdatedAt.Format(time.RFC3339),
	}
}

// Helper function to convert domain.BudgetProgress to BudgetProgressResponse
func toBudgetProgressResponse(progress *domain.BudgetProgress) BudgetProgressResponse {
	return BudgetProgressResponse{
		BudgetID:     progress.BudgetID.String(),
		Spent:        progress.Spent.StringFixed(2),
		Remaining:    progress.Remaining.StringFixed(2),
		Percentage:   progress.Percentage.StringFixed(2),
		IsOverBudget: progress.IsOverBudget,
	}
}
