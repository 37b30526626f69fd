package handler

import (
	"context"
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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	budgetService      *service.BudgetService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, budgetService *service.BudgetService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		budgetService:      budgetService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	CategoryID  string  `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID           string  `json:"id"`
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Type         string  `json:"type"`
	Amount       string  `json:"amount"`
	Description  *string `json:"description,omitempty"`
	Date         string  `json:"date"`
	HasReceipt   bool    `json:"hasReceipt"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := parseTransactionInput(req)
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	resp := toTransactionResponse(transaction)
	h.publisher.Publish(userID, websocket.TransactionCreated(resp))
	if transaction.Type == domain.TransactionTypeExpense {
		h.publishBudgetAlerts(c.Request().Context(), userID)
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", transaction.ID.String()).Msg("Transaction created")
	return c.JSON(http.StatusCreated, resp)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	transactions, err := h.transactionService.GetTransactions(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := parseTransactionInput(req)
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	resp := toTransactionResponse(transaction)
	h.publisher.Publish(userID, websocket.TransactionUpdated(resp))
	if transaction.Type == domain.TransactionTypeExpense {
		h.publishBudgetAlerts(c.Request().Context(), userID)
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction updated")
	return c.JSON(http.StatusOK, resp)
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	h.publisher.Publish(userID, websocket.TransactionDeleted(map[string]string{"id": id.String()}))

	return c.NoContent(http.StatusNoContent)
}

// publishBudgetAlerts recomputes the caller's budget alerts after new
// spend lands and pushes each tripped one to their connected clients.
func (h *TransactionHandler) publishBudgetAlerts(ctx context.Context, userID uuid.UUID) {
	alerts, err := h.budgetService.GetAlerts(ctx, userID, time.Now())
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to compute budget alerts for push")
		return
	}
	for _, alert := range alerts {
		h.publisher.Publish(userID, websocket.BudgetAlertRaised(BudgetAlertResponse{
			BudgetID:   alert.BudgetID.String(),
			Severity:   string(alert.Severity),
			Message:    alert.Message,
			Percentage: alert.Percentage.StringFixed(2),
		}))
	}
}

// parseTransactionInput converts a request body into a service input,
// returning field-keyed validation errors for anything malformed.
func parseTransactionInput(req CreateTransactionRequest) (service.CreateTransactionInput, []ValidationError) {
	var errs []ValidationError

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "Must be a valid category ID"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	}

	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"})
	}

	if errs != nil {
		return service.CreateTransactionInput{}, errs
	}

	return service.CreateTransactionInput{
		CategoryID:  categoryID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Date:        date,
	}, nil
}

// transactionValidationResponse maps service validation errors to 400
// responses. Returns nil for errors the caller must handle itself.
func transactionValidationResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidTransactionType) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: INCOME, EXPENSE"},
		})
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	}
	if errors.Is(err, domain.ErrDescriptionTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 500 characters or less"},
		})
	}
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		})
	}
	if errors.Is(err, domain.ErrCategoryTypeMismatch) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Transaction type must match category type"},
		})
	}
	return nil
}

// parseTransactionFilters reads the optional filter query params.
func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("startDate"); v != "" {
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return nil, errors.New("Invalid startDate format (use YYYY-MM-DD)")
		}
		filters.StartDate = &parsed
	}

	if v := c.QueryParam("endDate"); v != "" {
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return nil, errors.New("Invalid endDate format (use YYYY-MM-DD)")
		}
		filters.EndDate = &parsed
	}

	for _, v := range c.QueryParams()["categoryId"] {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New("Invalid categoryId")
		}
		filters.CategoryIDs = append(filters.CategoryIDs, id)
	}

	if v := c.QueryParam("type"); v != "" {
		transactionType := domain.TransactionType(v)
		if !transactionType.Valid() {
			return nil, errors.New("Invalid type (must be 'INCOME' or 'EXPENSE')")
		}
		filters.Type = &transactionType
	}

	if v := c.QueryParam("search"); v != "" {
		filters.Search = &v
	}

	return filters, nil
}

// Helper function to convert domain.Transaction to TransactionResponse
func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           transaction.ID.String(),
		CategoryID:   transaction.CategoryID.String(),
		CategoryName: "Unknown",
		Type:         string(transaction.Type),
		Amount:       transaction.Amount.StringFixed(2),
		Description:  transaction.Description,
		Date:         transaction.Date.Format(domain.DateLayout),
		HasReceipt:   transaction.ReceiptPath != nil,
		CreatedAt:    transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.Category != nil {
		resp.CategoryName = transaction.Category.Name
	}
	return resp
}
