package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// ExternalHandler serves the API-key-gated surface. It reuses the
// session request/response shapes so integrations see the same wire
// format as the first-party client.
type ExternalHandler struct {
	transactionService *service.TransactionService
	categoryService    *service.CategoryService
}

// NewExternalHandler creates a new ExternalHandler
func NewExternalHandler(transactionService *service.TransactionService, categoryService *service.CategoryService) *ExternalHandler {
	return &ExternalHandler{
		transactionService: transactionService,
		categoryService:    categoryService,
	}
}

// CreateTransaction handles POST /api/external/v1/transactions
func (h *ExternalHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Invalid API key")
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
		log.Error().Err(err).Str("user_id", userID.String()).Str("key_id", middleware.GetAPIKeyID(c).String()).Msg("External transaction create failed")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("key_id", middleware.GetAPIKeyID(c).String()).
		Str("transaction_id", transaction.ID.String()).
		Msg("Transaction created via API key")
	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/external/v1/transactions
func (h *ExternalHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Invalid API key")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	transactions, err := h.transactionService.GetTransactions(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("External transaction list failed")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteTransaction handles DELETE /api/external/v1/transactions/:id
func (h *ExternalHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Invalid API key")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("External transaction delete failed")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("key_id", middleware.GetAPIKeyID(c).String()).
		Str("transaction_id", id.String()).
		Msg("Transaction deleted via API key")
	return c.NoContent(http.StatusNoContent)
}

// GetCategories handles GET /api/external/v1/categories
func (h *ExternalHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Invalid API key")
	}

	categories, err := h.categoryService.GetCategories(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("External category list failed")
		return NewInternalError(c, "Failed to get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, response)
}
