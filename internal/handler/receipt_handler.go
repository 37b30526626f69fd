package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles receipt upload/download HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptURLResponse carries a temporary download URL
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

// UploadReceipt handles POST /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "receipt", Message: "Receipt file is required"},
		})
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "receipt", Message: "File too large. Maximum size is 5MB"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to open receipt upload")
		return NewInternalError(c, "Failed to read receipt")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to read receipt upload")
		return NewInternalError(c, "Failed to read receipt")
	}

	transaction, err := h.receiptService.Attach(c.Request().Context(), userID, id, data, fileHeader.Filename)
	if err != nil {
		if resp := receiptErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Receipt attached")
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// GetReceiptURL handles GET /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) GetReceiptURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	url, err := h.receiptService.URL(c.Request().Context(), userID, id)
	if err != nil {
		if resp := receiptErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to presign receipt URL")
		return NewInternalError(c, "Failed to get receipt URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}

// DeleteReceipt handles DELETE /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.receiptService.Detach(c.Request().Context(), userID, id); err != nil {
		if resp := receiptErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Receipt deleted")
	return c.NoContent(http.StatusNoContent)
}

// receiptErrorResponse maps receipt service errors to responses.
// Returns nil for errors the caller must handle itself.
func receiptErrorResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return NewNotFoundError(c, "Transaction not found")
	}
	if errors.Is(err, service.ErrReceiptNotFound) {
		return NewNotFoundError(c, "Transaction has no receipt")
	}
	if errors.Is(err, service.ErrReceiptTooLarge) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "receipt", Message: "File too large. Maximum size is 5MB"},
		})
	}
	if errors.Is(err, service.ErrReceiptInvalidFormat) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "receipt", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
		})
	}
	if errors.Is(err, service.ErrReceiptInvalidData) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "receipt", Message: "Invalid image data"},
		})
	}
	if errors.Is(err, service.ErrReceiptsNotConfigured) {
		return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
			Type:     ErrorTypeInternal,
			Title:    "Service Unavailable",
			Status:   http.StatusServiceUnavailable,
			Detail:   "Receipt storage is not configured",
			Instance: c.Request().URL.Path,
		})
	}
	return nil
}
