package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProblemDetails is the RFC 7807 error body every handler responds with.
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError keys a message to the offending request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem type URIs
const (
	ErrorTypeValidation   = "https://pennywise.app/errors/validation"
	ErrorTypeNotFound     = "https://pennywise.app/errors/not-found"
	ErrorTypeUnauthorized = "https://pennywise.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://pennywise.app/errors/forbidden"
	ErrorTypeConflict     = "https://pennywise.app/errors/conflict"
	ErrorTypeInternal     = "https://pennywise.app/errors/internal"
)

func problem(c echo.Context, status int, errType, title, detail string, errors []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewValidationError writes a 400 with optional field-keyed errors.
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, errors)
}

// NewNotFoundError writes a 404.
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError writes a 401.
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewForbiddenError writes a 403.
func NewForbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail, nil)
}

// NewConflictError writes a 409.
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewInternalError writes a 500.
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}
