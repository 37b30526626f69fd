package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrAPIKeyNotFound      = errors.New("api key not found")
	ErrAPIKeyExpired       = errors.New("api key expired")
	ErrTooManyAPIKeys      = errors.New("too many api keys")

	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidCategoryType    = errors.New("invalid category type")
	ErrCategoryTypeMismatch   = errors.New("transaction type does not match category type")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrInvalidPermission      = errors.New("invalid permission")
	ErrPermissionRequired     = errors.New("at least one permission is required")
)

// Validation constants
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)
