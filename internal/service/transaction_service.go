package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// CreateTransactionInput carries validated transaction creation fields
type CreateTransactionInput struct {
	CategoryID  uuid.UUID
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
}

// CreateTransaction validates input and creates a transaction. The
// transaction's type must match its category's type; mismatched legacy
// rows are tolerated at read time but never written.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Description != nil && len(*input.Description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if string(category.Type) != string(input.Type) {
		return nil, domain.ErrCategoryTypeMismatch
	}

	transaction := &domain.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        domain.DateOnly(input.Date),
	}

	created, err := s.transactionRepo.Create(ctx, transaction)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return nil, err
	}
	return created, nil
}

// GetTransactions returns the user's non-deleted transactions, optionally
// narrowed by filters.
func (s *TransactionService) GetTransactions(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUser(ctx, userID, filters)
}

// GetTransaction returns a single owned transaction.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, userID, id)
}

// UpdateTransaction applies validated changes to an owned transaction.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Description != nil && len(*input.Description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionTooLong
	}

	transaction, err := s.transactionRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if string(category.Type) != string(input.Type) {
		return nil, domain.ErrCategoryTypeMismatch
	}

	transaction.CategoryID = input.CategoryID
	transaction.Type = input.Type
	transaction.Amount = input.Amount
	transaction.Description = input.Description
	transaction.Date = domain.DateOnly(input.Date)

	return s.transactionRepo.Update(ctx, transaction)
}

// DeleteTransaction soft-deletes an owned transaction. Deleted rows are
// excluded from every subsequent read.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.transactionRepo.SoftDelete(ctx, userID, id); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Transaction deleted")
	return nil
}
