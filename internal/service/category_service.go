package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput carries validated category creation fields
type CreateCategoryInput struct {
	Name        string
	Type        domain.CategoryType
	Color       string
	Icon        *string
	Description *string
}

// CreateCategory validates and creates a category.
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidCategoryType
	}

	category := &domain.Category{
		UserID:      userID,
		Name:        name,
		Type:        input.Type,
		Color:       input.Color,
		Icon:        input.Icon,
		Description: input.Description,
	}

	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create category")
		return nil, err
	}
	return created, nil
}

// GetCategories returns the user's non-deleted categories.
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(ctx, userID)
}

// UpdateCategory renames or restyles an owned category. The type is
// immutable after creation.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, update domain.CategoryUpdate) (*domain.Category, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	update.Name = name

	return s.categoryRepo.Update(ctx, userID, id, update)
}

// DeleteCategory soft-deletes an owned category. Transactions keep their
// stored category id; display layers resolve it as "Unknown".
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	return s.categoryRepo.SoftDelete(ctx, userID, id)
}

// CanDeleteCategory reports whether the category has any transactions.
func (s *CategoryService) CanDeleteCategory(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	has, err := s.categoryRepo.HasTransactions(ctx, userID, id)
	if err != nil {
		return false, err
	}
	return !has, nil
}
