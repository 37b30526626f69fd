package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[string]*domain.User
	ByID  map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(_ context.Context, auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(_ context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:      uuid.New(),
		Auth0ID: auth0ID,
		Email:   email,
		Name:    name,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories      map[uuid.UUID]*domain.Category
	TransactionRefs map[uuid.UUID]bool
	GetAllErr       error
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories:      make(map[uuid.UUID]*domain.Category),
		TransactionRefs: make(map[uuid.UUID]bool),
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves an owned, non-deleted category by id
func (m *MockCategoryRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID || category.Deleted() {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetAllByUser retrieves the user's non-deleted categories, name ascending
func (m *MockCategoryRepository) GetAllByUser(_ context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.UserID == userID && !category.Deleted() {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// Update updates the mutable fields of an owned category
func (m *MockCategoryRepository) Update(_ context.Context, userID, id uuid.UUID, update domain.CategoryUpdate) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID || category.Deleted() {
		return nil, domain.ErrCategoryNotFound
	}
	category.Name = update.Name
	category.Color = update.Color
	category.Icon = update.Icon
	category.Description = update.Description
	category.UpdatedAt = time.Now()
	return category, nil
}

// SoftDelete sets the deletion timestamp on an owned category
func (m *MockCategoryRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID || category.Deleted() {
		return domain.ErrCategoryNotFound
	}
	now := time.Now()
	category.DeletedAt = &now
	return nil
}

// HasTransactions reports whether any transactions reference the category
func (m *MockCategoryRepository) HasTransactions(_ context.Context, _, id uuid.UUID) (bool, error) {
	return m.TransactionRefs[id], nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.Categories[category.ID] = category
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	Categories   *MockCategoryRepository
	GetByUserErr error
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = uuid.New()
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.resolveCategory(transaction)
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves an owned, non-deleted transaction by id
func (m *MockTransactionRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID || transaction.Deleted() {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetByUser retrieves the user's non-deleted transactions with filters
// applied, date descending
func (m *MockTransactionRepository) GetByUser(_ context.Context, userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if m.GetByUserErr != nil {
		return nil, m.GetByUserErr
	}
	var transactions []*domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.Deleted() {
			continue
		}
		if filters != nil && !matchesFilters(transaction, filters) {
			continue
		}
		transactions = append(transactions, transaction)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	return transactions, nil
}

// Update updates an owned transaction
func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.UserID != transaction.UserID || existing.Deleted() {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.UpdatedAt = time.Now()
	m.resolveCategory(transaction)
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// SoftDelete sets the deletion timestamp on an owned transaction
func (m *MockTransactionRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID || transaction.Deleted() {
		return domain.ErrTransactionNotFound
	}
	now := time.Now()
	transaction.DeletedAt = &now
	return nil
}

// SetReceiptPath sets or clears a transaction's receipt path
func (m *MockTransactionRepository) SetReceiptPath(_ context.Context, userID, id uuid.UUID, path *string) error {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID || transaction.Deleted() {
		return domain.ErrTransactionNotFound
	}
	transaction.ReceiptPath = path
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	m.Transactions[transaction.ID] = transaction
}

func (m *MockTransactionRepository) resolveCategory(transaction *domain.Transaction) {
	if m.Categories == nil {
		return
	}
	if category, ok := m.Categories.Categories[transaction.CategoryID]; ok && !category.Deleted() {
		transaction.Category = category
	}
}

func matchesFilters(transaction *domain.Transaction, filters *domain.TransactionFilters) bool {
	if filters.StartDate != nil && domain.DateOnly(transaction.Date).Before(domain.DateOnly(*filters.StartDate)) {
		return false
	}
	if filters.EndDate != nil && domain.DateOnly(transaction.Date).After(domain.DateOnly(*filters.EndDate)) {
		return false
	}
	if len(filters.CategoryIDs) > 0 {
		found := false
		for _, id := range filters.CategoryIDs {
			if transaction.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.Type != nil && transaction.Type != *filters.Type {
		return false
	}
	if filters.Search != nil {
		if transaction.Description == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(*transaction.Description), strings.ToLower(*filters.Search)) {
			return false
		}
	}
	return true
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets   map[uuid.UUID]*domain.Budget
	GetAllErr error
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID]*domain.Budget)}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = uuid.New()
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves an owned, non-deleted budget by id
func (m *MockBudgetRepository) GetByID(_ context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID || budget.Deleted() {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetAllByUser retrieves the user's non-deleted budgets
func (m *MockBudgetRepository) GetAllByUser(_ context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	if m.GetAllErr != nil {
		return nil, m.GetAllErr
	}
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.UserID == userID && !budget.Deleted() {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].StartDate.After(budgets[j].StartDate)
	})
	return budgets, nil
}

// Update updates an owned budget
func (m *MockBudgetRepository) Update(_ context.Context, budget *domain.Budget) (*domain.Budget, error) {
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID || existing.Deleted() {
		return nil, domain.ErrBudgetNotFound
	}
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// SoftDelete sets the deletion timestamp on an owned budget
func (m *MockBudgetRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID || budget.Deleted() {
		return domain.ErrBudgetNotFound
	}
	now := time.Now()
	budget.DeletedAt = &now
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	m.Budgets[budget.ID] = budget
}

// MockAPIKeyRepository is a mock implementation of domain.APIKeyRepository
type MockAPIKeyRepository struct {
	Keys   map[uuid.UUID]*domain.APIKey
	ByHash map[string]*domain.APIKey

	mu        sync.Mutex
	LastUsed  map[uuid.UUID]int
	CreateErr error
}

// NewMockAPIKeyRepository creates a new MockAPIKeyRepository
func NewMockAPIKeyRepository() *MockAPIKeyRepository {
	return &MockAPIKeyRepository{
		Keys:     make(map[uuid.UUID]*domain.APIKey),
		ByHash:   make(map[string]*domain.APIKey),
		LastUsed: make(map[uuid.UUID]int),
	}
}

// Create stores a new API key record
func (m *MockAPIKeyRepository) Create(_ context.Context, key *domain.APIKey) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	key.ID = uuid.New()
	key.CreatedAt = time.Now()
	m.Keys[key.ID] = key
	m.ByHash[key.KeyHash] = key
	return nil
}

// GetByUser retrieves the user's non-revoked API keys
func (m *MockAPIKeyRepository) GetByUser(_ context.Context, userID uuid.UUID) ([]*domain.APIKey, error) {
	var keys []*domain.APIKey
	for _, key := range m.Keys {
		if key.UserID == userID && !key.Deleted() {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

// GetByHash looks up a non-revoked key by its secret hash
func (m *MockAPIKeyRepository) GetByHash(_ context.Context, hash string) (*domain.APIKey, error) {
	key, ok := m.ByHash[hash]
	if !ok || key.Deleted() {
		return nil, domain.ErrAPIKeyNotFound
	}
	return key, nil
}

// SoftDelete revokes an owned API key
func (m *MockAPIKeyRepository) SoftDelete(_ context.Context, userID, id uuid.UUID) error {
	key, ok := m.Keys[id]
	if !ok || key.UserID != userID || key.Deleted() {
		return domain.ErrAPIKeyNotFound
	}
	now := time.Now()
	key.DeletedAt = &now
	return nil
}

// UpdateLastUsed records that the key authenticated a request
func (m *MockAPIKeyRepository) UpdateLastUsed(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastUsed[id]++
	now := time.Now()
	if key, ok := m.Keys[id]; ok {
		key.LastUsedAt = &now
	}
	return nil
}

// TimesUsed reports how often UpdateLastUsed ran for the key. Safe to
// call concurrently with UpdateLastUsed.
func (m *MockAPIKeyRepository) TimesUsed(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastUsed[id]
}

// AddKey adds an API key to the mock repository (helper for tests)
func (m *MockAPIKeyRepository) AddKey(key *domain.APIKey) {
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	m.Keys[key.ID] = key
	m.ByHash[key.KeyHash] = key
}

// MockReceiptStorage is an in-memory mock of storage.ReceiptRepository
type MockReceiptStorage struct {
	Objects   map[string][]byte
	UploadErr error
}

// NewMockReceiptStorage creates a new MockReceiptStorage
func NewMockReceiptStorage() *MockReceiptStorage {
	return &MockReceiptStorage{Objects: make(map[string][]byte)}
}

// Upload stores the object and returns its path
func (m *MockReceiptStorage) Upload(_ context.Context, path string, reader io.Reader, _ string, _ int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.Objects[path] = data
	return path, nil
}

// Delete removes the object
func (m *MockReceiptStorage) Delete(_ context.Context, path string) error {
	delete(m.Objects, path)
	return nil
}

// PresignedURL returns a fake temporary URL for the object
func (m *MockReceiptStorage) PresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if _, ok := m.Objects[path]; !ok {
		return "", fmt.Errorf("object not found: %s", path)
	}
	return "https://storage.test/" + path, nil
}
