package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// setupUserContext injects an authenticated user id the way the auth
// middleware does.
func setupUserContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []websocket.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]websocket.Event(nil), p.events...)
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func testCategory(userID uuid.UUID, name string, categoryType domain.CategoryType) *domain.Category {
	return &domain.Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Color:  "#4CAF50",
	}
}

func testTransaction(userID, categoryID uuid.UUID, amount int64, on time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(amount),
		Date:       on,
		CreatedAt:  on,
		UpdatedAt:  on,
	}
}
