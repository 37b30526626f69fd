package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// PeriodTotalsResponse represents the dashboard headline sums
type PeriodTotalsResponse struct {
	Today    string `json:"today"`
	ThisWeek string `json:"thisWeek"`
	Period   string `json:"period"`
}

// DailyTotalResponse represents one day's expense bucket
type DailyTotalResponse struct {
	Date         string                `json:"date"`
	TotalAmount  string                `json:"totalAmount"`
	Transactions []TransactionResponse `json:"transactions"`
	ByCategory   map[string]string     `json:"byCategory"`
}

// DashboardSummaryResponse represents the dashboard summary in API responses
type DashboardSummaryResponse struct {
	Periods            PeriodTotalsResponse          `json:"periods"`
	DailyTotals        map[string]DailyTotalResponse `json:"dailyTotals"`
	CategoryTotals     map[string]string             `json:"categoryTotals"`
	ActiveBudgets      int                           `json:"activeBudgets"`
	BudgetsNearLimit   int                           `json:"budgetsNearLimit"`
	RecentTransactions []TransactionResponse         `json:"recentTransactions"`
}

// GetSummary handles GET /api/v1/dashboard/summary. The range defaults
// to the current calendar month.
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	now := time.Now()
	r := domain.DateRange{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC),
	}

	if v := c.QueryParam("startDate"); v != "" {
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		r.From = parsed
	}
	if v := c.QueryParam("endDate"); v != "" {
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		r.To = parsed
	}
	if domain.DateOnly(r.To).Before(domain.DateOnly(r.From)) {
		return NewValidationError(c, "endDate must not precede startDate", nil)
	}

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), userID, r, now)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build dashboard summary")
		return NewInternalError(c, "Failed to build dashboard summary")
	}

	return c.JSON(http.StatusOK, toDashboardSummaryResponse(summary))
}

// Helper function to convert domain.DashboardSummary to DashboardSummaryResponse
func toDashboardSummaryResponse(summary *domain.DashboardSummary) DashboardSummaryResponse {
	resp := DashboardSummaryResponse{
		Periods: PeriodTotalsResponse{
			Today:    summary.Periods.Today.StringFixed(2),
			ThisWeek: summary.Periods.ThisWeek.StringFixed(2),
			Period:   summary.Periods.Period.StringFixed(2),
		},
		DailyTotals:        make(map[string]DailyTotalResponse, len(summary.DailyTotals)),
		CategoryTotals:     make(map[string]string, len(summary.CategoryTotals)),
		ActiveBudgets:      summary.ActiveBudgets,
		BudgetsNearLimit:   summary.BudgetsNearLimit,
		RecentTransactions: make([]TransactionResponse, len(summary.RecentTransactions)),
	}

	for date, daily := range summary.DailyTotals {
		dt := DailyTotalResponse{
			Date:         daily.Date,
			TotalAmount:  daily.TotalAmount.StringFixed(2),
			Transactions: make([]TransactionResponse, len(daily.Transactions)),
			ByCategory:   make(map[string]string, len(daily.ByCategory)),
		}
		for i, transaction := range daily.Transactions {
			dt.Transactions[i] = toTransactionResponse(transaction)
		}
		for categoryID, amount := range daily.ByCategory {
			dt.ByCategory[categoryID.String()] = amount.StringFixed(2)
		}
		resp.DailyTotals[date] = dt
	}

	for categoryID, amount := range summary.CategoryTotals {
		resp.CategoryTotals[categoryID.String()] = amount.StringFixed(2)
	}

	for i, transaction := range summary.RecentTransactions {
		resp.RecentTransactions[i] = toTransactionResponse(transaction)
	}

	return resp
}
