package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/middleware"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CategorySummaryResponse represents one ranked category in API responses
type CategorySummaryResponse struct {
	CategoryID       string `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	Amount           string `json:"amount"`
	Percentage       string `json:"percentage"`
	TransactionCount int    `json:"transactionCount"`
}

// MonthlyTrendResponse represents one month's trend row
type MonthlyTrendResponse struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Savings string `json:"savings"`
}

// ReportSummaryResponse represents the report summary in API responses
type ReportSummaryResponse struct {
	TotalIncome   string                    `json:"totalIncome"`
	TotalExpense  string                    `json:"totalExpense"`
	SavingsRate   string                    `json:"savingsRate"`
	TopIncome     []CategorySummaryResponse `json:"topIncomeCategories"`
	TopExpense    []CategorySummaryResponse `json:"topExpenseCategories"`
	MonthlyTrends []MonthlyTrendResponse    `json:"monthlyTrends"`
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}
	if filters.StartDate != nil && filters.EndDate != nil &&
		domain.DateOnly(*filters.EndDate).Before(domain.DateOnly(*filters.StartDate)) {
		return NewValidationError(c, "endDate must not precede startDate", nil)
	}

	summary, err := h.reportService.GetSummary(c.Request().Context(), userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build report summary")
		return NewInternalError(c, "Failed to build report summary")
	}

	return c.JSON(http.StatusOK, toReportSummaryResponse(summary))
}

// Helper function to convert domain.ReportSummary to ReportSummaryResponse
func toReportSummaryResponse(summary *domain.ReportSummary) ReportSummaryResponse {
	resp := ReportSummaryResponse{
		TotalIncome:   summary.TotalIncome.StringFixed(2),
		TotalExpense:  summary.TotalExpense.StringFixed(2),
		SavingsRate:   summary.SavingsRate.StringFixed(2),
		TopIncome:     make([]CategorySummaryResponse, len(summary.TopIncome)),
		TopExpense:    make([]CategorySummaryResponse, len(summary.TopExpense)),
		MonthlyTrends: make([]MonthlyTrendResponse, len(summary.MonthlyTrends)),
	}
	for i, cs := range summary.TopIncome {
		resp.TopIncome[i] = toCategorySummaryResponse(cs)
	}
	for i, cs := range summary.TopExpense {
		resp.TopExpense[i] = toCategorySummaryResponse(cs)
	}
	for i, trend := range summary.MonthlyTrends {
		resp.MonthlyTrends[i] = MonthlyTrendResponse{
			Month:   trend.Month,
			Income:  trend.Income.StringFixed(2),
			Expense: trend.Expense.StringFixed(2),
			Savings: trend.Savings.StringFixed(2),
		}
	}
	return resp
}

func toCategorySummaryResponse(cs *domain.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		CategoryID:       cs.CategoryID.String(),
		CategoryName:     cs.CategoryName,
		Amount:           cs.Amount.StringFixed(2),
		Percentage:       cs.Percentage.StringFixed(2),
		TransactionCount: cs.TransactionCount,
	}
}
