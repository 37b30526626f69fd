package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the calendar date of t falls within the range,
// both ends inclusive. Time-of-day is ignored on all three values.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(r.From)) && !d.After(DateOnly(r.To))
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyTotal is one day's expense bucket.
type DailyTotal struct {
	Date         string                        `json:"date"`
	TotalAmount  decimal.Decimal               `json:"totalAmount"`
	Transactions []*Transaction                `json:"transactions"`
	ByCategory   map[uuid.UUID]decimal.Decimal `json:"byCategory"`
}

// PeriodTotals are the three dashboard headline sums. Today and ThisWeek
// anchor to the caller-supplied current moment regardless of the selected
// report range.
type PeriodTotals struct {
	Today    decimal.Decimal `json:"today"`
	ThisWeek decimal.Decimal `json:"thisWeek"`
	Period   decimal.Decimal `json:"period"`
}

// MonthlyTrend is one calendar month's income/expense/savings row.
type MonthlyTrend struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
}

// CategorySummary ranks one category within a type's total.
type CategorySummary struct {
	CategoryID       uuid.UUID       `json:"categoryId"`
	CategoryName     string          `json:"categoryName"`
	Amount           decimal.Decimal `json:"amount"`
	Percentage       decimal.Decimal `json:"percentage"`
	TransactionCount int             `json:"transactionCount"`
}

// ReportSummary is the aggregate view over a filtered transaction set.
type ReportSummary struct {
	TotalIncome   decimal.Decimal    `json:"totalIncome"`
	TotalExpense  decimal.Decimal    `json:"totalExpense"`
	SavingsRate   decimal.Decimal    `json:"savingsRate"`
	TopIncome     []*CategorySummary `json:"topIncomeCategories"`
	TopExpense    []*CategorySummary `json:"topExpenseCategories"`
	MonthlyTrends []*MonthlyTrend    `json:"monthlyTrends"`
}

// DashboardSummary is everything a dashboard render needs for one range.
type DashboardSummary struct {
	Periods            PeriodTotals                  `json:"periods"`
	DailyTotals        map[string]*DailyTotal        `json:"dailyTotals"`
	CategoryTotals     map[uuid.UUID]decimal.Decimal `json:"categoryTotals"`
	ActiveBudgets      int                           `json:"activeBudgets"`
	BudgetsNearLimit   int                           `json:"budgetsNearLimit"`
	RecentTransactions []*Transaction                `json:"recentTransactions"`
}
