package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregation over transaction snapshots. Every function here is a pure
// transform of its inputs: owner scoping and soft-delete filtering happen
// at the repository, the current moment is always an explicit argument,
// and empty input yields zero aggregates rather than an error.

// DailyTotals buckets expense transactions within the range by calendar
// date. Each bucket carries the day's total, the day's transactions and a
// per-category breakdown keyed by the stored category id.
func DailyTotals(transactions []*domain.Transaction, r domain.DateRange) map[string]*domain.DailyTotal {
	totals := make(map[string]*domain.DailyTotal)

	for _, t := range transactions {
		if t.Type != domain.TransactionTypeExpense || !r.Contains(t.Date) {
			continue
		}

		key := t.DateKey()
		day, ok := totals[key]
		if !ok {
			day = &domain.DailyTotal{
				Date:        key,
				TotalAmount: decimal.Zero,
				ByCategory:  make(map[uuid.UUID]decimal.Decimal),
			}
			totals[key] = day
		}

		day.TotalAmount = day.TotalAmount.Add(t.Amount)
		day.Transactions = append(day.Transactions, t)
		day.ByCategory[t.CategoryID] = day.ByCategory[t.CategoryID].Add(t.Amount)
	}

	return totals
}

// CategoryTotals sums transactions of the given type within the range,
// keyed by category id. Deleted categories still contribute under their
// stored id.
func CategoryTotals(transactions []*domain.Transaction, r domain.DateRange, transactionType domain.TransactionType) map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal)

	for _, t := range transactions {
		if t.Type != transactionType || !r.Contains(t.Date) {
			continue
		}
		totals[t.CategoryID] = totals[t.CategoryID].Add(t.Amount)
	}

	return totals
}

// MonthlyTrend produces one row per calendar month present in the data,
// sorted ascending by month key. Savings is income minus expense.
func MonthlyTrend(transactions []*domain.Transaction) []*domain.MonthlyTrend {
	byMonth := make(map[string]*domain.MonthlyTrend)

	for _, t := range transactions {
		key := t.MonthKey()
		row, ok := byMonth[key]
		if !ok {
			row = &domain.MonthlyTrend{
				Month:   key,
				Income:  decimal.Zero,
				Expense: decimal.Zero,
				Savings: decimal.Zero,
			}
			byMonth[key] = row
		}

		switch t.Type {
		case domain.TransactionTypeIncome:
			row.Income = row.Income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			row.Expense = row.Expense.Add(t.Amount)
		}
		row.Savings = row.Income.Sub(row.Expense)
	}

	trends := make([]*domain.MonthlyTrend, 0, len(byMonth))
	for _, row := range byMonth {
		trends = append(trends, row)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Month < trends[j].Month
	})

	return trends
}

// DefaultTopCategoryLimit caps top-category rankings.
const DefaultTopCategoryLimit = 5

// TopCategories ranks categories of the given type by summed amount
// descending, at most limit entries. Ties keep first-encountered order.
// Percentage is each category's share of the type total, 0 when the type
// total is zero.
func TopCategories(transactions []*domain.Transaction, transactionType domain.TransactionType, limit int) []*domain.CategorySummary {
	if limit <= 0 {
		limit = DefaultTopCategoryLimit
	}

	byCategory := make(map[uuid.UUID]*domain.CategorySummary)
	order := make([]uuid.UUID, 0)
	typeTotal := decimal.Zero

	for _, t := range transactions {
		if t.Type != transactionType {
			continue
		}

		summary, ok := byCategory[t.CategoryID]
		if !ok {
			name := "Unknown"
			if t.Category != nil {
				name = t.Category.Name
			}
			summary = &domain.CategorySummary{
				CategoryID:   t.CategoryID,
				CategoryName: name,
				Amount:       decimal.Zero,
				Percentage:   decimal.Zero,
			}
			byCategory[t.CategoryID] = summary
			order = append(order, t.CategoryID)
		}

		summary.Amount = summary.Amount.Add(t.Amount)
		summary.TransactionCount++
		typeTotal = typeTotal.Add(t.Amount)
	}

	summaries := make([]*domain.CategorySummary, 0, len(order))
	for _, id := range order {
		summary := byCategory[id]
		if typeTotal.IsPositive() {
			summary.Percentage = summary.Amount.Div(typeTotal).Mul(decimal.NewFromInt(100))
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Amount.GreaterThan(summaries[j].Amount)
	})

	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// PeriodTotals computes the three headline expense sums. Today and this
// week are anchored to now; only Period follows the selected range. The
// anchoring is deliberate: period selectors affect the selected-period
// metric alone.
func PeriodTotals(transactions []*domain.Transaction, now time.Time, r domain.DateRange) domain.PeriodTotals {
	today := domain.DateRange{From: now, To: now}
	week := domain.DateRange{From: startOfWeek(now), To: endOfWeek(now)}

	totals := domain.PeriodTotals{
		Today:    decimal.Zero,
		ThisWeek: decimal.Zero,
		Period:   decimal.Zero,
	}

	for _, t := range transactions {
		if t.Type != domain.TransactionTypeExpense {
			continue
		}
		if today.Contains(t.Date) {
			totals.Today = totals.Today.Add(t.Amount)
		}
		if week.Contains(t.Date) {
			totals.ThisWeek = totals.ThisWeek.Add(t.Amount)
		}
		if r.Contains(t.Date) {
			totals.Period = totals.Period.Add(t.Amount)
		}
	}

	return totals
}

// RecentTransactions returns at most limit transactions within the range,
// newest date first.
func RecentTransactions(transactions []*domain.Transaction, r domain.DateRange, limit int) []*domain.Transaction {
	recent := make([]*domain.Transaction, 0, limit)
	for _, t := range transactions {
		if r.Contains(t.Date) {
			recent = append(recent, t)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})

	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// startOfWeek returns the Sunday beginning the week containing t.
func startOfWeek(t time.Time) time.Time {
	d := domain.DateOnly(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// endOfWeek returns the Saturday ending the week containing t.
func endOfWeek(t time.Time) time.Time {
	return startOfWeek(t).AddDate(0, 0, 6)
}
