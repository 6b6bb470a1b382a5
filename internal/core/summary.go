package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents paid expense aggregated by category.
type CategoryAmount struct {
	CategoryID int64
	Amount     decimal.Decimal
}

// MonthlySummary is a compact summary for a specific year+month.
type MonthlySummary struct {
	Year         int
	Month        int // 1-12
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	ByCategory   []CategoryAmount
}

// MonthBounds returns the first and last instant (23:59:59.999) of a month.
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// ResolveMonth replaces an out-of-range year or month with now's, field by field.
func ResolveMonth(year, month int, now time.Time) (int, int) {
	if year < 1 || year > 9999 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	return year, month
}

// ComputeMonthlySummary totals a user's income and paid expense for one month.
// Income counts whatever its status; expense counts only once PAID.
func ComputeMonthlySummary(userID int64, year, month int, txs []Transaction, loc *time.Location) MonthlySummary {
	start, end := MonthBounds(year, month, loc)
	s := MonthlySummary{
		Year:         year,
		Month:        month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	byCat := map[int64]decimal.Decimal{}
	for _, t := range txs {
		if t.UserID != userID {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			if t.Status != StatusPaid {
				continue
			}
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			byCat[t.CategoryID] = byCat[t.CategoryID].Add(t.Amount)
		}
	}
	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	for id, amt := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryAmount{CategoryID: id, Amount: amt})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if c := s.ByCategory[i].Amount.Cmp(s.ByCategory[j].Amount); c != 0 {
			return c > 0
		}
		return s.ByCategory[i].CategoryID < s.ByCategory[j].CategoryID
	})
	return s
}

// LastMonths summarizes the n months ending with now's month, oldest first.
func LastMonths(userID int64, now time.Time, n int, txs []Transaction, loc *time.Location) []MonthlySummary {
	if loc == nil {
		loc = time.UTC
	}
	anchor := time.Date(now.In(loc).Year(), now.In(loc).Month(), 1, 0, 0, 0, 0, loc)
	out := make([]MonthlySummary, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0)
		out = append(out, ComputeMonthlySummary(userID, m.Year(), int(m.Month()), txs, loc))
	}
	return out
}
