package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// DefaultTrendDays is the window the dashboard trend chart shows.
const DefaultTrendDays = 14

// DailyBucket holds one day's totals. Income and Expense are both always
// present; a day with only income still reports a zero expense.
type DailyBucket struct {
	Date    core.Date
	Income  core.Money
	Expense core.Money
	Label   string
}

// BuildDailySeries groups transactions by calendar date, accumulates income
// and expense totals separately, sorts ascending by date and keeps the most
// recent windowDays buckets. Days with no transactions produce no bucket.
// windowDays <= 0 keeps everything.
func BuildDailySeries(txns []core.Transaction, windowDays int) []DailyBucket {
	byDate := make(map[string]*DailyBucket)
	for _, tx := range txns {
		key := tx.Date.ISO()
		b, ok := byDate[key]
		if !ok {
			b = &DailyBucket{Date: tx.Date, Label: tx.Date.Label()}
			byDate[key] = b
		}
		if tx.IsIncome {
			b.Income = b.Income.Add(tx.Amount)
		} else {
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}

	out := make([]DailyBucket, 0, len(byDate))
	for _, b := range byDate {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})

	// Truncation happens after sorting so the window always holds the
	// latest days, not an arbitrary subset.
	if windowDays > 0 && len(out) > windowDays {
		out = out[len(out)-windowDays:]
	}
	return out
}
