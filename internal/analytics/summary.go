package analytics

import (
	"sort"
	"time"

	"finpulse/internal/core"
)

// RecentLimit caps the recent-transactions list on the dashboard summary.
const RecentLimit = 5

// Summary is the dashboard overview: all-time balance, current-month flow,
// the month-over-month expense change and the current month's category
// breakdown.
type Summary struct {
	Balance              core.Money
	MonthlyIncome        core.Money
	MonthlyExpenses      core.Money
	ExpenseChangePercent float64
	CategoryBreakdown    []CategoryBucket
	Recent               []core.Transaction
}

// Summarize computes the dashboard summary for the snapshot at the given
// instant. The change percent compares this month's expenses to last
// month's and reports 0 when last month had none.
func Summarize(txns []core.Transaction, now time.Time) Summary {
	var s Summary

	for _, tx := range txns {
		if tx.IsIncome {
			s.Balance = s.Balance.Add(tx.Amount)
		} else {
			s.Balance.Paise -= tx.Amount.Paise
		}
	}

	thisMonth, _ := FilterByPeriod(txns, core.PeriodThisMonth, now)
	lastMonth, _ := FilterByPeriod(txns, core.PeriodLastMonth, now)

	for _, tx := range thisMonth {
		if tx.IsIncome {
			s.MonthlyIncome = s.MonthlyIncome.Add(tx.Amount)
		} else {
			s.MonthlyExpenses = s.MonthlyExpenses.Add(tx.Amount)
		}
	}

	var lastExpenses int64
	for _, tx := range lastMonth {
		if !tx.IsIncome {
			lastExpenses += tx.Amount.Paise
		}
	}
	if lastExpenses > 0 {
		s.ExpenseChangePercent = float64(s.MonthlyExpenses.Paise-lastExpenses) / float64(lastExpenses) * 100
	}

	s.CategoryBreakdown = AggregateByCategory(thisMonth)
	SortBucketsDesc(s.CategoryBreakdown)

	s.Recent = recentTransactions(txns, RecentLimit)
	return s
}

func recentTransactions(txns []core.Transaction, limit int) []core.Transaction {
	recent := make([]core.Transaction, len(txns))
	copy(recent, txns)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date.Time)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}
