package analytics

import (
	"testing"
	"time"

	"finpulse/internal/core"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	snapshot := []core.Transaction{
		tx("2025-05-10", 40000, false, "Food & Dining"),
		tx("2025-05-20", 10000, false, "Transport"),
		tx("2025-06-01", 500000, true, "Income"),
		tx("2025-06-05", 30000, false, "Food & Dining"),
		tx("2025-06-10", 45000, false, "Shopping"),
	}

	s := Summarize(snapshot, now)

	wantBalance := int64(500000 - 40000 - 10000 - 30000 - 45000)
	if s.Balance.Paise != wantBalance {
		t.Errorf("balance = %d, want %d", s.Balance.Paise, wantBalance)
	}
	if s.MonthlyIncome.Paise != 500000 {
		t.Errorf("monthly income = %d", s.MonthlyIncome.Paise)
	}
	if s.MonthlyExpenses.Paise != 75000 {
		t.Errorf("monthly expenses = %d", s.MonthlyExpenses.Paise)
	}

	// (75000 - 50000) / 50000 = +50%
	if s.ExpenseChangePercent != 50 {
		t.Errorf("change percent = %v, want 50", s.ExpenseChangePercent)
	}

	if len(s.CategoryBreakdown) != 2 || s.CategoryBreakdown[0].Category != "Shopping" {
		t.Errorf("breakdown = %+v", s.CategoryBreakdown)
	}

	if len(s.Recent) != 5 {
		t.Fatalf("recent = %d entries, want 5", len(s.Recent))
	}
	if s.Recent[0].Date.ISO() != "2025-06-10" {
		t.Errorf("recent[0] = %s, want newest first", s.Recent[0].Date.ISO())
	}
}

func TestSummarizeNoPriorMonth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	s := Summarize([]core.Transaction{
		tx("2025-06-05", 30000, false, "Food & Dining"),
	}, now)

	// No expenses last month: the change percent stays 0 instead of
	// dividing by zero.
	if s.ExpenseChangePercent != 0 {
		t.Errorf("change percent = %v, want 0", s.ExpenseChangePercent)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, time.Now())
	if s.Balance.Paise != 0 || len(s.Recent) != 0 || len(s.CategoryBreakdown) != 0 {
		t.Errorf("empty snapshot summary = %+v", s)
	}
}
