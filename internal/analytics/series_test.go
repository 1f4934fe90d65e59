package analytics

import (
	"fmt"
	"testing"

	"finpulse/internal/core"
)

func TestBuildDailySeries(t *testing.T) {
	snapshot := []core.Transaction{
		tx("2025-06-02", 5000, false, "Food & Dining"),
		tx("2025-06-01", 10000, true, "Income"),
		tx("2025-06-02", 3000, false, "Transport"),
		tx("2025-06-05", 8000, false, "Shopping"),
	}

	series := BuildDailySeries(snapshot, DefaultTrendDays)
	if len(series) != 3 {
		t.Fatalf("got %d buckets, want 3", len(series))
	}

	// Ascending by date regardless of input order.
	if series[0].Date.ISO() != "2025-06-01" || series[2].Date.ISO() != "2025-06-05" {
		t.Errorf("series out of order: %s .. %s", series[0].Date.ISO(), series[2].Date.ISO())
	}

	day2 := series[1]
	if day2.Expense.Paise != 8000 || day2.Income.Paise != 0 {
		t.Errorf("2025-06-02 bucket = income %d, expense %d", day2.Income.Paise, day2.Expense.Paise)
	}
	if day2.Label != "2 Jun" {
		t.Errorf("label = %q, want %q", day2.Label, "2 Jun")
	}

	day1 := series[0]
	if day1.Income.Paise != 10000 || day1.Expense.Paise != 0 {
		t.Errorf("2025-06-01 bucket = income %d, expense %d", day1.Income.Paise, day1.Expense.Paise)
	}
}

func TestBuildDailySeriesWindow(t *testing.T) {
	// 20 distinct days; only the most recent 14 survive.
	var snapshot []core.Transaction
	for day := 1; day <= 20; day++ {
		snapshot = append(snapshot, tx(fmt.Sprintf("2025-06-%02d", day), 1000, false, "Other"))
	}

	series := BuildDailySeries(snapshot, 14)
	if len(series) != 14 {
		t.Fatalf("got %d buckets, want 14", len(series))
	}
	if series[0].Date.ISO() != "2025-06-07" {
		t.Errorf("window starts at %s, want 2025-06-07", series[0].Date.ISO())
	}
	if series[13].Date.ISO() != "2025-06-20" {
		t.Errorf("window ends at %s, want 2025-06-20", series[13].Date.ISO())
	}
}

func TestBuildDailySeriesEmpty(t *testing.T) {
	if got := BuildDailySeries(nil, 14); len(got) != 0 {
		t.Errorf("got %d buckets for empty input", len(got))
	}
}
