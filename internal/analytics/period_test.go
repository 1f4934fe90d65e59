package analytics

import (
	"errors"
	"testing"
	"time"

	"finpulse/internal/core"
)

func tx(date string, paise int64, income bool, category string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:          date + "-" + category,
		Date:        d,
		Amount:      core.NewMoney(paise),
		IsIncome:    income,
		Category:    category,
		Description: "test " + category,
	}
}

func TestFilterByPeriod(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	snapshot := []core.Transaction{
		tx("2025-04-30", 1000, false, "Other"),
		tx("2025-05-01", 2000, false, "Food & Dining"),
		tx("2025-05-31", 3000, false, "Transport"),
		tx("2025-06-01", 4000, false, "Shopping"),
		tx("2025-06-15", 5000, true, "Income"),
		tx("2025-06-30", 6000, false, "Travel"),
	}

	t.Run("this month includes both boundary days", func(t *testing.T) {
		got, err := FilterByPeriod(snapshot, core.PeriodThisMonth, now)
		if err != nil {
			t.Fatalf("FilterByPeriod: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d transactions, want 3", len(got))
		}
		if got[0].Date.ISO() != "2025-06-01" || got[2].Date.ISO() != "2025-06-30" {
			t.Errorf("boundary days missing: %s .. %s", got[0].Date.ISO(), got[2].Date.ISO())
		}
	})

	t.Run("last month is the full previous calendar month", func(t *testing.T) {
		got, err := FilterByPeriod(snapshot, core.PeriodLastMonth, now)
		if err != nil {
			t.Fatalf("FilterByPeriod: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d transactions, want 2", len(got))
		}
		if got[0].Date.ISO() != "2025-05-01" || got[1].Date.ISO() != "2025-05-31" {
			t.Errorf("unexpected window: %s, %s", got[0].Date.ISO(), got[1].Date.ISO())
		}
	})

	t.Run("all time is identity", func(t *testing.T) {
		got, err := FilterByPeriod(snapshot, core.PeriodAllTime, now)
		if err != nil {
			t.Fatalf("FilterByPeriod: %v", err)
		}
		if len(got) != len(snapshot) {
			t.Fatalf("got %d transactions, want %d", len(got), len(snapshot))
		}
		for i := range got {
			if got[i].ID != snapshot[i].ID {
				t.Errorf("order changed at %d", i)
			}
		}
	})

	t.Run("unknown selector is an error", func(t *testing.T) {
		if _, err := FilterByPeriod(snapshot, "quarterly", now); !errors.Is(err, core.ErrInvalidPeriod) {
			t.Errorf("error = %v, want ErrInvalidPeriod", err)
		}
	})

	t.Run("filtering twice gives the same result", func(t *testing.T) {
		once, _ := FilterByPeriod(snapshot, core.PeriodThisMonth, now)
		twice, _ := FilterByPeriod(once, core.PeriodThisMonth, now)
		if len(once) != len(twice) {
			t.Errorf("idempotence broken: %d vs %d", len(once), len(twice))
		}
	})

	t.Run("empty input gives empty output", func(t *testing.T) {
		got, err := FilterByPeriod(nil, core.PeriodThisMonth, now)
		if err != nil {
			t.Fatalf("FilterByPeriod: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d transactions, want 0", len(got))
		}
	})
}
