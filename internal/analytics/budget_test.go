package analytics

import (
	"testing"
	"time"

	"finpulse/internal/core"
)

func TestBuildBudgetReport(t *testing.T) {
	month := core.NewDate(2025, time.June, 1)
	budgets := []core.Budget{
		{ID: "b1", Category: "Food & Dining", Month: month, MonthlyLimit: core.NewMoney(50000)},
		{ID: "b2", Category: "Transport", Month: month, MonthlyLimit: core.NewMoney(20000)},
		{ID: "b3", Category: "Travel", Month: core.NewDate(2025, time.May, 1), MonthlyLimit: core.NewMoney(100000)},
	}
	txns := []core.Transaction{
		tx("2025-06-05", 30000, false, "Food & Dining"),
		tx("2025-06-10", 25000, false, "Transport"),
		tx("2025-05-20", 90000, false, "Travel"),
		tx("2025-06-12", 400000, true, "Income"),
	}

	report := BuildBudgetReport(budgets, txns, core.NewDate(2025, time.June, 15))

	// The May budget is out of scope for a June report.
	if len(report.Statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(report.Statuses))
	}

	food := report.Statuses[0]
	if food.Budget.Category != "Food & Dining" || food.Spent.Paise != 30000 {
		t.Errorf("food status = %+v", food)
	}
	if food.OverBudget || food.Percentage != 60 {
		t.Errorf("food percentage = %v, over = %v", food.Percentage, food.OverBudget)
	}

	transport := report.Statuses[1]
	if !transport.OverBudget {
		t.Error("transport must be over budget (25000 spent against 20000)")
	}
	if transport.Percentage != 125 {
		t.Errorf("transport percentage = %v, want 125", transport.Percentage)
	}

	if report.TotalLimit.Paise != 70000 || report.TotalSpent.Paise != 55000 {
		t.Errorf("totals = limit %d, spent %d", report.TotalLimit.Paise, report.TotalSpent.Paise)
	}
}
