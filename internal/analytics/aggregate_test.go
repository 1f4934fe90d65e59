package analytics

import (
	"testing"

	"finpulse/internal/core"
)

func TestAggregateByCategory(t *testing.T) {
	snapshot := []core.Transaction{
		tx("2025-06-01", 10000, false, "Food & Dining"),
		tx("2025-06-02", 5000, false, "Transport"),
		tx("2025-06-03", 25000, false, "Food & Dining"),
		tx("2025-06-04", 500000, true, "Income"),
		tx("2025-06-05", 7000, false, "Other"),
	}

	buckets := AggregateByCategory(snapshot)
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(buckets))
	}

	sums := make(map[string]int64)
	var total int64
	for _, b := range buckets {
		sums[b.Category] = b.Amount.Paise
		total += b.Amount.Paise
	}
	if sums["Food & Dining"] != 35000 {
		t.Errorf("Food & Dining = %d, want 35000", sums["Food & Dining"])
	}
	if _, ok := sums["Income"]; ok {
		t.Error("income entries must not contribute a bucket")
	}

	// Bucket totals must add up to the expense total of the snapshot.
	var wantTotal int64
	for _, txn := range snapshot {
		if !txn.IsIncome {
			wantTotal += txn.Amount.Paise
		}
	}
	if total != wantTotal {
		t.Errorf("bucket sum = %d, want %d", total, wantTotal)
	}
}

func TestTopCategory(t *testing.T) {
	top, ok := TopCategory([]core.Transaction{
		tx("2025-06-01", 10000, false, "Food & Dining"),
		tx("2025-06-02", 90000, false, "Travel"),
		tx("2025-06-03", 20000, false, "Shopping"),
	})
	if !ok {
		t.Fatal("expected a top category")
	}
	if top.Category != "Travel" || top.Amount.Paise != 90000 {
		t.Errorf("top = %+v", top)
	}

	if _, ok := TopCategory([]core.Transaction{tx("2025-06-01", 10000, true, "Income")}); ok {
		t.Error("income-only snapshot must report no top category")
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := AggregateByCategory(nil); len(got) != 0 {
		t.Errorf("got %d buckets for empty input", len(got))
	}
}
