package insights

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"finpulse/internal/core"
)

func anomaly(id, date string, paise int64, desc string, severity string) Anomaly {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return Anomaly{
		ID:          id,
		Date:        d,
		Amount:      core.NewMoney(paise),
		Description: desc,
		Category:    "Other",
		Severity:    severity,
	}
}

func TestMergeFeed(t *testing.T) {
	feed := Feed{
		NextMonthPrediction: &Prediction{Amount: core.NewMoney(1200000), Confidence: 81},
		BudgetAlerts: []BudgetAlert{
			{Category: "Food & Dining", Severity: SeverityCritical, Message: "food budget exhausted"},
			{Category: "Transport", Severity: SeverityCaution, Message: "halfway there"},
			{Category: "Shopping", Severity: SeverityWarning, Message: "90% of shopping budget used"},
		},
		Anomalies: []Anomaly{
			anomaly("a1", "2025-06-10", 950000, "Electronics purchase", SeverityHigh),
			anomaly("a2", "2025-06-11", 4000, "Coffee", SeverityInfo),
			anomaly("a3", "2025-06-12", 300000, "Jewellery", SeverityHigh),
		},
		GeneratedAt: time.Now(),
	}

	merged := MergeFeed(feed)
	if len(merged) != 4 {
		t.Fatalf("got %d alerts, want 4", len(merged))
	}

	// Qualifying budget alerts precede anomalies, each group in feed order.
	wantIDs := []string{"budget-Food & Dining", "budget-Shopping", "anomaly-a1", "anomaly-a3"}
	for i, want := range wantIDs {
		if merged[i].ID != want {
			t.Errorf("alert[%d].ID = %q, want %q", i, merged[i].ID, want)
		}
	}

	for _, a := range merged {
		if a.LinkTarget != "/insights" {
			t.Errorf("alert %s links to %q", a.ID, a.LinkTarget)
		}
		if a.Kind == "prediction" {
			t.Error("predictions must never surface as notifications")
		}
	}
}

func TestMergeFeedCap(t *testing.T) {
	var feed Feed
	for i := 0; i < 4; i++ {
		feed.BudgetAlerts = append(feed.BudgetAlerts, BudgetAlert{
			Category: fmt.Sprintf("cat%d", i),
			Severity: SeverityCritical,
		})
	}
	for i := 0; i < 4; i++ {
		feed.Anomalies = append(feed.Anomalies, anomaly(fmt.Sprintf("a%d", i), "2025-06-01", 1000, "x", SeverityHigh))
	}

	merged := MergeFeed(feed)
	if len(merged) != MaxNotifications {
		t.Fatalf("got %d alerts, want cap of %d", len(merged), MaxNotifications)
	}
	// Budget alerts fill the list before any anomaly.
	if merged[4].ID != "anomaly-a0" {
		t.Errorf("alert[4].ID = %q, want anomaly-a0", merged[4].ID)
	}
}

func TestMergeFeedEmpty(t *testing.T) {
	if got := MergeFeed(Feed{}); len(got) != 0 {
		t.Errorf("empty feed merged to %d alerts", len(got))
	}
}

func TestDismissalKey(t *testing.T) {
	a := anomaly("a1", "2025-06-10", 950000, "Electronics purchase at MegaStore", SeverityHigh)
	key := DismissalKey(a)
	if key != "2025-06-10_950000_Electronics purchase" {
		t.Errorf("key = %q", key)
	}
	if got := len(strings.Split(key, "_")); got != 3 {
		t.Errorf("key has %d segments, want 3", got)
	}

	short := anomaly("a2", "2025-06-10", 500, "Tea", SeverityHigh)
	if DismissalKey(short) != "2025-06-10_500_Tea" {
		t.Errorf("short key = %q", DismissalKey(short))
	}
}

func TestDismissalKeyMultibyte(t *testing.T) {
	// Truncation counts runes, never bytes: a description cut mid-rune
	// would produce a key that cannot round-trip through JSON.
	a := anomaly("a1", "2025-06-10", 950000, "Покупка электроники в магазине", SeverityHigh)
	key := DismissalKey(a)
	if !utf8.ValidString(key) {
		t.Fatalf("key is not valid UTF-8: %q", key)
	}
	if want := "2025-06-10_950000_Покупка электроники "; key != want {
		t.Errorf("key = %q, want %q", key, want)
	}

	exact := anomaly("a2", "2025-06-10", 500, strings.Repeat("й", 20), SeverityHigh)
	if got := DismissalKey(exact); !strings.HasSuffix(got, strings.Repeat("й", 20)) {
		t.Errorf("20-rune description truncated: %q", got)
	}
}

func TestFilterDismissed(t *testing.T) {
	a1 := anomaly("a1", "2025-06-10", 950000, "Electronics purchase", SeverityHigh)
	a2 := anomaly("a2", "2025-06-12", 300000, "Jewellery", SeverityHigh)

	dismissed := map[string]bool{DismissalKey(a1): true}
	kept := FilterDismissed([]Anomaly{a1, a2}, dismissed)
	if len(kept) != 1 || kept[0].ID != "a2" {
		t.Errorf("kept = %+v", kept)
	}

	// ID changes between feed regenerations must not defeat dismissal.
	regen := a1
	regen.ID = "fresh-id"
	kept = FilterDismissed([]Anomaly{regen}, dismissed)
	if len(kept) != 0 {
		t.Error("regenerated anomaly with same key must stay dismissed")
	}
}
