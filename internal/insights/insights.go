// Package insights models the feed produced by the upstream prediction
// service and merges it into the compact notification list the dashboard
// shows. Nothing here computes predictions; the feed arrives fully formed.
package insights

import (
	"strconv"
	"time"

	"finpulse/internal/core"
)

// Severity values as the upstream emits them.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityHigh     = "high"
	SeverityCaution  = "caution"
	SeverityInfo     = "info"
)

// MaxNotifications caps the merged notification list.
const MaxNotifications = 5

type (
	// Prediction is the next-month spending estimate. It informs the
	// insights view only and never becomes a notification.
	Prediction struct {
		Amount     core.Money `json:"amount"`
		Confidence float64    `json:"confidence"`
		Basis      string     `json:"basis,omitempty"`
	}

	// BudgetAlert flags a category approaching or past its limit.
	BudgetAlert struct {
		Category   string     `json:"category"`
		Severity   string     `json:"severity"`
		Spent      core.Money `json:"spent"`
		Limit      core.Money `json:"limit"`
		Percentage float64    `json:"percentage"`
		Message    string     `json:"message"`
	}

	// Anomaly is an unusual transaction the upstream spotted.
	Anomaly struct {
		ID          string     `json:"id"`
		Date        core.Date  `json:"date"`
		Amount      core.Money `json:"amount"`
		Description string     `json:"description"`
		Category    string     `json:"category"`
		Severity    string     `json:"severity"`
		Reason      string     `json:"reason,omitempty"`
	}

	// Feed is the full upstream insight payload.
	Feed struct {
		NextMonthPrediction *Prediction   `json:"next_month_prediction,omitempty"`
		BudgetAlerts        []BudgetAlert `json:"budget_alerts"`
		Anomalies           []Anomaly     `json:"anomalies"`
		SavingsAnalysis     string        `json:"savings_analysis,omitempty"`
		GeneratedAt         time.Time     `json:"generated_at"`
	}

	// Alert is one merged notification.
	Alert struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		Severity   string `json:"severity"`
		Title      string `json:"title"`
		Message    string `json:"message"`
		LinkTarget string `json:"link_target"`
	}
)

// MergeFeed flattens a feed into at most MaxNotifications alerts: budget
// alerts with severity critical or warning first, then anomalies with
// severity high, each group in upstream order. Predictions and lower
// severities never surface here.
func MergeFeed(feed Feed) []Alert {
	merged := make([]Alert, 0, MaxNotifications)

	for _, ba := range feed.BudgetAlerts {
		if ba.Severity != SeverityCritical && ba.Severity != SeverityWarning {
			continue
		}
		merged = append(merged, Alert{
			ID:         "budget-" + ba.Category,
			Kind:       "budget_alert",
			Severity:   ba.Severity,
			Title:      core.GetCategoryInfo(ba.Category).Label + " budget",
			Message:    ba.Message,
			LinkTarget: "/insights",
		})
	}

	for _, an := range feed.Anomalies {
		if an.Severity != SeverityHigh {
			continue
		}
		merged = append(merged, Alert{
			ID:         "anomaly-" + an.ID,
			Kind:       "anomaly",
			Severity:   an.Severity,
			Title:      "Unusual transaction",
			Message:    an.Description + " (" + an.Amount.Display() + ")",
			LinkTarget: "/insights",
		})
	}

	if len(merged) > MaxNotifications {
		merged = merged[:MaxNotifications]
	}
	return merged
}

// DismissalKey identifies an anomaly across feed regenerations, where
// upstream IDs are not stable: date, paise amount and the first twenty
// characters of the description. Distinct anomalies sharing all three
// collapse into one key.
func DismissalKey(a Anomaly) string {
	// Truncate by runes so a multibyte description never yields a key
	// with invalid UTF-8, which would not survive JSON persistence.
	desc := []rune(a.Description)
	if len(desc) > 20 {
		desc = desc[:20]
	}
	return a.Date.ISO() + "_" + strconv.FormatInt(a.Amount.Paise, 10) + "_" + string(desc)
}

// FilterDismissed drops anomalies whose dismissal key is in the given set.
func FilterDismissed(anomalies []Anomaly, dismissed map[string]bool) []Anomaly {
	if len(dismissed) == 0 {
		return anomalies
	}
	out := make([]Anomaly, 0, len(anomalies))
	for _, a := range anomalies {
		if dismissed[DismissalKey(a)] {
			continue
		}
		out = append(out, a)
	}
	return out
}
