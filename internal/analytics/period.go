// Package analytics implements the dashboard computation pipeline over
// transaction snapshots: period filtering, category aggregation, the daily
// trend series, the dashboard summary and budget status. Every function is
// pure; callers own caching and invalidation.
package analytics

import (
	"time"

	"finpulse/internal/core"
)

// FilterByPeriod returns the transactions whose date falls inside the
// selected window, preserving input order. Both window boundaries are
// inclusive. all_time returns the input unchanged; an unknown selector is
// an error, not a silent all-time fallback.
func FilterByPeriod(txns []core.Transaction, period core.PeriodSelector, now time.Time) ([]core.Transaction, error) {
	switch period {
	case core.PeriodAllTime:
		return txns, nil
	case core.PeriodThisMonth:
		start := core.DateOf(now).FirstOfMonth()
		end := start.AddDate(0, 1, -1)
		return filterRange(txns, start.Time, end), nil
	case core.PeriodLastMonth:
		firstOfThis := core.DateOf(now).FirstOfMonth()
		start := firstOfThis.AddDate(0, -1, 0)
		end := firstOfThis.AddDate(0, 0, -1)
		return filterRange(txns, start, end), nil
	}
	return nil, core.ErrInvalidPeriod
}

func filterRange(txns []core.Transaction, start, end time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, tx := range txns {
		d := tx.Date.Time
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
