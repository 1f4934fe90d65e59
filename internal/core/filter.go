package core

import "strings"

// TransactionFilter narrows a transaction listing. Zero values mean no
// constraint; MinPaise/MaxPaise of 0 are ignored rather than matching
// free transactions only.
type TransactionFilter struct {
	From     Date
	To       Date
	Category string
	Income   *bool
	MinPaise int64
	MaxPaise int64
	Search   string
	Limit    int
	Offset   int
}

// Matches reports whether a transaction passes every set constraint.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To.Time) {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Income != nil && tx.IsIncome != *f.Income {
		return false
	}
	if f.MinPaise > 0 && tx.Amount.Paise < f.MinPaise {
		return false
	}
	if f.MaxPaise > 0 && tx.Amount.Paise > f.MaxPaise {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Description), needle) &&
			!strings.Contains(strings.ToLower(tx.Merchant), needle) {
			return false
		}
	}
	return true
}
