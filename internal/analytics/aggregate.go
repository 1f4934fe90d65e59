package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// CategoryBucket is the expense total for one category over a snapshot.
type CategoryBucket struct {
	Category string
	Amount   core.Money
}

// AggregateByCategory sums expense amounts per category. Income entries
// never contribute, whatever category they carry. Output order is
// unspecified; callers that need an order sort themselves.
func AggregateByCategory(txns []core.Transaction) []CategoryBucket {
	sums := make(map[string]int64)
	for _, tx := range txns {
		if tx.IsIncome {
			continue
		}
		sums[tx.Category] += tx.Amount.Paise
	}

	out := make([]CategoryBucket, 0, len(sums))
	for cat, paise := range sums {
		out = append(out, CategoryBucket{Category: cat, Amount: core.NewMoney(paise)})
	}
	return out
}

// SortBucketsDesc orders buckets by amount, highest first. Ties break on
// category name so the order is stable across runs.
func SortBucketsDesc(buckets []CategoryBucket) {
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Amount.Paise != buckets[j].Amount.Paise {
			return buckets[i].Amount.Paise > buckets[j].Amount.Paise
		}
		return buckets[i].Category < buckets[j].Category
	})
}

// TopCategory returns the bucket with the largest expense total, or false
// when there are no expenses.
func TopCategory(txns []core.Transaction) (CategoryBucket, bool) {
	buckets := AggregateByCategory(txns)
	if len(buckets) == 0 {
		return CategoryBucket{}, false
	}
	SortBucketsDesc(buckets)
	return buckets[0], true
}
