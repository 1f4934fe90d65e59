package core

// CategoryInfo describes one entry of the closed category set. Color and
// Icon travel to API consumers untouched.
type CategoryInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Categories is the fixed category set. The last entry is the catch-all;
// GetCategoryInfo relies on that ordering.
var Categories = []CategoryInfo{
	{Value: "Food & Dining", Label: "Food & Dining", Color: "#f59e0b", Icon: "🍔"},
	{Value: "Transport", Label: "Transport", Color: "#3b82f6", Icon: "🚗"},
	{Value: "Shopping", Label: "Shopping", Color: "#ec4899", Icon: "🛍️"},
	{Value: "Bills & Utilities", Label: "Bills & Utilities", Color: "#8b5cf6", Icon: "💡"},
	{Value: "Entertainment", Label: "Entertainment", Color: "#10b981", Icon: "🎬"},
	{Value: "Healthcare", Label: "Healthcare", Color: "#ef4444", Icon: "🏥"},
	{Value: "Travel", Label: "Travel", Color: "#06b6d4", Icon: "✈️"},
	{Value: "Income", Label: "Income", Color: "#22c55e", Icon: "💰"},
	{Value: "Other", Label: "Other", Color: "#6b7280", Icon: "📦"},
}

// CategoryOther is the catch-all category value.
const CategoryOther = "Other"

// GetCategoryInfo resolves a category value to its display info. Unknown
// values resolve to the catch-all entry rather than erroring.
func GetCategoryInfo(value string) CategoryInfo {
	for _, c := range Categories {
		if c.Value == value {
			return c
		}
	}
	return Categories[len(Categories)-1]
}

// KnownCategory reports whether the value is part of the fixed set.
func KnownCategory(value string) bool {
	for _, c := range Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}
