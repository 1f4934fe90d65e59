package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// BudgetStatus compares one category's monthly limit against what was
// actually spent in that month.
type BudgetStatus struct {
	Budget     core.Budget
	Spent      core.Money
	Percentage float64
	OverBudget bool
}

// BudgetReport is the full budget-status view for one month.
type BudgetReport struct {
	Month      core.Date
	Statuses   []BudgetStatus
	TotalLimit core.Money
	TotalSpent core.Money
}

// BuildBudgetReport evaluates each budget against the transactions of its
// month. Only expenses in the budget's month and category count toward
// spent. Statuses come back sorted by category for stable output.
func BuildBudgetReport(budgets []core.Budget, txns []core.Transaction, month core.Date) BudgetReport {
	report := BudgetReport{Month: month.FirstOfMonth()}

	start := report.Month.Time
	end := report.Month.AddDate(0, 1, -1)

	spentByCategory := make(map[string]int64)
	for _, tx := range txns {
		if tx.IsIncome {
			continue
		}
		d := tx.Date.Time
		if d.Before(start) || d.After(end) {
			continue
		}
		spentByCategory[tx.Category] += tx.Amount.Paise
	}

	for _, b := range budgets {
		if !b.Month.FirstOfMonth().Equal(report.Month.Time) {
			continue
		}
		spent := core.NewMoney(spentByCategory[b.Category])
		status := BudgetStatus{
			Budget:     b,
			Spent:      spent,
			OverBudget: spent.Paise > b.MonthlyLimit.Paise,
		}
		if b.MonthlyLimit.Paise > 0 {
			status.Percentage = float64(spent.Paise) / float64(b.MonthlyLimit.Paise) * 100
		}
		report.Statuses = append(report.Statuses, status)
		report.TotalLimit = report.TotalLimit.Add(b.MonthlyLimit)
		report.TotalSpent = report.TotalSpent.Add(spent)
	}

	sort.Slice(report.Statuses, func(i, j int) bool {
		return report.Statuses[i].Budget.Category < report.Statuses[j].Budget.Category
	})
	return report
}
