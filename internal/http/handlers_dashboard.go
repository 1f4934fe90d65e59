package http

import (
	"net/http"
	"strconv"

	"finpulse/internal/analytics"
	"finpulse/internal/core"
)

type summaryResponse struct {
	Balance              core.Money            `json:"balance"`
	MonthlyIncome        core.Money            `json:"monthly_income"`
	MonthlyExpenses      core.Money            `json:"monthly_expenses"`
	ExpenseChangePercent float64               `json:"expense_change_percent"`
	CategoryBreakdown    []categoryBucketJSON  `json:"category_breakdown"`
	Recent               []transactionResponse `json:"recent_transactions"`
}

type categoryBucketJSON struct {
	Category string     `json:"category"`
	Label    string     `json:"label"`
	Color    string     `json:"color"`
	Icon     string     `json:"icon"`
	Amount   core.Money `json:"amount"`
	Display  string     `json:"display"`
}

type trendPointJSON struct {
	Date    core.Date  `json:"date"`
	Label   string     `json:"label"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

func toBucketJSON(buckets []analytics.CategoryBucket) []categoryBucketJSON {
	out := make([]categoryBucketJSON, 0, len(buckets))
	for _, b := range buckets {
		info := core.GetCategoryInfo(b.Category)
		out = append(out, categoryBucketJSON{
			Category: b.Category,
			Label:    info.Label,
			Color:    info.Color,
			Icon:     info.Icon,
			Amount:   b.Amount,
			Display:  b.Amount.Display(),
		})
	}
	return out
}

// periodFromQuery reads the period selector, defaulting to this_month.
func periodFromQuery(r *http.Request) (core.PeriodSelector, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return core.PeriodThisMonth, nil
	}
	return core.ParsePeriod(raw)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txns, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summary := analytics.Summarize(txns, s.now())
	resp := summaryResponse{
		Balance:              summary.Balance,
		MonthlyIncome:        summary.MonthlyIncome,
		MonthlyExpenses:      summary.MonthlyExpenses,
		ExpenseChangePercent: summary.ExpenseChangePercent,
		CategoryBreakdown:    toBucketJSON(summary.CategoryBreakdown),
		Recent:               toTransactionResponses(summary.Recent),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	days := analytics.DefaultTrendDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 366 {
			badRequest(w, "invalid days %q: must be between 1 and 366", raw)
			return
		}
		days = parsed
	}

	txns, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	filtered, err := analytics.FilterByPeriod(txns, period, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	series := analytics.BuildDailySeries(filtered, days)
	points := make([]trendPointJSON, 0, len(series))
	for _, b := range series {
		points = append(points, trendPointJSON{
			Date:    b.Date,
			Label:   b.Label,
			Income:  b.Income,
			Expense: b.Expense,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": period,
		"days":   days,
		"series": points,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	txns, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	filtered, err := analytics.FilterByPeriod(txns, period, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	buckets := analytics.AggregateByCategory(filtered)
	analytics.SortBucketsDesc(buckets)
	writeJSON(w, http.StatusOK, map[string]any{
		"period":     period,
		"categories": toBucketJSON(buckets),
	})
}
