package http

import (
	"net/http"

	"finpulse/internal/analytics"
	"finpulse/internal/core"
)

type budgetRequest struct {
	Category     string `json:"category"`
	Month        string `json:"month"`
	MonthlyLimit string `json:"monthly_limit"`
}

type budgetResponse struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Month        core.Date  `json:"month"`
	MonthlyLimit core.Money `json:"monthly_limit"`
	Display      string     `json:"display"`
}

type budgetStatusResponse struct {
	Budget     budgetResponse `json:"budget"`
	Spent      core.Money     `json:"spent"`
	Percentage float64        `json:"percentage"`
	OverBudget bool           `json:"over_budget"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		Category:     b.Category,
		Month:        b.Month,
		MonthlyLimit: b.MonthlyLimit,
		Display:      b.MonthlyLimit.Display(),
	}
}

func (req budgetRequest) toBudget(id string) (core.Budget, error) {
	month, err := core.ParseDate(req.Month)
	if err != nil {
		return core.Budget{}, err
	}
	paise, err := core.ParseDecimalToPaise(req.MonthlyLimit)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		ID:           id,
		Category:     sanitizeInput(req.Category),
		Month:        month.FirstOfMonth(),
		MonthlyLimit: core.NewMoney(paise),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// monthFromQuery reads a month parameter, defaulting to the current month.
// Both YYYY-MM and YYYY-MM-DD forms are accepted.
func (s *Server) monthFromQuery(r *http.Request) (core.Date, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return core.DateOf(s.now()).FirstOfMonth(), nil
	}
	if len(raw) == 7 {
		raw += "-01"
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, err
	}
	return d.FirstOfMonth(), nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	budgets, err := s.backend.ListBudgets(r.Context(), month)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   month.ISO(),
		"budgets": out,
	})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	b, err := req.toBudget("")
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.backend.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	b, err := req.toBudget(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.backend.UpdateBudget(r.Context(), b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month, err := s.monthFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	budgets, err := s.backend.ListBudgets(r.Context(), month)
	if err != nil {
		writeError(w, err)
		return
	}
	txns, err := s.snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	report := analytics.BuildBudgetReport(budgets, txns, month)
	statuses := make([]budgetStatusResponse, 0, len(report.Statuses))
	for _, st := range report.Statuses {
		statuses = append(statuses, budgetStatusResponse{
			Budget:     toBudgetResponse(st.Budget),
			Spent:      st.Spent,
			Percentage: st.Percentage,
			OverBudget: st.OverBudget,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":       report.Month.ISO(),
		"statuses":    statuses,
		"total_limit": report.TotalLimit,
		"total_spent": report.TotalSpent,
	})
}
