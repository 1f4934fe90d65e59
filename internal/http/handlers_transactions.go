package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"finpulse/internal/core"
	"finpulse/internal/suggest"
)

type transactionRequest struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	IsIncome    bool   `json:"is_income"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Merchant    string `json:"merchant,omitempty"`
}

type transactionResponse struct {
	ID          string     `json:"id"`
	Date        core.Date  `json:"date"`
	Amount      core.Money `json:"amount"`
	Display     string     `json:"display"`
	IsIncome    bool       `json:"is_income"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Merchant    string     `json:"merchant,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date,
		Amount:      tx.Amount,
		Display:     tx.Amount.Display(),
		IsIncome:    tx.IsIncome,
		Category:    tx.Category,
		Description: tx.Description,
		Merchant:    tx.Merchant,
	}
}

func toTransactionResponses(txns []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, tx := range txns {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

// toTransaction validates and converts a wire request into the domain type.
// Amounts arrive as decimal strings; unknown categories become other.
func (req transactionRequest) toTransaction(id string) (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	paise, err := core.ParseDecimalToPaise(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	category := sanitizeInput(req.Category)
	if !core.KnownCategory(category) {
		category = core.CategoryOther
	}

	tx := core.Transaction{
		ID:          id,
		Date:        date,
		Amount:      core.NewMoney(paise),
		IsIncome:    req.IsIncome,
		Category:    category,
		Description: sanitizeInput(req.Description),
		Merchant:    sanitizeInput(req.Merchant),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// filterFromQuery builds a listing filter from query parameters.
func filterFromQuery(r *http.Request) (core.TransactionFilter, error) {
	q := r.URL.Query()
	var filter core.TransactionFilter

	if raw := q.Get("from"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.To = d
	}
	filter.Category = q.Get("category")
	filter.Search = sanitizeInput(q.Get("search"))

	if raw := q.Get("is_income"); raw != "" {
		income, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid is_income %q", raw)
		}
		filter.Income = &income
	}
	if raw := q.Get("min_amount"); raw != "" {
		paise, err := core.ParseDecimalToPaise(raw)
		if err != nil {
			return filter, err
		}
		filter.MinPaise = paise
	}
	if raw := q.Get("max_amount"); raw != "" {
		paise, err := core.ParseDecimalToPaise(raw)
		if err != nil {
			return filter, err
		}
		filter.MaxPaise = paise
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("invalid offset %q", raw)
		}
		filter.Offset = n
	}
	return filter, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		badRequest(w, "invalid filter: %v", err)
		return
	}

	txns, err := s.backend.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionResponses(txns),
		"count":        len(txns),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.backend.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	tx, err := req.toTransaction("")
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.backend.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	tx, err := req.toTransaction(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.backend.UpdateTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidate()
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

type suggestRequest struct {
	Description string `json:"description"`
	// Immediate bypasses the quiet window, for form submission rather
	// than keystrokes.
	Immediate bool `json:"immediate,omitempty"`
}

type suggestResponse struct {
	suggest.Suggestion
	ShouldApply bool `json:"should_apply"`
}

// handleSuggestCategory debounces keystroke-rate suggestion requests. A
// request superseded by a newer one, or one below the minimum query
// length, answers 204 with no body.
func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "category suggestions unavailable"})
		return
	}

	var req suggestRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "%v", err)
		return
	}
	query := sanitizeInput(req.Description)

	if req.Immediate {
		result, err := s.suggester.Flush(r.Context(), query)
		if err != nil {
			writeError(w, err)
			return
		}
		if result.Category == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, suggestResponse{Suggestion: result, ShouldApply: result.ShouldApply()})
		return
	}

	type outcome struct {
		result suggest.Suggestion
		err    error
	}
	// The debouncer delivers at most once; buffer so a late delivery
	// after the timeout below cannot block it.
	ch := make(chan outcome, 1)

	// The lookup must survive this request ending: a newer keystroke may
	// arrive on another connection, and cancellation is the debouncer's
	// job, not the socket's.
	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.suggestWait)
	defer cancel()

	armed := s.suggester.Trigger(lookupCtx, query, func(result suggest.Suggestion, err error) {
		ch <- outcome{result: result, err: err}
	})
	if !armed {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	select {
	case out := <-ch:
		if out.err != nil {
			writeError(w, out.err)
			return
		}
		writeJSON(w, http.StatusOK, suggestResponse{Suggestion: out.result, ShouldApply: out.result.ShouldApply()})
	case <-r.Context().Done():
		return
	case <-lookupCtx.Done():
		// Superseded by a newer query or timed out; nothing to show.
		w.WriteHeader(http.StatusNoContent)
	}
}
