// Package api is the REST client for the upstream finance API: the
// system of record for transactions and budgets, the auth endpoint and
// the prediction service behind the insight feed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/insights"
	"finpulse/internal/log"
	"finpulse/internal/session"
	"finpulse/internal/suggest"
)

// ErrUpstream wraps non-2xx responses from the upstream API.
var ErrUpstream = errors.New("upstream api error")

// TokenSource supplies the bearer token for authenticated calls.
// *session.Session satisfies it.
type TokenSource interface {
	Token() (string, error)
}

// Client talks JSON to the upstream API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *log.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger.WithComponent(log.ComponentAPIClient),
	}
}

// Transaction is the upstream wire shape. Amounts travel as paise.
type Transaction struct {
	ID          string     `json:"id"`
	Date        core.Date  `json:"date"`
	Amount      core.Money `json:"amount"`
	IsIncome    bool       `json:"is_income"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Merchant    string     `json:"merchant,omitempty"`
}

// Budget is the upstream wire shape for a monthly category budget.
type Budget struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Month        core.Date  `json:"month"`
	MonthlyLimit core.Money `json:"monthly_limit"`
}

func toDomain(t Transaction) core.Transaction {
	return core.Transaction{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		IsIncome:    t.IsIncome,
		Category:    t.Category,
		Description: t.Description,
		Merchant:    t.Merchant,
	}
}

func fromDomain(t core.Transaction) Transaction {
	return Transaction{
		ID:          t.ID,
		Date:        t.Date,
		Amount:      t.Amount,
		IsIncome:    t.IsIncome,
		Category:    t.Category,
		Description: t.Description,
		Merchant:    t.Merchant,
	}
}

// ListTransactions fetches transactions matching the filter.
func (c *Client) ListTransactions(ctx context.Context, filter core.TransactionFilter) ([]core.Transaction, error) {
	q := url.Values{}
	if !filter.From.IsZero() {
		q.Set("from", filter.From.ISO())
	}
	if !filter.To.IsZero() {
		q.Set("to", filter.To.ISO())
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Income != nil {
		q.Set("is_income", strconv.FormatBool(*filter.Income))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}

	path := "/api/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var wire []Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(wire))
	for _, t := range wire {
		out = append(out, toDomain(t))
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var wire Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, &wire); err != nil {
		return core.Transaction{}, err
	}
	return toDomain(wire), nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var wire Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", fromDomain(tx), &wire); err != nil {
		return core.Transaction{}, err
	}
	return toDomain(wire), nil
}

func (c *Client) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var wire Transaction
	if err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(tx.ID), fromDomain(tx), &wire); err != nil {
		return core.Transaction{}, err
	}
	return toDomain(wire), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

// ListBudgets fetches all budgets for a month.
func (c *Client) ListBudgets(ctx context.Context, month core.Date) ([]core.Budget, error) {
	path := "/api/budgets"
	if !month.IsZero() {
		path += "?month=" + month.FirstOfMonth().ISO()
	}
	var wire []Budget
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(wire))
	for _, b := range wire {
		out = append(out, core.Budget{ID: b.ID, Category: b.Category, Month: b.Month, MonthlyLimit: b.MonthlyLimit})
	}
	return out, nil
}

func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	wire := Budget{Category: b.Category, Month: b.Month, MonthlyLimit: b.MonthlyLimit}
	var created Budget
	if err := c.do(ctx, http.MethodPost, "/api/budgets", wire, &created); err != nil {
		return core.Budget{}, err
	}
	return core.Budget{ID: created.ID, Category: created.Category, Month: created.Month, MonthlyLimit: created.MonthlyLimit}, nil
}

func (c *Client) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	wire := Budget{ID: b.ID, Category: b.Category, Month: b.Month, MonthlyLimit: b.MonthlyLimit}
	var updated Budget
	if err := c.do(ctx, http.MethodPut, "/api/budgets/"+url.PathEscape(b.ID), wire, &updated); err != nil {
		return core.Budget{}, err
	}
	return core.Budget{ID: updated.ID, Category: updated.Category, Month: updated.Month, MonthlyLimit: updated.MonthlyLimit}, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/budgets/"+url.PathEscape(id), nil, nil)
}

// Insights fetches the current insight feed from the prediction service.
func (c *Client) Insights(ctx context.Context) (insights.Feed, error) {
	var feed insights.Feed
	if err := c.do(ctx, http.MethodGet, "/api/insights", nil, &feed); err != nil {
		return insights.Feed{}, err
	}
	return feed, nil
}

// SuggestCategory asks the upstream for a category guess. Satisfies
// suggest.Func.
func (c *Client) SuggestCategory(ctx context.Context, description string) (suggest.Suggestion, error) {
	body := map[string]string{"description": description}
	var s suggest.Suggestion
	if err := c.do(ctx, http.MethodPost, "/api/transactions/suggest-category", body, &s); err != nil {
		return suggest.Suggestion{}, err
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, err := c.tokens.Token(); err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
		} else if !errors.Is(err, session.ErrNotAuthenticated) {
			return fmt.Errorf("token: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("upstream call failed",
			log.FieldMethod, method, log.FieldPath, path, log.FieldStatusCode, resp.StatusCode)
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrUpstream, method, path, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
