// Package http serves the dashboard JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finpulse/internal/backend"
	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/dismiss"
	"finpulse/internal/insights"
	"finpulse/internal/log"
	"finpulse/internal/session"
	"finpulse/internal/suggest"
)

// FeedSource supplies the upstream insight feed. Nil means the insights
// endpoints serve an empty feed.
type FeedSource interface {
	Insights(ctx context.Context) (insights.Feed, error)
}

// Options configures a Server.
type Options struct {
	Addr       string
	Backend    backend.Backend
	Feed       FeedSource
	Dismissals *dismiss.Store
	Session    *session.Session
	Suggest    suggest.Func
	Logger     *log.Logger

	SuggestDelay time.Duration
	CacheSize    int
	CacheTTL     time.Duration

	// Now is the clock for period filtering; tests pin it.
	Now func() time.Time
}

type Server struct {
	http.Server

	backend    backend.Backend
	feed       FeedSource
	dismissals *dismiss.Store
	sess       *session.Session
	suggester  *suggest.Debouncer
	logger     *log.Logger
	now        func() time.Time

	rateLimiter *rateLimiter
	metrics     *metrics

	snapshotCache *cache.LRUCache[[]core.Transaction]
	feedCache     *cache.LRUCache[insights.Feed]
	cacheManager  *cache.Manager

	suggestWait  time.Duration
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.SuggestDelay <= 0 {
		opts.SuggestDelay = suggest.DefaultDelay
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		backend:       opts.Backend,
		feed:          opts.Feed,
		dismissals:    opts.Dismissals,
		sess:          opts.Session,
		logger:        opts.Logger.WithComponent(log.ComponentHTTP),
		now:           opts.Now,
		rateLimiter:   newRateLimiter(),
		metrics:       newMetrics(),
		snapshotCache: cache.NewLRUCache[[]core.Transaction](opts.CacheSize, opts.CacheTTL),
		feedCache:     cache.NewLRUCache[insights.Feed](opts.CacheSize, opts.CacheTTL),
		cacheManager:  cache.NewManager(),
		suggestWait:   2*opts.SuggestDelay + 10*time.Second,
	}
	if opts.Suggest != nil {
		s.suggester = suggest.NewDebouncer(opts.Suggest, opts.SuggestDelay)
	}

	s.cacheManager.Register(s.snapshotCache)
	s.cacheManager.Register(s.feedCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/dashboard/summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /api/dashboard/trend", s.wrap(s.handleTrend))
	mux.HandleFunc("GET /api/dashboard/categories", s.wrap(s.handleCategories))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/import", s.wrap(s.handleImport))
	mux.HandleFunc("POST /api/transactions/suggest-category", s.wrap(s.handleSuggestCategory))

	mux.HandleFunc("GET /api/insights", s.wrap(s.handleInsights))
	mux.HandleFunc("GET /api/notifications", s.wrap(s.handleNotifications))
	mux.HandleFunc("POST /api/insights/anomalies/dismiss", s.wrap(s.handleDismissAnomaly))

	mux.HandleFunc("GET /api/budgets", s.wrap(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.wrap(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.wrap(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.wrap(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/budgets/status", s.wrap(s.handleBudgetStatus))

	mux.HandleFunc("POST /api/auth/login", s.wrap(s.handleLogin))
	mux.HandleFunc("POST /api/auth/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/auth/logout", s.wrap(s.handleLogout))

	return s
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The backend is the only hard dependency.
	if _, err := s.backend.ListTransactions(r.Context(), core.TransactionFilter{Limit: 1}); err != nil {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// snapshot returns the full transaction set, cached per TTL.
func (s *Server) snapshot(ctx context.Context) ([]core.Transaction, error) {
	const key = "snapshot"
	if cached, found := s.snapshotCache.Get(key); found {
		return cached, nil
	}

	txns, err := s.backend.ListTransactions(ctx, core.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	s.snapshotCache.Set(key, txns)
	return txns, nil
}

// invalidate drops cached snapshots after any mutation.
func (s *Server) invalidate() {
	s.snapshotCache.Clear()
}
