package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finpulse/internal/api"
	"finpulse/internal/backend"
	"finpulse/internal/config"
	"finpulse/internal/dismiss"
	apphttp "finpulse/internal/http"
	"finpulse/internal/log"
	"finpulse/internal/session"
	"finpulse/internal/suggest"
)

// tokenHolder breaks the construction cycle between the api client and
// the session: the client needs a token source before the session that
// backs it can exist.
type tokenHolder struct {
	sess *session.Session
}

func (h *tokenHolder) Token() (string, error) {
	if h.sess == nil {
		return "", session.ErrNotAuthenticated
	}
	return h.sess.Token()
}

func main() {
	// Load .env for local development; absence is fine in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The upstream API powers the insight feed, auth and category
	// suggestions even when the data backend is local.
	holder := &tokenHolder{}
	var (
		feed      apphttp.FeedSource
		sess      *session.Session
		suggestFn suggest.Func
	)
	if cfg.APIBaseURL != "" {
		client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, holder, logger)

		var err error
		sess, err = session.Open(client, cfg.SessionTokenPath)
		if err != nil {
			logger.Error("Failed to restore session", log.FieldError, err.Error())
			os.Exit(1)
		}
		holder.sess = sess

		feed = client
		suggestFn = client.SuggestCategory
		logger.Info("Upstream API configured", "base_url", cfg.APIBaseURL, "authenticated", sess.Authenticated())
	} else {
		logger.Info("No upstream API configured; insights, auth and suggestions disabled")
	}

	dismissals, err := dismiss.Open(cfg.DismissalPath)
	if err != nil {
		logger.Error("Failed to open dismissal store", log.FieldError, err.Error(), log.FieldPath, cfg.DismissalPath)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger, holder)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		APIBaseURL:   cfg.APIBaseURL,
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	})
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error(), log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		Backend:      result.Backend,
		Feed:         feed,
		Dismissals:   dismissals,
		Session:      sess,
		Suggest:      suggestFn,
		Logger:       logger,
		SuggestDelay: cfg.SuggestDelay,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting finpulse server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
