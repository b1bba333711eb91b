package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/trustscore/internal/adapter/driven/github"
	metricsadapter "github.com/ericfisherdev/trustscore/internal/adapter/driven/metrics"
	sqliteadapter "github.com/ericfisherdev/trustscore/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/trustscore/internal/adapter/driving/http"
	"github.com/ericfisherdev/trustscore/internal/application"
	scoresignal "github.com/ericfisherdev/trustscore/internal/application/signal"
	"github.com/ericfisherdev/trustscore/internal/config"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"addr", cfg.Addr,
		"db_path", cfg.DBPath,
		"signal_timeout", cfg.SignalTimeout,
		"failure_policy", cfg.FailurePolicy,
		"persist_reports", cfg.PersistReports,
		"github_token_set", cfg.GitHubToken != "",
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database and run migrations when report history is enabled.
	var store driven.ReportStore
	if cfg.PersistReports {
		db, err := sqliteadapter.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		logger.Info("database opened", "path", cfg.DBPath)

		if err := db.Migrate(); err != nil {
			return err
		}
		logger.Info("migrations complete")

		store = sqliteadapter.NewReportRepo(db)
	}

	// 4. Wire the scoring pipeline.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)
	if cfg.GitHubToken == "" {
		logger.Warn("no github token configured, unauthenticated quota is 60 requests per hour")
	}

	aggregator, err := application.NewAggregator(cfg.ScoringWeights(), cfg.Policy())
	if err != nil {
		return err
	}

	opts := scoresignal.DefaultOptions()
	opts.LicenseAllowList = cfg.LicenseAllowList

	recorder := metricsadapter.NewRecorder(metricsadapter.WithLatencyBuckets(cfg.LatencyBuckets))

	scoreSvc := application.NewScoreService(
		application.NewQuotaGuard(ghClient),
		scoresignal.Defaults(ghClient, opts),
		aggregator,
		store,
		recorder,
		cfg.SignalTimeout,
		logger,
	)

	// 5. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(scoreSvc, store, logger)
	handler := httphandler.NewServeMux(apiHandler, recorder.Handler(), recorder, logger)

	// A score request waits for every signal, so the write timeout must cover
	// the slowest one.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.SignalTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("trustscored started", "addr", cfg.Addr)

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 7. Graceful shutdown lets in-flight score requests finish their signals.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SignalTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
