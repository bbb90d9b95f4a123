package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/api"
	"github.com/gaganv007/claimequity-ai/internal/bias"
	"github.com/gaganv007/claimequity-ai/internal/config"
	"github.com/gaganv007/claimequity-ai/internal/database"
	"github.com/gaganv007/claimequity-ai/internal/outcome"
	"github.com/gaganv007/claimequity-ai/internal/predictor"
	"github.com/gaganv007/claimequity-ai/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the outcome store for the configured backend
	store, pool, err := openStore(ctx, configManager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open outcome store")
	}
	defer store.Close()
	if pool != nil {
		defer pool.Close()
	}

	// Bias reporting
	chart := bias.NewChartRenderer(cfg.Bias.ChartPath, cfg.Bias.ChartTopN, logger)
	thresholds := bias.Thresholds{
		MinAlertCount:       cfg.Bias.MinAlertCount,
		MaxAlertSuccessRate: cfg.Bias.MaxAlertSuccessRate,
	}
	biasSvc := bias.NewService(store, chart, thresholds, logger)

	// Appeal success scorer; warm the model so the first prediction is fast
	scorer := predictor.NewService(cfg.Model, logger)
	scorer.Load(ctx)

	// External collaborators
	summarizer, err := external.NewSummarizerChain(cfg.ExternalAPI, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create summarizer chain")
	}

	deps := api.Deps{
		Config:     cfg,
		Store:      store,
		BiasSvc:    biasSvc,
		Scorer:     scorer,
		Summarizer: summarizer,
		Appeals:    external.NewDedalusAppealWriter(cfg.ExternalAPI.Dedalus, logger),
		Finance:    external.NewImpactClient(cfg.ExternalAPI.Finance, logger),
		Analytics:  external.NewAmplitudeTracker(cfg.ExternalAPI.Analytics, logger),
		Logger:     logger,
	}
	// The pool is a typed pointer; assign through the interface only when it
	// exists so the sqlite path keeps a nil monitor.
	if pool != nil {
		deps.DB = pool
	}
	server := api.NewServer(deps)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"backend": cfg.Storage.Backend,
	}).Info("Starting ClaimEquity server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	if pool != nil {
		stats := pool.Stats()
		logger.WithFields(logrus.Fields{
			"total_conns":    stats.TotalConns(),
			"acquired_conns": stats.AcquiredConns(),
		}).Info("Closing postgres pool")
	}
	logger.Info("Server stopped")
}

// openStore opens the sqlite or postgres outcome store. In postgres mode it
// runs pending migrations, establishes the monitoring pool, then opens the
// store. The pool stays up for the life of the process and is nil in sqlite
// mode.
func openStore(ctx context.Context, configManager *config.Manager, logger *logrus.Logger) (outcome.Store, *database.DB, error) {
	cfg := configManager.GetConfig()

	switch cfg.Storage.Backend {
	case "postgres":
		runner, err := database.NewMigrationRunner(
			configManager.GetPostgresURL(), cfg.Storage.MigrationsPath, logger)
		if err != nil {
			return nil, nil, err
		}
		defer runner.Close()
		if err := runner.Up(ctx); err != nil {
			return nil, nil, err
		}

		pool, err := database.NewConnection(ctx, cfg.Storage.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}

		store, err := outcome.NewPostgresStoreFromURL(configManager.GetPostgresURL())
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool, nil
	default:
		store, err := outcome.NewSQLiteStore(cfg.Storage.SQLitePath)
		return store, nil, err
	}
}

// newLogger builds the process logger from configuration.
func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}
