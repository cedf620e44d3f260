package main

import (
	"context"
	"os"
	"time"

	"github.com/Robinhuo1/TradingButler/internal/adapters/config"
	"github.com/Robinhuo1/TradingButler/internal/adapters/errors/noop"
	"github.com/Robinhuo1/TradingButler/internal/adapters/errors/sentry"
	"github.com/Robinhuo1/TradingButler/internal/adapters/postgres"
	_ "github.com/Robinhuo1/TradingButler/internal/adapters/tdameritrade"
	"github.com/Robinhuo1/TradingButler/internal/adapters/telegram"
	"github.com/Robinhuo1/TradingButler/internal/domain/execution"
	"github.com/Robinhuo1/TradingButler/internal/domain/position"
	repo "github.com/Robinhuo1/TradingButler/internal/repository/postgres"
	"github.com/Robinhuo1/TradingButler/internal/report"
	"github.com/Robinhuo1/TradingButler/internal/services/reconcile"
	"github.com/Robinhuo1/TradingButler/pkg/errors"
	"github.com/Robinhuo1/TradingButler/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	ctx := context.Background()
	if err := run(ctx, cfg, log); err != nil {
		log.ErrorWithContext(ctx, err, map[string]string{"component": "reconcile"})
		errorTracker.Flush(ctx)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	importer, err := execution.ImporterFor(cfg.Importer.Format)
	if err != nil {
		return err
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return err
	}

	var recorder reconcile.Recorder
	if cfg.Postgres.Enabled {
		client, err := postgres.NewClient(cfg.Postgres)
		if err != nil {
			return errors.Wrap(err, "connect postgres")
		}
		defer client.Close()
		recorder = position.NewService(repo.NewPositionRepository(client.DB()))
	}

	var notifier reconcile.Notifier
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewNotifier(telegram.Config{
			Token:   cfg.Telegram.Token,
			ChatIDs: cfg.Telegram.ChatIDs,
		}, log)
		if err != nil {
			return errors.Wrap(err, "init telegram")
		}
		notifier = tg
	}

	asOf, err := resolveAsOf(cfg.Report.AsOf)
	if err != nil {
		return err
	}

	input, err := os.Open(cfg.Importer.Path)
	if err != nil {
		return errors.Wrapf(err, "open export %s", cfg.Importer.Path)
	}
	defer input.Close()

	service := reconcile.NewService(importer, renderer, recorder, notifier)
	result, err := service.Run(ctx, input, asOf)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.Report.OutputPath, []byte(result.HTML), 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", cfg.Report.OutputPath)
	}
	log.Infof("report written to %s", cfg.Report.OutputPath)
	return nil
}

// resolveAsOf parses the configured as-of date, defaulting to today.
// An explicit date keeps open-position holding periods reproducible.
func resolveAsOf(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	asOf, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrInvalidInput, "as-of date %q", value)
	}
	return asOf, nil
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
