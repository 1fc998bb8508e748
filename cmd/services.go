package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shajanthanx/life-v2-sub002/internal/adapters/git"
	"github.com/shajanthanx/life-v2-sub002/internal/adapters/notification"
	"github.com/shajanthanx/life-v2-sub002/internal/adapters/postgres"
	"github.com/shajanthanx/life-v2-sub002/internal/adapters/storage"
	"github.com/shajanthanx/life-v2-sub002/internal/config"
	"github.com/shajanthanx/life-v2-sub002/internal/logging"
	"github.com/shajanthanx/life-v2-sub002/internal/metrics"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
	"github.com/shajanthanx/life-v2-sub002/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config     *config.Config
	configPath string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	storage    ports.Storage
	engine     *services.Engine
	habits     *services.HabitService
	reports    *services.ReportService
	alerts     *services.AlertService
	gitImport  *services.GitImportService
	export     *services.ExportService
	state      *services.StateService
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.config = cfg
	app.configPath = path
	return nil
}

// initializeServices sets up all the required services and adapters.
func initializeServices(ctx context.Context) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger, err := logging.New(app.config.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	app.logger = logger
	app.metrics = metrics.New()

	loc, err := app.config.Calendar.Location()
	if err != nil {
		return err
	}

	app.storage, err = openStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.engine = services.NewEngine(app.storage.Records(), services.EngineOptions{
		Location:        loc,
		Logger:          logger.Named("engine"),
		Metrics:         app.metrics,
		StreakLimit:     app.config.Engine.StreakLimit,
		BulkConcurrency: app.config.Engine.BulkConcurrency,
		PersistTimeout:  app.config.Engine.PersistTimeout,
	})

	notifier := notification.New(&app.config.Notifications)

	app.habits = services.NewHabitService(app.storage, app.engine, logger.Named("habits"))
	app.reports = services.NewReportService(app.habits, app.engine)
	app.alerts = services.NewAlertService(app.habits, app.engine, notifier, logger.Named("alerts"))
	app.gitImport = services.NewGitImportService(git.NewHistory(), app.storage.Records(), app.engine, logger.Named("git"))
	app.export = services.NewExportService(app.storage)
	app.state = services.NewStateService(app.habits, app.engine, app.reports, app.alerts)

	logger.Debug("services initialized",
		zap.String("driver", app.config.Storage.Driver),
		zap.String("timezone", loc.String()),
	)
	return nil
}

func openStorage(ctx context.Context) (ports.Storage, error) {
	switch app.config.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, app.config.Storage.DSN, app.logger.Named("postgres"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		path := dbPath
		if path == "" {
			path = config.GetDBPath(app.config)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		return storage.New(path)
	}
}

// serveMetrics exposes the metrics endpoint for the lifetime of ctx when
// enabled in the config.
func serveMetrics(ctx context.Context) {
	if !app.config.Metrics.Enabled {
		return
	}
	go func() {
		if err := app.metrics.Serve(ctx, app.config.Metrics.Addr, app.logger); err != nil {
			app.logger.Warn("metrics endpoint stopped", zap.Error(err))
		}
	}()
}

// cleanupServices closes all resources. It is safe to call more than once.
func cleanupServices() error {
	if app.engine != nil {
		app.engine.Close()
		app.engine = nil
	}
	var err error
	if app.storage != nil {
		err = app.storage.Close()
		app.storage = nil
	}
	if app.logger != nil {
		_ = app.logger.Sync()
		app.logger = nil
	}
	return err
}
