// Package application assembles the record store, division registry and
// indicator service from configuration. Both entry points build on it.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/metrics"
	"github.com/JonMunkholm/indicators/internal/store/memory"
	"github.com/JonMunkholm/indicators/internal/store/postgres"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Store     core.Store
	Registry  *division.Registry
	Refresher *division.Refresher
	Metrics   *metrics.Metrics
	Service   *core.Service

	pool *pgxpool.Pool
}

// New opens the configured store and builds the service on top of it. reg
// receives the metrics; nil means the default registerer.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	a := &App{Config: cfg}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Metrics = metrics.New(reg)
	a.Registry = division.NewRegistry()

	opts := []division.RefresherOption{division.WithReloadHook(a.Metrics.DivisionReload)}
	if cfg.Divisions.Watch {
		opts = append(opts, division.WithWatch(cfg.Divisions.File))
	}
	a.Refresher = division.NewRefresher(a.Registry,
		division.NewFileProvider(cfg.Divisions.File, cfg.Divisions.Key),
		cfg.Divisions.RefreshInterval,
		opts...,
	)
	// The list must be in place before the first import is served.
	if err := a.LoadDivisions(ctx); err != nil {
		slog.Warn("division list unavailable, every division will be rejected until it loads", "error", err)
	}

	svc, err := core.NewService(a.Store, a.Registry, core.Options{
		HeaderRows: cfg.Import.HeaderRows,
		SheetName:  cfg.Import.SheetName,
		Validator: core.ValidatorConfig{
			IdentifierPattern: cfg.Import.IdentifierPattern,
			GoalMaxLength:     cfg.Import.GoalMaxLength,
		},
		MaxConcurrentImports: cfg.Upload.MaxConcurrent,
		MaxImportWait:        cfg.Upload.MaxWaitTime,
		ImportTimeout:        cfg.Upload.Timeout,
		Observer:             a.Metrics,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	a.Service = svc
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	dbCfg := a.Config.Database
	if strings.EqualFold(dbCfg.Driver, config.DriverMemory) {
		slog.Warn("using in-memory store, records are lost on exit")
		a.Store = memory.New()
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.MinConns = int32(dbCfg.MinConns)
	poolConfig.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(dbCfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if dbCfg.AutoMigrate {
		if err := postgres.Migrate(ctx, dbCfg.URL); err != nil {
			pool.Close()
			return err
		}
	}

	a.pool = pool
	a.Store = postgres.New(pool)
	return nil
}

// Health pings the database. The memory store is always healthy.
func (a *App) Health(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Ping(ctx)
}

// LoadDivisions reads the division list once. New already calls it.
func (a *App) LoadDivisions(ctx context.Context) error {
	return a.Refresher.Reload(ctx)
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
