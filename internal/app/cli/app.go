package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"paycore/internal/domain/audit"
	"paycore/internal/domain/payroll"
	"paycore/internal/fixture"
	"paycore/internal/platform/config"
	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/db"
	"paycore/internal/platform/lock"
	"paycore/internal/platform/retry"
)

const runLockPrefix = "paycore:"

// AuditLog records run events and lists them back.
type AuditLog interface {
	payroll.AuditRecorder
	List(ctx context.Context, filter audit.Filter, limit int) ([]audit.Event, error)
}

// App holds the collaborators a command needs. Close releases them.
type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Service *payroll.Service
	Audit   AuditLog
	Logger  *slog.Logger
	// Fixture is set when the app runs against a YAML dataset instead of Postgres.
	Fixture *fixture.Store

	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, fixturePath string, logger *slog.Logger) (*App, error) {
	cipher, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("data encryption key: %w", err)
	}
	app := &App{Config: cfg, Logger: logger}
	settings := payroll.Settings{
		StoreTimeout:  cfg.StoreTimeout,
		DefaultRegime: cfg.DefaultTaxRegime,
		Workers:       cfg.Workers,
		RunLockTTL:    cfg.RunLockTTL,
		PayslipDir:    cfg.PayslipDir,

		ExcludeMonthlyCTC: cfg.ExcludeMonthlyCTC,
	}
	deps := payroll.Dependencies{Crypto: cipher, Logger: logger}

	if fixturePath != "" {
		dataset, err := fixture.LoadFile(fixturePath)
		if err != nil {
			return nil, err
		}
		app.Fixture = fixture.NewStore(dataset)
		app.Audit = fixture.NewAuditTrail()
		deps.Store = app.Fixture
		deps.Audit = app.Audit
		logger.Debug("using fixture dataset", "path", fixturePath, "contents", dataset.Describe())
		app.Service = payroll.NewService(deps, settings)
		return app, nil
	}

	pool, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = pool
	app.closers = append(app.closers, pool.Close)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		app.closers = append(app.closers, func() { _ = client.Close() })
		deps.Locker = lock.NewRedis(client, runLockPrefix)
	}

	app.Audit = audit.New(pool)
	deps.Audit = app.Audit
	policy := retry.Policy{MaxRetries: cfg.StoreMaxRetries, Base: cfg.StoreRetryBase}
	deps.Store = payroll.NewRetryingStore(payroll.NewStore(pool, cipher), policy)
	app.Service = payroll.NewService(deps, settings)
	return app, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if cfg.RunMigrations {
		if _, err := migrate(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

// migrate applies pending migrations, then seeds when RUN_SEED is set. It
// returns the migration versions it applied.
func migrate(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) ([]string, error) {
	applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
	if err != nil {
		return applied, fmt.Errorf("migrations failed: %w", err)
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			return applied, fmt.Errorf("seed failed: %w", err)
		}
	}
	return applied, nil
}
