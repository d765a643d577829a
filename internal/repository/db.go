package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/lecitrade/coa-tracker/internal/common"
)

// Open connects the record store for the configured driver and ensures the
// schema exists. The returned cleanup closes everything.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*SQLStore, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "postgres":
		return openPostgres(ctx, cfg, logger)
	default:
		return openSQLite(ctx, cfg.DSN, logger)
	}
}

// openPostgres creates a pgx pool and wraps it as *sql.DB for the store.
func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*SQLStore, func(), error) {
	logger.Info("connecting to database", "driver", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "coa-tracker"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	store := NewSQLStore(db, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("closing database connections")
		_ = db.Close()
		pool.Close()
	}
	logger.Info("successfully connected to database")
	return store, cleanup, nil
}

func openSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLStore, func(), error) {
	logger.Info("connecting to database", "driver", "sqlite", "path", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, nil, err
	}
	// modernc sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	store := NewSQLStore(db, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("closing database connections")
		_ = db.Close()
	}
	return store, cleanup, nil
}

// HealthCheck pings the underlying database to catch DSN issues early.
func HealthCheck(ctx context.Context, s *SQLStore) error {
	return s.db.PingContext(ctx)
}
