// Package sqlstore is the SQL implementation of the location store, backed by
// SQLite by default and PostgreSQL (optionally with PostGIS) through GORM.
package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"locator/config"
	"locator/internal/domain/lifecycle"
	"locator/internal/errors"
	"locator/internal/infra/metrics"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Pure-Go driver registered as "sqlite"; the GORM dialector is pointed at it.
	_ "modernc.org/sqlite"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond

	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"

	sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// New opens the configured store and binds its pool to the fx lifecycle.
// An unreachable store is logged, not fatal: the service starts degraded.
func New(params Params) (*gorm.DB, error) {
	db, err := Open(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				params.Logger.Warn("Location store unreachable at startup",
					slog.String("driver", params.Config.Store.Driver),
					slog.Any("error", err),
				)
			}

			go monitorDBPool(monitorCtx, params.Logger, params.Metrics, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to the configured driver without lifecycle management.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gormLogger := newGormSlogLogger(logger, cfg)

	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		path := cfg.Store.SQLite.Path
		dsn := path
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create directory for %s", path)
			}
			dsn = "file:" + path + "?" + sqlitePragmas
		}

		db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: dialectSQLite, DSN: dsn}), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormLogger,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open SQLite database %s", path)
		}

		return db, nil

	case config.StoreDriverPostgres:
		db, err := pgLib.New(cfg.Store.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create PostgreSQL client")
		}

		return db.Session(&gorm.Session{
			// Reads are single statements; the loader opens its own transaction.
			SkipDefaultTransaction: true,
			Logger:                 gormLogger,
		}), nil

	default:
		return nil, errors.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func dialect(db *gorm.DB) string {
	if db.Dialector.Name() == dialectPostgres {
		return dialectPostgres
	}

	return dialectSQLite
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, m *metrics.Metrics, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			recordPoolStats(m, cur)

			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration

			if waitDelta > 0 {
				attrs := []slog.Attr{
					slog.Int64("waitCountDelta", waitDelta),
					slog.Duration("waitDurationDelta", waitDurationDelta),
					slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
					slog.Int("maxOpenConns", cur.MaxOpenConnections),
					slog.Int("openConns", cur.OpenConnections),
					slog.Int("inUseConns", cur.InUse),
					slog.Int("idleConns", cur.Idle),
				}
				if waitDurationDelta >= dbPoolWarnDurationThreshold {
					logger.LogAttrs(ctx, slog.LevelWarn, "Store pool wait detected", attrs...)
				} else {
					logger.LogAttrs(ctx, slog.LevelDebug, "Store pool wait observed", attrs...)
				}
			}

			prev = cur
		}
	}
}

func recordPoolStats(m *metrics.Metrics, stats sql.DBStats) {
	if m == nil {
		return
	}

	m.DBPoolOpen.Set(float64(stats.OpenConnections))
	m.DBPoolInUse.Set(float64(stats.InUse))
	m.DBPoolIdle.Set(float64(stats.Idle))
	m.DBPoolWaited.Set(float64(stats.WaitCount))
}
