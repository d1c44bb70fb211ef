package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"atlas-backend/internal/config"
	"atlas-backend/pkg/logger"
)

// ErrNotConfigured is returned when no database host was configured.
// Auth flows treat it the same as an unreachable store: degraded mode.
var ErrNotConfigured = errors.New("database is not configured")

const (
	maxRetries     = 3
	retryDelay     = 1 * time.Second
	connectTimeout = 10 * time.Second
)

// PostgresDB is the process-wide connection handle. The pool is established
// lazily on first Acquire and reused afterwards; the mutex guarantees a
// single in-flight connection attempt shared by concurrent callers.
type PostgresDB struct {
	cfg config.DatabaseConfig

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DatabaseConfig) *PostgresDB {
	return &PostgresDB{cfg: cfg}
}

// Acquire returns the shared pool, connecting on first use. A failed attempt
// leaves the handle unset so a later request can retry.
func (db *PostgresDB) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.pool != nil {
		return db.pool, nil
	}
	if !db.cfg.Configured() {
		return nil, ErrNotConfigured
	}

	pool, err := db.connectWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	db.pool = pool
	return pool, nil
}

func (db *PostgresDB) buildConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		db.cfg.User, db.cfg.Password, db.cfg.Host, db.cfg.Port, db.cfg.Database,
	)
}

func (db *PostgresDB) connectWithRetry(ctx context.Context) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.buildConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = int32(db.cfg.MaxConns)
	poolCfg.MinConns = int32(db.cfg.MinConns)
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err == nil {
				cancel()
				logger.Info("database connected", map[string]interface{}{"attempt": attempt})
				return pool, nil
			}
			pool.Close()
		}
		cancel()
		lastErr = err
		logger.Error(fmt.Sprintf("database connection attempt %d/%d failed", attempt, maxRetries), err)

		if attempt < maxRetries {
			// exponential backoff: 1s, 2s, 4s...
			delay := retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, lastErr)
}

// HealthCheck pings the pool if one exists. A handle that never connected is
// reported unhealthy without triggering a connection attempt.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	db.mu.Lock()
	pool := db.pool
	db.mu.Unlock()

	if pool == nil {
		return errors.New("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
}
