// Package postgres stores simulation reports in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

// ErrUnhealthy is returned by Health when the database does not answer a
// ping within the configured timeout.
var ErrUnhealthy = errors.New("database unhealthy")

// Pool owns the pgx pool behind the simulation store.
type Pool struct {
	pool          *pgxpool.Pool
	healthTimeout time.Duration
	logger        *zap.Logger
}

// NewPool connects to the database described by cfg and pings it once.
//
// Precondition: cfg must pass config validation.
// Postcondition: Returns a connected Pool or a non-nil error; a failed ping
// closes the pool before returning.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	start := time.Now()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: pool, healthTimeout: cfg.HealthTimeout, logger: logger}
	if err := p.Health(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

// Health pings the database, bounded by the configured health timeout.
//
// Postcondition: a nil error means the database answered in time; otherwise
// the error wraps ErrUnhealthy.
func (p *Pool) Health(ctx context.Context) error {
	timeout := p.healthTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// Simulations returns a repository over this pool.
func (p *Pool) Simulations() *SimulationRepository {
	return NewSimulationRepository(p.pool)
}

// SaveReport checks the database is healthy and stores the report.
func (p *Pool) SaveReport(ctx context.Context, rep simulation.Report) error {
	if err := p.Health(ctx); err != nil {
		return fmt.Errorf("saving run %s: %w", rep.RunID, err)
	}
	if err := p.Simulations().SaveRun(ctx, rep); err != nil {
		return err
	}
	p.logger.Debug("simulation run stored", zap.String("run_id", rep.RunID), zap.Int("battles", len(rep.Battles)))
	return nil
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
