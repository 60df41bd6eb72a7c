package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

// ErrRunNotFound is returned when a simulation run lookup yields no results.
var ErrRunNotFound = errors.New("simulation run not found")

// ErrRunExists is returned when saving a run whose ID is already stored.
var ErrRunExists = errors.New("simulation run already exists")

// SimulationRepository persists simulation reports.
type SimulationRepository struct {
	db *pgxpool.Pool
}

// NewSimulationRepository creates a SimulationRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSimulationRepository(db *pgxpool.Pool) *SimulationRepository {
	return &SimulationRepository{db: db}
}

const runColumns = `id::text, scenario, seed, workers, hero_wins, enemy_wins, draws,
	total_turns, total_duration, hero_stats, enemy_stats, started_at, elapsed_ms`

// SaveRun stores the report and its per-battle rows in one transaction.
//
// Precondition: r.RunID must be a UUID.
// Postcondition: either the run and every battle row are stored, or nothing
// is; a duplicate ID returns ErrRunExists.
func (r *SimulationRepository) SaveRun(ctx context.Context, rep simulation.Report) error {
	id, err := uuid.Parse(rep.RunID)
	if err != nil {
		return fmt.Errorf("run id %q: %w", rep.RunID, err)
	}
	runID := pgtype.UUID{Bytes: id, Valid: true}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO simulation_runs
		 (id, scenario, seed, workers, hero_wins, enemy_wins, draws,
		  total_turns, total_duration, hero_stats, enemy_stats, started_at, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		runID, rep.Scenario, int64(rep.Seed), rep.Workers,
		rep.HeroWins, rep.EnemyWins, rep.Draws,
		rep.TotalTurns, rep.TotalDuration, rep.Heroes, rep.Enemies,
		rep.Started, rep.Elapsed.Milliseconds(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrRunExists
		}
		return fmt.Errorf("inserting simulation run: %w", err)
	}

	rows := make([][]any, 0, len(rep.Battles))
	for _, b := range rep.Battles {
		rows = append(rows, []any{runID, b.Index, int64(b.Seed), string(b.Outcome), b.Turns, b.Duration})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"simulation_battles"},
		[]string{"run_id", "idx", "seed", "outcome", "turns", "duration"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copying battle rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing simulation run: %w", err)
	}
	return nil
}

// GetRun loads a stored report with its battles ordered by index.
//
// Postcondition: returns ErrRunNotFound for an unknown or malformed ID.
func (r *SimulationRepository) GetRun(ctx context.Context, id string) (simulation.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return simulation.Report{}, ErrRunNotFound
	}
	rep, err := scanRun(r.db.QueryRow(ctx,
		`SELECT `+runColumns+` FROM simulation_runs WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return simulation.Report{}, ErrRunNotFound
		}
		return simulation.Report{}, fmt.Errorf("querying simulation run: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT idx, seed, outcome, turns, duration
		 FROM simulation_battles WHERE run_id = $1::uuid ORDER BY idx`, id)
	if err != nil {
		return simulation.Report{}, fmt.Errorf("querying simulation battles: %w", err)
	}
	defer rows.Close()

	rep.Battles = []simulation.BattleSummary{}
	for rows.Next() {
		var (
			b       simulation.BattleSummary
			seed    int64
			outcome string
		)
		if err := rows.Scan(&b.Index, &seed, &outcome, &b.Turns, &b.Duration); err != nil {
			return simulation.Report{}, fmt.Errorf("scanning simulation battle: %w", err)
		}
		b.Seed = uint64(seed)
		b.Outcome = battle.Outcome(outcome)
		rep.Battles = append(rep.Battles, b)
	}
	if err := rows.Err(); err != nil {
		return simulation.Report{}, fmt.Errorf("iterating simulation battles: %w", err)
	}
	return rep, nil
}

// ListRuns returns the most recent runs of a scenario, newest first, without
// their battle rows.
//
// Precondition: limit must be > 0.
func (r *SimulationRepository) ListRuns(ctx context.Context, scenario string, limit int) ([]simulation.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+runColumns+` FROM simulation_runs
		 WHERE scenario = $1 ORDER BY started_at DESC LIMIT $2`,
		scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("listing simulation runs: %w", err)
	}
	defer rows.Close()

	var out []simulation.Report
	for rows.Next() {
		rep, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning simulation run: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating simulation runs: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run and, by cascade, its battles.
func (r *SimulationRepository) DeleteRun(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrRunNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM simulation_runs WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("deleting simulation run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func scanRun(row pgx.Row) (simulation.Report, error) {
	var (
		rep     simulation.Report
		seed    int64
		elapsed int64
		started time.Time
	)
	err := row.Scan(&rep.RunID, &rep.Scenario, &seed, &rep.Workers,
		&rep.HeroWins, &rep.EnemyWins, &rep.Draws,
		&rep.TotalTurns, &rep.TotalDuration, &rep.Heroes, &rep.Enemies,
		&started, &elapsed)
	if err != nil {
		return simulation.Report{}, err
	}
	rep.Seed = uint64(seed)
	rep.Started = started
	rep.Elapsed = time.Duration(elapsed) * time.Millisecond
	return rep, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
