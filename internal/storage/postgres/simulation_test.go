package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
	"github.com/cory-johannsen/dungeonfighter/internal/storage/postgres"
	"github.com/cory-johannsen/dungeonfighter/internal/testutil"
)

func setupRepo(t *testing.T) *postgres.SimulationRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.Health(context.Background()))
	return pc.Pool.Simulations()
}

func makeReport(scenario string, started time.Time) simulation.Report {
	return simulation.Report{
		RunID:         uuid.NewString(),
		Scenario:      scenario,
		Seed:          1<<63 + 7,
		Workers:       4,
		Started:       started,
		Elapsed:       1500 * time.Millisecond,
		HeroWins:      2,
		EnemyWins:     1,
		TotalTurns:    57,
		TotalDuration: 61.25,
		Heroes:        simulation.SideStats{Actions: 30, Hits: 21, Misses: 9, CriticalHits: 3, DamageDealt: 140, Kills: 4},
		Enemies:       simulation.SideStats{Actions: 27, Hits: 12, Misses: 15, DamageDealt: 80, Deaths: 4},
		Battles: []simulation.BattleSummary{
			{Index: 0, Seed: 11, Outcome: battle.HeroesWin, Turns: 20, Duration: 21.5},
			{Index: 1, Seed: 12, Outcome: battle.EnemiesWin, Turns: 18, Duration: 19.75},
			{Index: 2, Seed: 13, Outcome: battle.HeroesWin, Turns: 19, Duration: 20},
		},
	}
}

func TestSimulationRepository_RoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	want := makeReport("ambush", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.SaveRun(ctx, want))

	got, err := repo.GetRun(ctx, want.RunID)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.Heroes, got.Heroes)
	assert.Equal(t, want.Enemies, got.Enemies)
	assert.Equal(t, want.Battles, got.Battles)
	assert.Equal(t, want.Elapsed, got.Elapsed)
	assert.True(t, want.Started.Equal(got.Started))
	assert.InDelta(t, want.HeroWinRate(), got.HeroWinRate(), 1e-9)

	assert.ErrorIs(t, repo.SaveRun(ctx, want), postgres.ErrRunExists)
}

func TestPool_SaveReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	rep := makeReport("ambush", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, pc.Pool.SaveReport(ctx, rep))
	got, err := pc.Pool.Simulations().GetRun(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Len(t, got.Battles, len(rep.Battles))

	pc.Pool.Close()
	err = pc.Pool.SaveReport(ctx, makeReport("ambush", time.Now()))
	assert.ErrorIs(t, err, postgres.ErrUnhealthy)
}

func TestNewPool_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := postgres.NewPool(ctx, config.DatabaseConfig{
		Host:          "127.0.0.1",
		Port:          1,
		User:          "df",
		Name:          "df",
		SSLMode:       "disable",
		MaxConns:      1,
		HealthTimeout: 2 * time.Second,
	}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, postgres.ErrUnhealthy)
}

func TestSimulationRepository_NotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrRunNotFound)
	_, err = repo.GetRun(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, postgres.ErrRunNotFound)
	assert.ErrorIs(t, repo.DeleteRun(ctx, uuid.NewString()), postgres.ErrRunNotFound)
}

func TestSimulationRepository_ListAndDelete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	older := makeReport("siege", base.Add(-time.Hour))
	newer := makeReport("siege", base)
	require.NoError(t, repo.SaveRun(ctx, older))
	require.NoError(t, repo.SaveRun(ctx, newer))
	require.NoError(t, repo.SaveRun(ctx, makeReport("ambush", base)))

	runs, err := repo.ListRuns(ctx, "siege", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, older.RunID, runs[1].RunID)
	assert.Empty(t, runs[0].Battles)

	require.NoError(t, repo.DeleteRun(ctx, older.RunID))
	_, err = repo.GetRun(ctx, older.RunID)
	assert.ErrorIs(t, err, postgres.ErrRunNotFound)
}
