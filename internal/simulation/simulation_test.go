package simulation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

const catalogYAML = `
actions:
  - name: Slash
    kind: attack
  - name: Rend
    kind: attack
    combo: true
    combo_order: 1
    effects: [bleed]
  - name: Bite
    kind: attack
  - name: Rockfall
    kind: attack
    damage: 1d4
`

func content(t *testing.T) battle.Content {
	c, err := action.LoadCatalogFromBytes([]byte(catalogYAML))
	require.NoError(t, err)
	return battle.Content{Catalog: c, Effects: effect.DefaultRegistry()}
}

func roster() *simulation.Roster {
	heroes := []*actor.Template{{
		Name:      "Aria",
		Kind:      actor.KindHero,
		Stats:     actor.Stats{Strength: 4, Agility: 2, Technique: 8},
		MaxHealth: 40,
		Weapon:    actor.Weapon{Type: "sword", Damage: 3, Speed: 1},
		Actions:   []actor.PoolEntry{{Action: "Slash"}, {Action: "Rend"}},
	}}
	enemies := []*actor.Template{{
		Name:      "Goblin",
		Kind:      actor.KindEnemy,
		Stats:     actor.Stats{Strength: 2},
		MaxHealth: 12,
		Speed:     1.2,
		Actions:   []actor.PoolEntry{{Action: "Bite"}},
	}}
	hazards := []*actor.Template{{Name: "Falling Rocks", Kind: actor.KindHazard, Speed: 3, HazardAction: "Rockfall"}}
	return simulation.NewRoster(heroes, enemies, hazards)
}

func cfg(battles, workers int) config.Config {
	return config.Config{
		Combat:     config.DefaultCombat(),
		Simulation: config.SimulationConfig{Battles: battles, Workers: workers, Seed: 99},
	}
}

var ambush = simulation.Scenario{
	Name:    "ambush",
	Heroes:  []string{"Aria"},
	Enemies: []string{"Goblin", "Goblin"},
	Hazards: []string{"Falling Rocks"},
}

func TestDriver_ResultsIndependentOfWorkerCount(t *testing.T) {
	one, err := simulation.NewDriver(cfg(40, 1), content(t), roster(), nil).Run(context.Background(), ambush)
	require.NoError(t, err)
	four, err := simulation.NewDriver(cfg(40, 4), content(t), roster(), nil).Run(context.Background(), ambush)
	require.NoError(t, err)

	assert.Equal(t, one.Battles, four.Battles)
	assert.Equal(t, one.Heroes, four.Heroes)
	assert.Equal(t, one.Enemies, four.Enemies)
	assert.Equal(t, one.TotalTurns, four.TotalTurns)
	assert.Equal(t, one.TotalDuration, four.TotalDuration)
	assert.NotEqual(t, one.RunID, four.RunID)
}

func TestDriver_ReportTotals(t *testing.T) {
	r, err := simulation.NewDriver(cfg(25, 3), content(t), roster(), nil).Run(context.Background(), ambush)
	require.NoError(t, err)

	assert.Equal(t, 25, r.Count())
	assert.Equal(t, 25, r.HeroWins+r.EnemyWins+r.Draws)
	assert.InDelta(t, 1.0, r.HeroWinRate()+r.EnemyWinRate()+r.DrawRate(), 1e-9)
	assert.Positive(t, r.AverageTurns())
	assert.Positive(t, r.Heroes.Actions)
	for i, b := range r.Battles {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, simulation.BattleSeed(99, i), b.Seed)
	}
}

func TestDriver_UnknownTemplateCannotStart(t *testing.T) {
	sc := simulation.Scenario{Name: "bad", Heroes: []string{"Aria"}, Enemies: []string{"Dragon"}}
	_, err := simulation.NewDriver(cfg(5, 2), content(t), roster(), nil).Run(context.Background(), sc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, battle.ErrCannotStart))
	assert.True(t, errors.Is(err, simulation.ErrUnknownTemplate))
}

func TestDriver_WrongKindCannotStart(t *testing.T) {
	sc := simulation.Scenario{Name: "bad", Heroes: []string{"Goblin"}, Enemies: []string{"Goblin"}}
	_, err := simulation.NewDriver(cfg(5, 2), content(t), roster(), nil).Run(context.Background(), sc)
	assert.True(t, errors.Is(err, battle.ErrCannotStart))
}

func TestDriver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := simulation.NewDriver(cfg(50, 4), content(t), roster(), nil).Run(ctx, ambush)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBattleSeed_Distinct(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sweep := rapid.Uint64().Draw(rt, "sweep")
		i := rapid.IntRange(0, 1<<20).Draw(rt, "i")
		j := rapid.IntRange(0, 1<<20).Draw(rt, "j")
		if i == j {
			assert.Equal(rt, simulation.BattleSeed(sweep, i), simulation.BattleSeed(sweep, j))
			return
		}
		assert.NotEqual(rt, simulation.BattleSeed(sweep, i), simulation.BattleSeed(sweep, j))
	})
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ambush.yaml"), []byte(`
name: ambush
heroes: [Aria]
enemies: [Goblin, Goblin]
hazards: [Falling Rocks]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	scs, err := simulation.LoadScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ambush"}, scs.Names())
	sc, err := scs.Get("ambush")
	require.NoError(t, err)
	assert.Equal(t, ambush, sc)

	_, err = scs.Get("siege")
	assert.ErrorIs(t, err, simulation.ErrUnknownScenario)
}

func TestLoadScenarioFromBytes_Rejects(t *testing.T) {
	for name, src := range map[string]string{
		"unknown field": "name: x\nheroes: [a]\nenemies: [b]\nboss: c\n",
		"no enemies":    "name: x\nheroes: [a]\n",
		"no name":       "heroes: [a]\nenemies: [b]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := simulation.LoadScenarioFromBytes([]byte(src))
			assert.Error(t, err)
		})
	}
}
