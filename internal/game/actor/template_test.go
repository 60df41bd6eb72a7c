package actor_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
)

const actionsYAML = `
actions:
  - name: Slash
  - name: Rend
    combo: true
    combo_order: 1
  - name: Surge
    combo: true
    combo_order: 2
  - name: Arcane Bolt
    kind: spell
  - name: Staff Sweep
  - name: Rockfall
    damage: 2d4
`

const heroYAML = `
name: Mira
kind: hero
stats: {strength: 3, agility: 2, technique: 6, intelligence: 14}
max_health: 40
armor: 1
weapon: {type: wand, damage: 2, speed: 1.2}
actions:
  - {action: Slash, weight: 3}
  - {action: Rend}
  - {action: Surge}
combo: [Surge, Rend]
unique_actions_by_weapon:
  wand: [Arcane Bolt]
  staff: [Staff Sweep]
unique_action_chance: 0.2
`

func catalog(t *testing.T) *action.Catalog {
	t.Helper()
	c, err := action.LoadCatalogFromBytes([]byte(actionsYAML))
	require.NoError(t, err)
	return c
}

func TestTemplate_BuildHero(t *testing.T) {
	tmpl, err := actor.LoadTemplateFromBytes([]byte(heroYAML))
	require.NoError(t, err)

	a, err := tmpl.Build(catalog(t), actor.DefaultTuning(), 0.05)
	require.NoError(t, err)
	h, ok := a.(*actor.Hero)
	require.True(t, ok)

	assert.Equal(t, 3, h.State().Pool().Len())
	first, ok := h.State().Combo().Current()
	require.True(t, ok)
	assert.Equal(t, "Surge", first.Name, "explicit combo order wins")
	require.Len(t, h.UniqueActions, 1)
	assert.Equal(t, "Arcane Bolt", h.UniqueActions[0].Name, "only the equipped weapon's unique actions apply")
	assert.InDelta(t, 0.2, h.UniqueChance, 1e-9)
	assert.Equal(t, 2, h.WeaponDamage)
}

func TestTemplate_DerivedComboAndEnemy(t *testing.T) {
	tmpl := &actor.Template{
		Name:      "Ghoul",
		Kind:      actor.KindEnemy,
		MaxHealth: 15,
		Speed:     1.5,
		Actions:   []actor.PoolEntry{{Action: "Slash"}, {Action: "Surge"}, {Action: "Rend"}},
	}
	a, err := tmpl.Build(catalog(t), actor.DefaultTuning(), 0)
	require.NoError(t, err)
	e, ok := a.(*actor.Enemy)
	require.True(t, ok)
	assert.Equal(t, 2, e.State().Combo().Len())
	first, _ := e.State().Combo().Current()
	assert.Equal(t, "Rend", first.Name)
	assert.InDelta(t, 1.5, e.AttackSpeed, 1e-9)
}

func TestTemplate_BuildHazard(t *testing.T) {
	tmpl := &actor.Template{Name: "Cave-in", Kind: actor.KindHazard, Speed: 3, HazardAction: "Rockfall"}
	a, err := tmpl.Build(catalog(t), actor.DefaultTuning(), 0)
	require.NoError(t, err)
	hz, ok := a.(*actor.Hazard)
	require.True(t, ok)
	assert.Equal(t, "2d4", hz.Action.Damage)
	assert.True(t, hz.State().Pool().Contains(hz.Action))
}

func TestTemplate_MissingActionIsNotFound(t *testing.T) {
	tmpl := &actor.Template{Name: "Ghost", Kind: actor.KindEnemy, MaxHealth: 5, Actions: []actor.PoolEntry{{Action: "Wail"}}}
	_, err := tmpl.Build(catalog(t), actor.DefaultTuning(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, action.ErrNotFound))
}

func TestTemplate_Validate(t *testing.T) {
	bad := 1.5
	cases := map[string]*actor.Template{
		"no name":    {Kind: actor.KindHero, MaxHealth: 1, Actions: []actor.PoolEntry{{Action: "Slash"}}},
		"bad kind":   {Name: "x", Kind: "dragon"},
		"no health":  {Name: "x", Kind: actor.KindHero, Actions: []actor.PoolEntry{{Action: "Slash"}}},
		"no actions": {Name: "x", Kind: actor.KindEnemy, MaxHealth: 3},
		"hazard":     {Name: "x", Kind: actor.KindHazard},
		"neg armor":  {Name: "x", Kind: actor.KindEnemy, MaxHealth: 3, Armor: -1, Actions: []actor.PoolEntry{{Action: "Slash"}}},
		"bad chance": {Name: "x", Kind: actor.KindHero, MaxHealth: 3, Actions: []actor.PoolEntry{{Action: "Slash"}}, UniqueActionChance: &bad},
	}
	for name, tmpl := range cases {
		assert.Error(t, tmpl.Validate(), name)
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mira.yaml"), []byte(heroYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0644))
	tmpls, err := actor.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, tmpls, 1)
	assert.Equal(t, "Mira", tmpls[0].Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: X\nkind: hero\nwings: 2\n"), 0644))
	_, err = actor.LoadTemplates(dir)
	assert.Error(t, err)
}
