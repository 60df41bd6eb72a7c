package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

func def(t *testing.T, k effect.Kind) *effect.Def {
	t.Helper()
	d, ok := effect.DefaultRegistry().Get(k)
	require.True(t, ok, "default registry must define %s", k)
	return d
}

func TestActiveSet_ApplyAndStack(t *testing.T) {
	s := effect.NewActiveSet()
	bleed := def(t, effect.Bleed)
	require.NoError(t, s.Apply(bleed, 2, 3))
	require.NoError(t, s.Apply(bleed, 10, 1))
	assert.Equal(t, bleed.MaxStacks, s.Stacks(effect.Bleed), "stacks cap at MaxStacks")
	assert.Equal(t, 3, s.Remaining(effect.Bleed), "the longer duration wins")
}

func TestActiveSet_Unstackable(t *testing.T) {
	s := effect.NewActiveSet()
	stun := def(t, effect.Stun)
	require.NoError(t, s.Apply(stun, 4, 1))
	require.NoError(t, s.Apply(stun, 4, 2))
	assert.Equal(t, 1, s.Stacks(effect.Stun))
	assert.Equal(t, 2, s.Remaining(effect.Stun))
}

func TestActiveSet_ApplyRejects(t *testing.T) {
	s := effect.NewActiveSet()
	assert.Error(t, s.Apply(nil, 1, 1))
	assert.Error(t, s.Apply(def(t, effect.Cleanse), 1, 1))
	require.NoError(t, s.Apply(def(t, effect.Burn), 1, 0))
	assert.False(t, s.Has(effect.Burn), "zero duration applies nothing")
}

func TestActiveSet_TickExpiresIndependently(t *testing.T) {
	s := effect.NewActiveSet()
	require.NoError(t, s.Apply(def(t, effect.Poison), 1, 1))
	require.NoError(t, s.Apply(def(t, effect.Weaken), 1, 2))
	require.NoError(t, s.Apply(def(t, effect.Fortify), 1, -1))

	assert.Equal(t, []effect.Kind{effect.Poison}, s.Tick())
	assert.True(t, s.Has(effect.Weaken))
	assert.Equal(t, []effect.Kind{effect.Weaken}, s.Tick())
	assert.Empty(t, s.Tick())
	assert.True(t, s.Has(effect.Fortify), "permanent effects never expire")
}

func TestActiveSet_RemoveHarmful(t *testing.T) {
	s := effect.NewActiveSet()
	require.NoError(t, s.Apply(def(t, effect.Poison), 1, 3))
	require.NoError(t, s.Apply(def(t, effect.Bleed), 1, 3))
	require.NoError(t, s.Apply(def(t, effect.Regen), 1, 3))
	assert.Equal(t, []effect.Kind{effect.Bleed, effect.Poison}, s.RemoveHarmful())
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(effect.Regen))
}

func TestActiveSet_Absorb(t *testing.T) {
	s := effect.NewActiveSet()
	require.NoError(t, s.Apply(def(t, effect.Absorb), 1, 3))
	require.NoError(t, s.Apply(def(t, effect.TemporaryHP), 1, 3))
	assert.Equal(t, 0, s.Absorb(12))
	assert.False(t, s.Has(effect.Absorb), "spent shields are removed")
	assert.Equal(t, 2, s.Absorb(5))
	assert.Equal(t, 0, s.Absorb(-3))
}

func TestActiveSet_Absorb_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := effect.NewActiveSet()
		if rapid.Bool().Draw(rt, "shield") {
			d, _ := effect.DefaultRegistry().Get(effect.Absorb)
			_ = s.Apply(d, 1, 2)
		}
		dmg := rapid.IntRange(-10, 100).Draw(rt, "dmg")
		got := s.Absorb(dmg)
		assert.GreaterOrEqual(rt, got, 0)
		assert.LessOrEqual(rt, got, max(dmg, 0))
	})
}

func TestModifiers_Aggregate(t *testing.T) {
	s := effect.NewActiveSet()
	require.NoError(t, s.Apply(def(t, effect.Focus), 1, 2))
	require.NoError(t, s.Apply(def(t, effect.Expose), 1, 2))
	require.NoError(t, s.Apply(def(t, effect.ArmorBreak), 2, 2))
	require.NoError(t, s.Apply(def(t, effect.Weaken), 1, 2))
	require.NoError(t, s.Apply(def(t, effect.Slow), 1, 2))
	require.NoError(t, s.Apply(def(t, effect.Bleed), 3, 2))
	require.NoError(t, s.Apply(def(t, effect.Regen), 1, 2))

	assert.Equal(t, 1, effect.RollModifier(s))
	assert.Equal(t, -6, effect.ArmorModifier(s))
	assert.InDelta(t, 1.5, effect.DamageTakenMultiplier(s), 1e-9)
	assert.InDelta(t, 1.5, effect.SpeedMultiplier(s), 1e-9)
	assert.Equal(t, 6, effect.TickDamage(s))
	assert.Equal(t, 2, effect.TickHeal(s))
	assert.False(t, effect.SkipsTurn(s))

	require.NoError(t, s.Apply(def(t, effect.Stun), 1, 1))
	require.NoError(t, s.Apply(def(t, effect.Silence), 1, 1))
	require.NoError(t, s.Apply(def(t, effect.Pierce), 1, 1))
	assert.True(t, effect.SkipsTurn(s))
	assert.True(t, effect.BlocksCombo(s))
	assert.True(t, effect.IgnoresArmor(s))
}
