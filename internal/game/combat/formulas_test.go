package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/combat"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

func TestCheckHit(t *testing.T) {
	th := config.DefaultCombat().Thresholds
	cases := []struct {
		name       string
		natural    int
		total      int
		difficulty int
		guaranteed bool
		mods       dice.Modifiers
		want       combat.HitResult
	}{
		{"critical miss", 1, 1, 0, false, dice.Modifiers{}, combat.CriticalMiss},
		{"below basic", 5, 5, 0, false, dice.Modifiers{}, combat.Miss},
		{"natural 20 beats any difficulty", 20, 20, 40, false, dice.Modifiers{}, combat.CriticalHit},
		{"meets difficulty", 9, 9, 9, false, dice.Modifiers{}, combat.Hit},
		{"under difficulty", 9, 9, 10, false, dice.Modifiers{}, combat.Miss},
		{"hit threshold overrides difficulty", 9, 9, 15, false, dice.Modifiers{HitThreshold: 8}, combat.Hit},
		{"hit threshold can fail", 9, 9, 0, false, dice.Modifiers{HitThreshold: 12}, combat.Miss},
		{"guaranteed ignores critical miss", 1, 1, 10, true, dice.Modifiers{}, combat.Hit},
		{"critical threshold override", 16, 16, 5, false, dice.Modifiers{CriticalThreshold: 16}, combat.CriticalHit},
		{"total reaching critical", 15, 21, 5, false, dice.Modifiers{}, combat.CriticalHit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, combat.CheckHit(tc.natural, tc.total, tc.difficulty, tc.guaranteed, th, tc.mods))
		})
	}
}

func TestCheckHit_Natural20AlwaysLands_Property(t *testing.T) {
	th := config.DefaultCombat().Thresholds
	rapid.Check(t, func(rt *rapid.T) {
		bonus := rapid.IntRange(-5, 10).Draw(rt, "bonus")
		difficulty := rapid.IntRange(0, 60).Draw(rt, "difficulty")
		got := combat.CheckHit(20, 20+bonus, difficulty, false, th, dice.Modifiers{})
		assert.Equal(rt, combat.CriticalHit, got)
	})
}

func TestDifficulty(t *testing.T) {
	assert.Equal(t, 5, combat.Difficulty(3, 4, 2, false))
	assert.Equal(t, 2, combat.Difficulty(3, 4, 2, true))
	assert.Equal(t, 3, combat.Difficulty(3, 4, 0, false))
	assert.Equal(t, 0, combat.Difficulty(-3, -4, 2, false))
}

func TestRollScaling(t *testing.T) {
	rs := config.DefaultCombat().RollScaling
	assert.Equal(t, 2.0, combat.RollScaling(3, true, rs))
	assert.Equal(t, 1.5, combat.RollScaling(15, false, rs))
	assert.Equal(t, 1.25, combat.RollScaling(10, false, rs))
	assert.Equal(t, 1.0, combat.RollScaling(9, false, rs))
}

func TestComboAmplifier(t *testing.T) {
	cc := config.DefaultCombat().Combo
	assert.InDelta(t, 1.0, combat.ComboAmplifier(0, cc), 1e-9)
	assert.InDelta(t, 1.2, combat.ComboAmplifier(20, cc), 1e-9)
	assert.InDelta(t, 1.5, combat.ComboAmplifier(500, cc), 1e-9)

	assert.InDelta(t, 1.0, combat.ComboMultiplier(1.2, 0), 1e-9)
	assert.InDelta(t, 1.44, combat.ComboMultiplier(1.2, 2), 1e-9)
	assert.Zero(t, combat.ComboRollBonus(1.0, 2))
	assert.Equal(t, 2, combat.ComboRollBonus(1.2, 2))
}

func TestRawDamage(t *testing.T) {
	in := combat.DamageInput{Base: 8, ActionMultiplier: 1, ComboMultiplier: 1, RollScaling: 1.25, Armor: 2}
	assert.Equal(t, 8, combat.RawDamage(in))

	in.Extra = 3
	assert.Equal(t, 11, combat.RawDamage(in))

	in = combat.DamageInput{Base: 1, Armor: 50}
	assert.Equal(t, 1, combat.RawDamage(in), "at least one damage")
}

func TestMitigate(t *testing.T) {
	assert.Equal(t, 15, combat.Mitigate(10, 1.5, 0, 0))
	assert.Equal(t, 5, combat.Mitigate(10, 1, 0.5, 0))
	assert.Equal(t, 20, combat.Mitigate(10, 1, 0, 2))
	assert.Equal(t, 1, combat.Mitigate(1, 0.1, 0.9, 0))
	assert.Equal(t, 0, combat.Mitigate(0, 2, 0, 0))
}

func TestHealAmountAndPercent(t *testing.T) {
	assert.Equal(t, 1, combat.HealAmount(0, 0))
	assert.Equal(t, 15, combat.HealAmount(5, 10))
	assert.Equal(t, 2, combat.Percent(10, 25))
	assert.Zero(t, combat.Percent(-3, 25))
}
