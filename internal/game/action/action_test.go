package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

func TestAction_CooldownNeverNegative_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := &action.Action{Name: "x", Cooldown: rapid.IntRange(0, 5).Draw(rt, "cd")}
		a.SetCurrentCooldown(rapid.IntRange(-100, 100).Draw(rt, "set"))
		assert.GreaterOrEqual(rt, a.CurrentCooldown(), 0)
		for i := rapid.IntRange(0, 10).Draw(rt, "ticks"); i > 0; i-- {
			a.TickCooldown()
			assert.GreaterOrEqual(rt, a.CurrentCooldown(), 0)
		}
	})
}

func TestAction_CooldownLifecycle(t *testing.T) {
	a := &action.Action{Name: "Cleave", Cooldown: 2}
	assert.True(t, a.Ready())
	a.StartCooldown()
	assert.Equal(t, 2, a.CurrentCooldown())
	assert.False(t, a.Ready())
	a.TickCooldown()
	a.TickCooldown()
	assert.True(t, a.Ready())
	a.SetCurrentCooldown(-4)
	assert.Equal(t, 0, a.CurrentCooldown())
}

func TestAction_ValidateDefaults(t *testing.T) {
	a := &action.Action{Name: "Poke"}
	require.NoError(t, a.Validate())
	assert.Equal(t, action.Attack, a.Kind)
	assert.Equal(t, action.SingleTarget, a.Target)
	assert.Equal(t, 1.0, a.DamageMultiplier)
	assert.Equal(t, 1.0, a.Length)
	assert.Equal(t, action.NotInCombo, a.ComboOrder)
	assert.False(t, a.InCombo())
}

func TestAction_ValidateRejects(t *testing.T) {
	cases := map[string]*action.Action{
		"no name":        {},
		"bad kind":       {Name: "a", Kind: "dance"},
		"bad target":     {Name: "a", Target: "everyone"},
		"neg cooldown":   {Name: "a", Cooldown: -1},
		"bad effect":     {Name: "a", Effects: []effect.Kind{"frostbite"}},
		"bad roll mods":  {Name: "a", RollMods: dice.Modifiers{RerollChance: 3}},
		"bad routing":    {Name: "a", Routing: action.Routing{Directive: action.RouteJumpToSlot}},
		"bad trigger":    {Name: "a", Triggers: action.Triggers{Conditions: []action.Condition{"on_tuesday"}}},
		"bad damage":     {Name: "a", Damage: "lots"},
		"bad self dmg":   {Name: "a", Advanced: action.Advanced{SelfDamagePercent: 150}},
		"bad length red": {Name: "a", Advanced: action.Advanced{LengthReduction: 1.5}},
	}
	for name, a := range cases {
		assert.Error(t, a.Validate(), name)
	}
}

func TestAction_CloneIsIndependent(t *testing.T) {
	a := &action.Action{Name: "Jab", Cooldown: 3, Effects: []effect.Kind{effect.Bleed}}
	a.StartCooldown()
	c := a.Clone()
	assert.Equal(t, 0, c.CurrentCooldown())
	c.Effects[0] = effect.Burn
	assert.True(t, a.Causes(effect.Bleed))
	assert.NotSame(t, a, c)
}

func TestSynthesizedActions(t *testing.T) {
	b := action.NewBasicAttack()
	assert.True(t, b.Synthetic())
	assert.False(t, b.InCombo())
	e := action.NewEmergencyCombo()
	assert.True(t, e.Synthetic())
	assert.True(t, e.InCombo())
	assert.Equal(t, 1.0, (*action.Action)(nil).LengthFactor())
}

func TestTriggers_Matches(t *testing.T) {
	assert.True(t, action.Triggers{}.Unconditional())
	assert.True(t, action.Triggers{}.Matches(action.Facts{}))

	crit := action.Triggers{Conditions: []action.Condition{action.OnHit, action.OnCritical}}
	assert.True(t, crit.Matches(action.Facts{Hit: true, Critical: true}))
	assert.False(t, crit.Matches(action.Facts{Hit: true}))

	exact := action.Triggers{ExactRoll: 7}
	assert.True(t, exact.Matches(action.Facts{Natural: 7}))
	assert.False(t, exact.Matches(action.Facts{Natural: 8}))

	tagged := action.Triggers{RequiredTag: "berserk", MinComboStep: 2}
	assert.False(t, tagged.Matches(action.Facts{SourceTags: []string{"berserk"}, ComboStep: 1}))
	assert.True(t, tagged.Matches(action.Facts{SourceTags: []string{"berserk"}, ComboStep: 2}))

	low := action.Triggers{Conditions: []action.Condition{action.OnLowHP, action.OnMiss}}
	assert.True(t, low.Matches(action.Facts{TargetHealthF: 0.2}))
	assert.False(t, action.Triggers{Script: "x"}.Unconditional())
}

func TestRouting_String(t *testing.T) {
	assert.Equal(t, "next", action.Routing{}.String())
	assert.Equal(t, "jump_to_slot(2)", action.Routing{Directive: action.RouteJumpToSlot, Slot: 2}.String())
	assert.Error(t, action.Routing{Directive: action.RouteSkipNext, Slot: 3}.Validate())
	assert.Error(t, action.Routing{Directive: "teleport"}.Validate())
}
