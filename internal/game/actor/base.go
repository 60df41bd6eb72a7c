package actor

import (
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

// Base is the combat state every variant shares.
//
// Invariant: 0 <= health <= maxHealth.
type Base struct {
	name      string
	kind      Kind
	side      Side
	Stats     Stats
	health    int
	maxHealth int
	armor     int
	// WeaponDamage adds to strength for damage.
	WeaponDamage int
	Tags         []string

	pool    *action.Pool
	combo   *action.Sequence
	effects *effect.ActiveSet
	tuning  Tuning

	Transient Transient
	Record    Record
}

// NewBase creates the shared state. maxHealth below 1 is raised to 1 and
// negative armor to 0.
func NewBase(name string, kind Kind, side Side, stats Stats, maxHealth, armor int, tuning Tuning) *Base {
	maxHealth = max(maxHealth, 1)
	return &Base{
		name:      name,
		kind:      kind,
		side:      side,
		Stats:     stats,
		health:    maxHealth,
		maxHealth: maxHealth,
		armor:     max(armor, 0),
		pool:      action.NewPool(),
		combo:     action.NewSequence(nil),
		effects:   effect.NewActiveSet(),
		tuning:    tuning,
	}
}

func (b *Base) Name() string { return b.name }
func (b *Base) Kind() Kind   { return b.kind }
func (b *Base) Side() Side   { return b.side }
func (b *Base) State() *Base { return b }

// IsAlive reports health > 0.
func (b *Base) IsAlive() bool { return b.health > 0 }

func (b *Base) Health() int    { return b.health }
func (b *Base) MaxHealth() int { return b.maxHealth }

// HealthFraction is health / maxHealth.
func (b *Base) HealthFraction() float64 {
	return float64(b.health) / float64(b.maxHealth)
}

// SetHealth clamps n into [0, MaxHealth].
func (b *Base) SetHealth(n int) {
	b.health = min(max(n, 0), b.maxHealth)
}

// ApplyDamage removes n health and returns the amount actually removed.
// Negative damage is treated as zero.
//
// Postcondition: Health() >= 0.
func (b *Base) ApplyDamage(n int) int {
	n = max(n, 0)
	before := b.health
	b.SetHealth(b.health - n)
	return before - b.health
}

// Heal restores n health and returns the amount actually restored.
//
// Postcondition: Health() <= MaxHealth().
func (b *Base) Heal(n int) int {
	n = max(n, 0)
	before := b.health
	b.SetHealth(b.health + n)
	return b.health - before
}

// Pool is the actor's owned actions.
func (b *Base) Pool() *action.Pool { return b.pool }

// Combo is the actor's combo chain.
func (b *Base) Combo() *action.Sequence { return b.combo }

// SetCombo replaces the combo chain.
func (b *Base) SetCombo(s *action.Sequence) { b.combo = s }

// Effects is the actor's status-effect counters.
func (b *Base) Effects() *effect.ActiveSet { return b.effects }

// Tuning returns the speed and roll constants the actor was built with.
func (b *Base) Tuning() Tuning { return b.tuning }

// Armor is base armor plus effect and temporary modifiers, never negative.
func (b *Base) Armor() int {
	return max(b.armor+effect.ArmorModifier(b.effects)+b.Transient.modifier(StatArmor), 0)
}

// Strength includes stat drain and temporary modifiers, never negative.
func (b *Base) Strength() int {
	return max(b.Stats.Strength+effect.StrengthModifier(b.effects)+b.Transient.modifier(StatStrength), 0)
}

// Agility includes temporary modifiers, never negative.
func (b *Base) Agility() int {
	return max(b.Stats.Agility+b.Transient.modifier(StatAgility), 0)
}

// Technique includes temporary modifiers, never negative.
func (b *Base) Technique() int {
	return max(b.Stats.Technique+b.Transient.modifier(StatTechnique), 0)
}

// Intelligence includes temporary modifiers, never negative.
func (b *Base) Intelligence() int {
	return max(b.Stats.Intelligence+b.Transient.modifier(StatIntelligence), 0)
}

// DamageBase is strength plus weapon damage.
func (b *Base) DamageBase() int {
	return b.Strength() + b.WeaponDamage
}

// IsStunned reports whether an effect prevents acting this turn.
func (b *Base) IsStunned() bool {
	return effect.SkipsTurn(b.effects)
}

// rollBonus is the stat and transient part of RollBonusContribution.
func (b *Base) rollBonus() int {
	bonus := effect.RollModifier(b.effects) + b.Transient.modifier(StatRoll) - b.Transient.RollPenalty
	if per := b.tuning.IntelligencePerRollBonus; per > 0 {
		bonus += b.Intelligence() / per
	}
	return bonus
}

// speed applies the agility reduction, clamped to the floor, to base and then
// the transient multipliers.
func (b *Base) speed(base float64) float64 {
	factor := 1 - float64(b.Agility())*b.tuning.AgilityReduction
	if factor < b.tuning.SpeedFloor {
		factor = b.tuning.SpeedFloor
	}
	return base * factor * effect.SpeedMultiplier(b.effects) * b.Transient.lengthFactor()
}

// EndTurn ticks every per-turn counter the actor owns and returns the
// effects that expired.
func (b *Base) EndTurn() []effect.Kind {
	b.pool.TickCooldowns()
	b.Transient.tick()
	return b.effects.Tick()
}
