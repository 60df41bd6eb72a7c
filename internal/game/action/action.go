// Package action defines the Action value type, the YAML action catalog,
// per-actor weighted pools and the combo sequencer.
package action

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

// Kind is what an action does.
type Kind string

const (
	Attack   Kind = "attack"
	Heal     Kind = "heal"
	Buff     Kind = "buff"
	Debuff   Kind = "debuff"
	Interact Kind = "interact"
	Move     Kind = "move"
	UseItem  Kind = "use_item"
	Spell    Kind = "spell"
)

// Damaging reports whether hits of this kind deal damage.
func (k Kind) Damaging() bool {
	return k == Attack || k == Spell
}

func (k Kind) valid() bool {
	switch k {
	case Attack, Heal, Buff, Debuff, Interact, Move, UseItem, Spell:
		return true
	}
	return false
}

// Target is the shape of an action's target set.
type Target string

const (
	Self          Target = "self"
	SingleTarget  Target = "single_target"
	AreaOfEffect  Target = "area_of_effect"
	Environment   Target = "environment"
	SelfAndTarget Target = "self_and_target"
)

func (t Target) valid() bool {
	switch t {
	case Self, SingleTarget, AreaOfEffect, Environment, SelfAndTarget:
		return true
	}
	return false
}

// NotInCombo is the ComboOrder of actions outside the combo chain.
const NotInCombo = -1

// Advanced bundles the less common mechanics an action may carry.
// Zero values disable each mechanic.
type Advanced struct {
	MultiHitCount         int     `yaml:"multi_hit_count"`
	MultiHitDamagePercent float64 `yaml:"multi_hit_damage_percent"`
	SelfDamagePercent     int     `yaml:"self_damage_percent"`
	RollBonus             int     `yaml:"roll_bonus"`
	HealAmount            int     `yaml:"heal_amount"`

	StatBonus         int    `yaml:"stat_bonus"`
	StatBonusType     string `yaml:"stat_bonus_type"`
	StatBonusDuration int    `yaml:"stat_bonus_duration"`

	SkipNextTurn         bool `yaml:"skip_next_turn"`
	GuaranteeNextSuccess bool `yaml:"guarantee_next_success"`
	RepeatLastAction     bool `yaml:"repeat_last_action"`
	ExtraAttacks         int  `yaml:"extra_attacks"`

	ComboAmplifierMultiplier float64 `yaml:"combo_amplifier_multiplier"`
	EnemyRollPenalty         int     `yaml:"enemy_roll_penalty"`

	// HealthThreshold applies ConditionalDamageMultiplier when the target's
	// health fraction is at or below it.
	HealthThreshold             float64 `yaml:"health_threshold"`
	ConditionalDamageMultiplier float64 `yaml:"conditional_damage_multiplier"`

	ExtraDamage          int     `yaml:"extra_damage"`
	ExtraDamageDecay     int     `yaml:"extra_damage_decay"`
	DamageReduction      float64 `yaml:"damage_reduction"`
	DamageReductionDecay float64 `yaml:"damage_reduction_decay"`

	ResetEnemyCombo bool `yaml:"reset_enemy_combo"`
	StunEnemy       bool `yaml:"stun_enemy"`
	StunDuration    int  `yaml:"stun_duration"`

	LengthReduction         float64 `yaml:"length_reduction"`
	LengthReductionDuration int     `yaml:"length_reduction_duration"`

	ComboBonusAmount   int `yaml:"combo_bonus_amount"`
	ComboBonusDuration int `yaml:"combo_bonus_duration"`
}

// Action is one flat, data-loaded action template.
//
// Invariant: after Validate succeeds the only field mutated during play is
// the current cooldown, reached through the cooldown methods.
type Action struct {
	Name             string         `yaml:"name"`
	Description      string         `yaml:"description"`
	Kind             Kind           `yaml:"kind"`
	Target           Target         `yaml:"target"`
	Cooldown         int            `yaml:"cooldown"`
	DamageMultiplier float64        `yaml:"damage_multiplier"`
	Length           float64        `yaml:"length"`
	ComboOrder       int            `yaml:"combo_order"`
	IsComboAction    bool           `yaml:"combo"`
	Effects          []effect.Kind  `yaml:"effects"`
	RollMods         dice.Modifiers `yaml:"roll_mods"`
	Triggers         Triggers       `yaml:"triggers"`
	Routing          Routing        `yaml:"routing"`
	Advanced         Advanced       `yaml:"advanced"`
	Tags             []string       `yaml:"tags"`
	// Damage is a dice expression used by hazards instead of stats.
	Damage string `yaml:"damage"`

	currentCooldown int
	synthetic       bool
}

// CurrentCooldown returns the turns left before the action is usable again.
func (a *Action) CurrentCooldown() int {
	return a.currentCooldown
}

// SetCurrentCooldown sets the remaining cooldown, clamping negatives to 0.
//
// Postcondition: CurrentCooldown() >= 0.
func (a *Action) SetCurrentCooldown(n int) {
	a.currentCooldown = max(n, 0)
}

// TickCooldown counts the cooldown down by one owner turn.
func (a *Action) TickCooldown() {
	a.SetCurrentCooldown(a.currentCooldown - 1)
}

// StartCooldown resets the current cooldown to Cooldown after use.
func (a *Action) StartCooldown() {
	a.SetCurrentCooldown(a.Cooldown)
}

// Ready reports whether the action is off cooldown.
func (a *Action) Ready() bool {
	return a.currentCooldown == 0
}

// Synthetic reports whether the action was made up at runtime rather than
// loaded from the catalog.
func (a *Action) Synthetic() bool {
	return a.synthetic
}

// Causes reports whether the action inflicts k.
func (a *Action) Causes(k effect.Kind) bool {
	return slices.Contains(a.Effects, k)
}

// HasTag reports whether tag is present.
func (a *Action) HasTag(tag string) bool {
	return slices.Contains(a.Tags, tag)
}

// InCombo reports whether the action belongs to a combo chain.
func (a *Action) InCombo() bool {
	return a.IsComboAction || a.ComboOrder > 0
}

// LengthFactor is the speed multiplier for this action; non-positive lengths count as 1.
func (a *Action) LengthFactor() float64 {
	if a == nil || a.Length <= 0 {
		return 1.0
	}
	return a.Length
}

// Clone returns an independent copy with a fresh cooldown.
func (a *Action) Clone() *Action {
	c := *a
	c.Effects = slices.Clone(a.Effects)
	c.Tags = slices.Clone(a.Tags)
	c.Triggers.Conditions = slices.Clone(a.Triggers.Conditions)
	c.currentCooldown = 0
	return &c
}

// Validate checks the static fields and fills defaults for omitted ones.
func (a *Action) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("action: name must not be empty")
	}
	if a.Kind == "" {
		a.Kind = Attack
	}
	if !a.Kind.valid() {
		return fmt.Errorf("action %q: unknown kind %q", a.Name, a.Kind)
	}
	if a.Target == "" {
		a.Target = SingleTarget
	}
	if !a.Target.valid() {
		return fmt.Errorf("action %q: unknown target %q", a.Name, a.Target)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("action %q: cooldown must not be negative", a.Name)
	}
	if a.DamageMultiplier == 0 {
		a.DamageMultiplier = 1.0
	}
	if a.DamageMultiplier < 0 || a.Length < 0 {
		return fmt.Errorf("action %q: damage_multiplier and length must not be negative", a.Name)
	}
	if a.Length == 0 {
		a.Length = 1.0
	}
	if a.ComboOrder == 0 && !a.IsComboAction {
		a.ComboOrder = NotInCombo
	}
	for _, k := range a.Effects {
		if !k.Valid() {
			return fmt.Errorf("action %q: unknown effect %q", a.Name, k)
		}
	}
	if err := a.RollMods.Validate(); err != nil {
		return fmt.Errorf("action %q: roll_mods: %w", a.Name, err)
	}
	if err := a.Routing.Validate(); err != nil {
		return fmt.Errorf("action %q: routing: %w", a.Name, err)
	}
	if err := a.Triggers.Validate(); err != nil {
		return fmt.Errorf("action %q: triggers: %w", a.Name, err)
	}
	if a.Damage != "" {
		if _, err := dice.Parse(a.Damage); err != nil {
			return fmt.Errorf("action %q: damage: %w", a.Name, err)
		}
	}
	if a.Advanced.SelfDamagePercent < 0 || a.Advanced.SelfDamagePercent > 100 {
		return fmt.Errorf("action %q: self_damage_percent must be within [0, 100]", a.Name)
	}
	if a.Advanced.LengthReduction < 0 || a.Advanced.LengthReduction >= 1 {
		if a.Advanced.LengthReduction != 0 {
			return fmt.Errorf("action %q: length_reduction must be within [0, 1)", a.Name)
		}
	}
	return nil
}

// BasicAttackName names the synthesized basic attack.
const BasicAttackName = "BASIC ATTACK"

// NewBasicAttack synthesizes the plain attack used when a pool has none.
func NewBasicAttack() *Action {
	return &Action{
		Name:             BasicAttackName,
		Kind:             Attack,
		Target:           SingleTarget,
		DamageMultiplier: 1.0,
		Length:           1.0,
		ComboOrder:       NotInCombo,
		synthetic:        true,
	}
}

// EmergencyComboName names the synthesized fallback combo action.
const EmergencyComboName = "DESPERATE STRIKE"

// NewEmergencyCombo synthesizes a one-off combo action for actors whose
// data carries no combo-capable action.
func NewEmergencyCombo() *Action {
	return &Action{
		Name:             EmergencyComboName,
		Kind:             Attack,
		Target:           SingleTarget,
		DamageMultiplier: 1.2,
		Length:           1.0,
		ComboOrder:       1,
		IsComboAction:    true,
		synthetic:        true,
	}
}
