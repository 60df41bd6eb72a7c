package actor

import (
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
)

// Weapon is a hero's equipped weapon.
type Weapon struct {
	Type   string  `yaml:"type"`
	Damage int     `yaml:"damage"`
	Speed  float64 `yaml:"speed"`
}

// Hero is a player-side actor with a weapon and unique actions.
type Hero struct {
	*Base
	Weapon Weapon
	// UniqueActions are the weapon-specific actions available to the
	// unique-action override.
	UniqueActions []*action.Action
	UniqueChance  float64
}

// NewHero creates a hero. A zero weapon speed counts as 1.
func NewHero(name string, stats Stats, maxHealth, armor int, weapon Weapon, tuning Tuning) *Hero {
	if weapon.Speed <= 0 {
		weapon.Speed = 1
	}
	b := NewBase(name, KindHero, SideHeroes, stats, maxHealth, armor, tuning)
	b.WeaponDamage = weapon.Damage
	return &Hero{Base: b, Weapon: weapon}
}

func (h *Hero) EffectiveActionSpeed() float64 {
	return h.speed(h.Weapon.Speed)
}

func (h *Hero) RollBonusContribution() int {
	return h.rollBonus()
}

// Enemy is an opponent-side actor.
type Enemy struct {
	*Base
	AttackSpeed float64
}

// NewEnemy creates an enemy. A zero attack speed counts as 1.
func NewEnemy(name string, stats Stats, maxHealth, armor int, attackSpeed float64, tuning Tuning) *Enemy {
	if attackSpeed <= 0 {
		attackSpeed = 1
	}
	return &Enemy{Base: NewBase(name, KindEnemy, SideEnemies, stats, maxHealth, armor, tuning), AttackSpeed: attackSpeed}
}

func (e *Enemy) EffectiveActionSpeed() float64 {
	return e.speed(e.AttackSpeed)
}

func (e *Enemy) RollBonusContribution() int {
	return e.rollBonus()
}

// Hazard is an environmental actor. It acts on its own timer, cannot be
// damaged and never decides a battle.
type Hazard struct {
	*Base
	Speed  float64
	Action *action.Action
}

// NewHazard creates a hazard acting every speed time units with act.
func NewHazard(name string, speed float64, act *action.Action, tuning Tuning) *Hazard {
	if speed <= 0 {
		speed = 1
	}
	b := NewBase(name, KindHazard, SideNone, Stats{}, 1, 0, tuning)
	if act != nil {
		b.Pool().Add(act, 1)
	}
	return &Hazard{Base: b, Speed: speed, Action: act}
}

func (h *Hazard) EffectiveActionSpeed() float64 {
	return h.Speed
}

func (h *Hazard) RollBonusContribution() int {
	return 0
}

// IsAlive is always true: hazards persist for the whole battle.
func (h *Hazard) IsAlive() bool {
	return true
}

var (
	_ Actor = (*Hero)(nil)
	_ Actor = (*Enemy)(nil)
	_ Actor = (*Hazard)(nil)
)
