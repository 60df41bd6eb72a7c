// Package actor defines the combatants of a battle: the capability interface
// the scheduler and resolver depend on, and its Hero, Enemy and Hazard
// variants.
package actor

import (
	"github.com/cory-johannsen/dungeonfighter/internal/config"
)

// Kind is the concrete variant of an Actor.
type Kind string

const (
	KindHero   Kind = "hero"
	KindEnemy  Kind = "enemy"
	KindHazard Kind = "hazard"
)

// Side groups actors that fight together. Hazards belong to no side.
type Side string

const (
	SideHeroes  Side = "heroes"
	SideEnemies Side = "enemies"
	SideNone    Side = "none"
)

// Stats are the core attributes.
type Stats struct {
	Strength     int `yaml:"strength"`
	Agility      int `yaml:"agility"`
	Technique    int `yaml:"technique"`
	Intelligence int `yaml:"intelligence"`
}

// Tuning is the slice of combat configuration actors need for their own
// speed and roll math.
type Tuning struct {
	AgilityReduction         float64
	SpeedFloor               float64
	IntelligencePerRollBonus int
}

// TuningFrom extracts Tuning from the combat configuration.
func TuningFrom(c config.CombatConfig) Tuning {
	return Tuning{
		AgilityReduction:         c.Speed.AgilityReduction,
		SpeedFloor:               c.Speed.Floor,
		IntelligencePerRollBonus: c.IntelligencePerRollBonus,
	}
}

// DefaultTuning is TuningFrom(config.DefaultCombat()).
func DefaultTuning() Tuning {
	return TuningFrom(config.DefaultCombat())
}

// Actor is the capability set the combat packages dispatch on.
type Actor interface {
	Name() string
	Kind() Kind
	Side() Side
	// EffectiveActionSpeed is the time cost of a length-1 action, with
	// agility, weapon and transient speed effects folded in.
	EffectiveActionSpeed() float64
	// RollBonusContribution is the actor's own additive roll bonus.
	RollBonusContribution() int
	IsAlive() bool
	// State exposes the shared mutable combat state.
	State() *Base
}
