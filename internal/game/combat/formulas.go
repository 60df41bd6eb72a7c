// Package combat resolves one selected action against its target.
package combat

import (
	"math"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// TagComboScaling marks actions whose roll bonus grows with combo
// amplification.
const TagComboScaling = "combo_scaling"

// HitResult is the outcome of a hit check.
type HitResult int

const (
	Hit HitResult = iota
	CriticalHit
	Miss
	CriticalMiss
)

// String returns a human-readable label.
func (h HitResult) String() string {
	switch h {
	case Hit:
		return "hit"
	case CriticalHit:
		return "critical hit"
	case Miss:
		return "miss"
	case CriticalMiss:
		return "critical miss"
	default:
		return "unknown"
	}
}

// Landed reports whether the result connects.
func (h HitResult) Landed() bool {
	return h == Hit || h == CriticalHit
}

// Difficulty is the total a roll must reach to hit a defender.
//
// Postcondition: Returns >= 0.
func Difficulty(armor, agility, agilityPerDefense int, ignoreArmor bool) int {
	d := 0
	if !ignoreArmor {
		d = max(armor, 0)
	}
	if agilityPerDefense > 0 {
		d += max(agility, 0) / agilityPerDefense
	}
	return d
}

// CheckHit classifies a roll.
//
// Order: guaranteed success, critical miss, below the basic threshold,
// natural critical, per-action hit threshold, difficulty.
// A landed roll is critical on a natural critical or when total reaches the
// critical threshold (the per-action override when set).
func CheckHit(natural, total, difficulty int, guaranteed bool, th config.ThresholdConfig, mods dice.Modifiers) HitResult {
	critAt := th.Critical
	if mods.CriticalThreshold > 0 {
		critAt = mods.CriticalThreshold
	}
	critical := natural >= th.Natural || total >= critAt

	switch {
	case guaranteed:
	case total <= th.CriticalMiss:
		return CriticalMiss
	case total < th.Basic:
		return Miss
	case natural >= th.Natural:
	case mods.HitThreshold > 0:
		if total < mods.HitThreshold {
			return Miss
		}
	case total < difficulty:
		return Miss
	}
	if critical {
		return CriticalHit
	}
	return Hit
}

// RollScaling is the damage multiplier earned by a roll.
//
// Postcondition: Returns >= 1.
func RollScaling(total int, critical bool, rs config.RollScalingConfig) float64 {
	switch {
	case critical:
		return max(rs.CriticalMultiplier, 1)
	case total >= rs.HighThreshold:
		return max(rs.HighMultiplier, 1)
	case total >= rs.MediumThreshold:
		return max(rs.MediumMultiplier, 1)
	default:
		return 1
	}
}

// ComboAmplifier is the per-step amplifier for an actor with the given
// technique, capped at AmplifierMax.
//
// Postcondition: Returns >= 1 when AmplifierBase >= 1.
func ComboAmplifier(technique int, cc config.ComboConfig) float64 {
	amp := cc.AmplifierBase + float64(max(technique, 0))*cc.PerTechnique
	if cc.AmplifierMax > 0 {
		amp = min(amp, cc.AmplifierMax)
	}
	return amp
}

// ComboMultiplier raises amp to the chain depth. The opener (depth 0) is
// never amplified.
func ComboMultiplier(amp float64, depth int) float64 {
	if depth <= 0 || amp <= 0 {
		return 1
	}
	return math.Pow(amp, float64(depth))
}

// ComboRollBonus converts an amplification multiplier into a roll bonus.
func ComboRollBonus(multiplier, scale float64) int {
	if multiplier <= 1 || scale <= 0 {
		return 0
	}
	return int(math.Floor((multiplier-1)*scale*5 + 1e-9))
}

// DamageInput is everything the base damage formula needs.
type DamageInput struct {
	Base             int
	ActionMultiplier float64
	ComboMultiplier  float64
	RollScaling      float64
	Extra            int
	Armor            int
}

// RawDamage is the damage before defensive multipliers.
//
// Postcondition: Returns >= 1.
func RawDamage(in DamageInput) int {
	mult := in.ActionMultiplier
	if mult <= 0 {
		mult = 1
	}
	combo := max(in.ComboMultiplier, 1)
	scale := max(in.RollScaling, 1)
	dmg := float64(max(in.Base, 0))*mult*combo*scale + float64(max(in.Extra, 0))
	return max(int(math.Round(dmg))-max(in.Armor, 0), 1)
}

// Mitigate applies the defender's damage-taken multiplier, damage reduction
// and the attacker's conditional multiplier.
//
// Postcondition: Returns >= 1 when dmg >= 1.
func Mitigate(dmg int, takenMultiplier, reduction, conditional float64) int {
	f := float64(dmg)
	if takenMultiplier > 0 {
		f *= takenMultiplier
	}
	f *= 1 - min(max(reduction, 0), 0.9)
	if conditional > 0 {
		f *= conditional
	}
	return max(int(math.Round(f)), min(dmg, 1))
}

// HealAmount is the health a heal restores before capping.
//
// Postcondition: Returns >= 1.
func HealAmount(technique, bonus int) int {
	return max(technique+bonus, 1)
}

// Percent returns pct percent of n, rounded down.
func Percent(n int, pct float64) int {
	if n <= 0 || pct <= 0 {
		return 0
	}
	return int(float64(n) * pct / 100)
}
