package action

import (
	"fmt"
	"slices"
)

// Condition names a trigger predicate.
type Condition string

const (
	OnHit      Condition = "on_hit"
	OnMiss     Condition = "on_miss"
	OnCritical Condition = "on_critical"
	OnCombo    Condition = "on_combo"
	OnKill     Condition = "on_kill"
	OnLowHP    Condition = "on_low_hp"
)

// Triggers gates an action's status effects and side mechanics. With no
// conditions, no exact roll, no tag and no script the action always triggers.
type Triggers struct {
	Conditions   []Condition `yaml:"conditions"`
	ExactRoll    int         `yaml:"exact_roll"`
	RequiredTag  string      `yaml:"required_tag"`
	MinComboStep int         `yaml:"min_combo_step"`
	// Script names a Lua predicate evaluated by the scripting manager.
	Script string `yaml:"script"`
}

// Validate rejects unknown conditions and out-of-range rolls.
func (t Triggers) Validate() error {
	for _, c := range t.Conditions {
		switch c {
		case OnHit, OnMiss, OnCritical, OnCombo, OnKill, OnLowHP:
		default:
			return fmt.Errorf("unknown condition %q", c)
		}
	}
	if t.ExactRoll < 0 || t.ExactRoll > 20 {
		return fmt.Errorf("exact_roll must be within [0, 20], got %d", t.ExactRoll)
	}
	if t.MinComboStep < 0 {
		return fmt.Errorf("min_combo_step must not be negative")
	}
	return nil
}

// Facts are what a resolution knows when evaluating triggers.
type Facts struct {
	Hit           bool
	Critical      bool
	Combo         bool
	Killed        bool
	Natural       int
	ComboStep     int
	TargetHealthF float64
	SourceTags    []string
}

// lowHealthFraction is the health fraction counted as "low" by OnLowHP.
const lowHealthFraction = 0.3

// Matches evaluates every non-script predicate; all must hold.
func (t Triggers) Matches(f Facts) bool {
	for _, c := range t.Conditions {
		var ok bool
		switch c {
		case OnHit:
			ok = f.Hit
		case OnMiss:
			ok = !f.Hit
		case OnCritical:
			ok = f.Critical
		case OnCombo:
			ok = f.Combo
		case OnKill:
			ok = f.Killed
		case OnLowHP:
			ok = f.TargetHealthF <= lowHealthFraction
		}
		if !ok {
			return false
		}
	}
	if t.ExactRoll > 0 && f.Natural != t.ExactRoll {
		return false
	}
	if t.RequiredTag != "" && !slices.Contains(f.SourceTags, t.RequiredTag) {
		return false
	}
	return f.ComboStep >= t.MinComboStep
}

// Unconditional reports whether the triggers never gate anything.
func (t Triggers) Unconditional() bool {
	return len(t.Conditions) == 0 && t.ExactRoll == 0 && t.RequiredTag == "" &&
		t.MinComboStep == 0 && t.Script == ""
}
