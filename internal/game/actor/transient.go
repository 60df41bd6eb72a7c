package actor

import (
	"slices"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
)

// Stat names a modifiable attribute.
type Stat string

const (
	StatStrength     Stat = "strength"
	StatAgility      Stat = "agility"
	StatTechnique    Stat = "technique"
	StatIntelligence Stat = "intelligence"
	StatArmor        Stat = "armor"
	StatRoll         Stat = "roll"
)

// Modifier is a temporary stat change.
type Modifier struct {
	Stat   Stat
	Amount int
	Turns  int
}

// Transient is the per-battle scratch state of an actor. Counters are in
// owner turns and tick in Base.EndTurn.
type Transient struct {
	// criticalMissTurns > 0 means the next scheduled action costs double.
	criticalMissTurns int

	RollPenalty      int
	rollPenaltyTurns int

	Modifiers []Modifier

	SkipTurns     int
	RepeatPending bool
	GuaranteeHit  bool
	LastAction    *action.Action

	ExtraDamage          int
	ExtraDamageDecay     int
	DamageReduction      float64
	DamageReductionDecay float64

	LengthReduction      float64
	lengthReductionTurns int
}

// SetCriticalMissPenalty flags a one-turn speed-doubling penalty.
func (t *Transient) SetCriticalMissPenalty() {
	t.criticalMissTurns = 1
}

// CriticalMissPending reports whether the penalty is waiting.
func (t *Transient) CriticalMissPending() bool {
	return t.criticalMissTurns > 0
}

// ConsumeCriticalMissPenalty clears the penalty and reports whether it was set.
func (t *Transient) ConsumeCriticalMissPenalty() bool {
	pending := t.criticalMissTurns > 0
	t.criticalMissTurns = 0
	return pending
}

// AddRollPenalty applies a timed roll penalty; the larger penalty and the
// longer duration win.
func (t *Transient) AddRollPenalty(amount, turns int) {
	if amount <= 0 || turns <= 0 {
		return
	}
	t.RollPenalty = max(t.RollPenalty, amount)
	t.rollPenaltyTurns = max(t.rollPenaltyTurns, turns)
}

// AddModifier grants a temporary stat change.
func (t *Transient) AddModifier(stat Stat, amount, turns int) {
	if amount == 0 || turns <= 0 {
		return
	}
	t.Modifiers = append(t.Modifiers, Modifier{Stat: stat, Amount: amount, Turns: turns})
}

// SetLengthReduction shortens the owner's next turns by fraction.
func (t *Transient) SetLengthReduction(fraction float64, turns int) {
	if fraction <= 0 || turns <= 0 {
		return
	}
	t.LengthReduction = min(fraction, 0.9)
	t.lengthReductionTurns = turns
}

// TakeExtraDamage returns the pending extra damage and decays it.
func (t *Transient) TakeExtraDamage() int {
	dmg := t.ExtraDamage
	t.ExtraDamage = max(t.ExtraDamage-t.ExtraDamageDecay, 0)
	if t.ExtraDamageDecay <= 0 {
		t.ExtraDamage = 0
	}
	return dmg
}

// TakeDamageReduction returns the current reduction fraction and decays it.
func (t *Transient) TakeDamageReduction() float64 {
	r := t.DamageReduction
	t.DamageReduction = max(t.DamageReduction-t.DamageReductionDecay, 0)
	return r
}

func (t *Transient) modifier(stat Stat) int {
	total := 0
	for _, m := range t.Modifiers {
		if m.Stat == stat {
			total += m.Amount
		}
	}
	return total
}

func (t *Transient) lengthFactor() float64 {
	if t.lengthReductionTurns > 0 {
		return 1 - t.LengthReduction
	}
	return 1
}

func (t *Transient) tick() {
	if t.rollPenaltyTurns > 0 {
		t.rollPenaltyTurns--
		if t.rollPenaltyTurns == 0 {
			t.RollPenalty = 0
		}
	}
	if t.lengthReductionTurns > 0 {
		t.lengthReductionTurns--
		if t.lengthReductionTurns == 0 {
			t.LengthReduction = 0
		}
	}
	for i := range t.Modifiers {
		t.Modifiers[i].Turns--
	}
	t.Modifiers = slices.DeleteFunc(t.Modifiers, func(m Modifier) bool { return m.Turns <= 0 })
}
