package dice

import (
	"fmt"
	"math"
	"slices"
)

// MultiMode selects how several d20s collapse into one value.
type MultiMode string

const (
	MultiHighest MultiMode = "highest"
	MultiLowest  MultiMode = "lowest"
	MultiSum     MultiMode = "sum"
	MultiAverage MultiMode = "average"
)

// maxExplosions bounds exploding chains so a roll always terminates.
const maxExplosions = 3

// Modifiers are the per-action adjustments to a d20 roll.
//
// Additive is not applied by Apply; it is part of the roll bonus.
// Zero values mean "unchanged" for every field.
type Modifiers struct {
	Additive          int       `yaml:"additive"`
	Multiplier        float64   `yaml:"multiplier"`
	Min               int       `yaml:"min"`
	Max               int       `yaml:"max"`
	RerollChance      float64   `yaml:"reroll_chance"`
	RerollBelow       int       `yaml:"reroll_below"`
	ExplodeAt         int       `yaml:"explode_at"`
	DiceCount         int       `yaml:"dice_count"`
	DiceMode          MultiMode `yaml:"dice_mode"`
	HitThreshold      int       `yaml:"hit_threshold"`
	ComboThreshold    int       `yaml:"combo_threshold"`
	CriticalThreshold int       `yaml:"critical_threshold"`
}

// Validate reports the first inconsistent field.
func (m Modifiers) Validate() error {
	if m.RerollChance < 0 || m.RerollChance > 1 {
		return fmt.Errorf("reroll_chance %v must be within [0, 1]", m.RerollChance)
	}
	if m.Multiplier < 0 {
		return fmt.Errorf("multiplier %v must not be negative", m.Multiplier)
	}
	if m.Min < 0 || m.Max < 0 {
		return fmt.Errorf("min/max must not be negative")
	}
	if m.Min > 0 && m.Max > 0 && m.Min > m.Max {
		return fmt.Errorf("min %d exceeds max %d", m.Min, m.Max)
	}
	if m.DiceCount < 0 {
		return fmt.Errorf("dice_count %d must not be negative", m.DiceCount)
	}
	switch m.DiceMode {
	case "", MultiHighest, MultiLowest, MultiSum, MultiAverage:
	default:
		return fmt.Errorf("unknown dice_mode %q", m.DiceMode)
	}
	if m.ExplodeAt < 0 || m.ExplodeAt > 20 {
		return fmt.Errorf("explode_at %d must be within [0, 20]", m.ExplodeAt)
	}
	return nil
}

// IsZero reports whether Apply would return the natural roll unchanged.
func (m Modifiers) IsZero() bool {
	return m.DiceCount <= 1 && m.RerollChance == 0 && m.ExplodeAt == 0 &&
		(m.Multiplier == 0 || m.Multiplier == 1) && m.Min == 0 && m.Max == 0
}

// Modified is the outcome of running a natural roll through Modifiers.
type Modified struct {
	Natural  int
	Value    int
	Rolls    []int
	Rerolled bool
	Exploded int
}

// Apply runs natural through m, drawing any extra dice from src.
//
// Order: multi-dice, reroll, explode, multiplier, clamp.
// Precondition: natural is in [1, 20].
// Postcondition: Natural == natural; Value respects Min and Max when set.
func Apply(natural int, m Modifiers, src Source) Modified {
	out := Modified{Natural: natural, Value: natural, Rolls: []int{natural}}
	if m.IsZero() {
		return out
	}

	if m.DiceCount > 1 {
		for i := 1; i < m.DiceCount; i++ {
			out.Rolls = append(out.Rolls, D20(src))
		}
		out.Value = combine(out.Rolls, m.DiceMode)
	}

	below := m.RerollBelow
	if below <= 0 {
		below = 10
	}
	if m.RerollChance > 0 && out.Value <= below && Chance(src, m.RerollChance) {
		second := D20(src)
		out.Rolls = append(out.Rolls, second)
		out.Rerolled = true
		out.Value = max(out.Value, second)
	}

	if m.ExplodeAt > 0 {
		last := out.Value
		for out.Exploded < maxExplosions && last >= m.ExplodeAt {
			last = D20(src)
			out.Rolls = append(out.Rolls, last)
			out.Value += last
			out.Exploded++
		}
	}

	if m.Multiplier > 0 && m.Multiplier != 1 {
		out.Value = int(math.Round(float64(out.Value) * m.Multiplier))
	}
	if m.Min > 0 && out.Value < m.Min {
		out.Value = m.Min
	}
	if m.Max > 0 && out.Value > m.Max {
		out.Value = m.Max
	}
	return out
}

func combine(rolls []int, mode MultiMode) int {
	switch mode {
	case MultiLowest:
		return slices.Min(rolls)
	case MultiSum:
		total := 0
		for _, r := range rolls {
			total += r
		}
		return total
	case MultiAverage:
		total := 0
		for _, r := range rolls {
			total += r
		}
		return int(math.Round(float64(total) / float64(len(rolls))))
	default:
		return slices.Max(rolls)
	}
}
