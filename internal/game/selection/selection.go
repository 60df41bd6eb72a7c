// Package selection turns one d20 roll into the action an actor takes this
// turn.
package selection

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

// Outcome is the bucket a roll lands in.
type Outcome int

const (
	// None means the actor does nothing this turn.
	None Outcome = iota
	Basic
	// BasicExpectedMiss still attacks but the total is below the basic
	// threshold, so the hit check will fail.
	BasicExpectedMiss
	Combo
)

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case Basic:
		return "basic"
	case BasicExpectedMiss:
		return "basic_expected_miss"
	case Combo:
		return "combo"
	}
	return "unknown"
}

// Classify buckets raw + bonus against th and reports whether raw is a
// natural critical.
func Classify(raw, bonus int, stunned bool, th config.ThresholdConfig) (Outcome, bool) {
	if stunned {
		return None, false
	}
	if raw >= th.Natural {
		return Combo, true
	}
	total := raw + bonus
	switch {
	case total >= th.Combo:
		return Combo, false
	case total >= th.Basic:
		return Basic, false
	default:
		return BasicExpectedMiss, false
	}
}

// Selection is the per-turn decision handed to the resolver, which reuses
// RawRoll for its hit check.
type Selection struct {
	Action   *action.Action
	Outcome  Outcome
	Critical bool
	RawRoll  int
	Bonus    int
	// Unique is set when the hero unique-action override fired.
	Unique bool
	// Repeat is set when a pending repeat replaced the selection.
	Repeat bool
}

// IsBasic reports whether the action is a basic attack.
func (s Selection) IsBasic() bool {
	return s.Outcome == Basic || s.Outcome == BasicExpectedMiss
}

// IsCombo reports whether the action came from the combo bucket.
func (s Selection) IsCombo() bool {
	return s.Outcome == Combo
}

// Automaton selects actions for every actor of one battle.
//
// Invariant: src is the battle's own source; the automaton is not safe for
// concurrent use.
type Automaton struct {
	thresholds config.ThresholdConfig
	src        dice.Source
	logger     *zap.Logger
}

// New creates an automaton. A nil logger is replaced by a no-op logger.
func New(thresholds config.ThresholdConfig, src dice.Source, logger *zap.Logger) *Automaton {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Automaton{thresholds: thresholds, src: src, logger: logger}
}

// Select rolls one d20 for a and picks its action.
//
// Postcondition: Outcome == None iff Action == nil.
func (m *Automaton) Select(a actor.Actor) Selection {
	raw := dice.D20(m.src)
	st := a.State()

	if a.Kind() == actor.KindHazard {
		return m.selectHazard(a, raw)
	}

	bonus := 0
	if a.Kind() == actor.KindHero {
		bonus = a.RollBonusContribution()
	}
	th := m.thresholds
	if cur, ok := st.Combo().Peek(); ok && cur.RollMods.ComboThreshold > 0 {
		th.Combo = cur.RollMods.ComboThreshold
	}
	outcome, crit := Classify(raw, bonus, st.IsStunned(), th)
	sel := Selection{Outcome: outcome, Critical: crit, RawRoll: raw, Bonus: bonus}
	if outcome == None {
		return sel
	}

	if outcome == Combo && effect.BlocksCombo(st.Effects()) {
		m.logger.Debug("combo blocked by silence", zap.String("actor", a.Name()))
		sel.Outcome = Basic
	}
	if sel.Outcome == Combo {
		act, ok := m.comboAction(a)
		if ok {
			sel.Action = act
		} else {
			sel.Outcome = Basic
		}
	}
	if sel.IsBasic() {
		sel.Action = m.normalAction(st)
	}

	if h, ok := a.(*actor.Hero); ok && len(h.UniqueActions) > 0 && dice.Chance(m.src, h.UniqueChance) {
		ready := slices.DeleteFunc(slices.Clone(h.UniqueActions), func(u *action.Action) bool { return !u.Ready() })
		if len(ready) > 0 {
			sel.Action = ready[dice.Pick(m.src, len(ready))]
			sel.Unique = true
		}
	}
	if st.Transient.RepeatPending {
		st.Transient.RepeatPending = false
		if last := st.Transient.LastAction; last != nil {
			sel.Action = last
			sel.Repeat = true
		}
	}
	return sel
}

func (m *Automaton) selectHazard(a actor.Actor, raw int) Selection {
	sel := Selection{Outcome: Basic, RawRoll: raw, Critical: raw >= m.thresholds.Natural}
	if h, ok := a.(*actor.Hazard); ok && h.Action != nil {
		sel.Action = h.Action
		return sel
	}
	sel.Action = m.normalAction(a.State())
	return sel
}

// comboAction picks the combo-bucket action. Heroes follow their chain in
// order, enemies pick a usable slot at random. An actor with no chain at all
// falls back to any combo-capable pool action; an enemy then draws from its
// weighted pool. The synthesized emergency combo is the last resort. A chain
// whose slots are all unusable reports false.
func (m *Automaton) comboAction(a actor.Actor) (*action.Action, bool) {
	st := a.State()
	seq := st.Combo()
	if seq.Len() > 0 {
		if a.Kind() == actor.KindEnemy {
			return seq.Random(m.src)
		}
		return seq.Current()
	}
	if act, ok := st.Pool().FirstComboCapable(); ok {
		return act, true
	}
	if a.Kind() == actor.KindEnemy {
		if act, ok := st.Pool().Select(m.src); ok {
			return act, true
		}
	}
	m.logger.Warn("actor has no combo-capable action; using emergency combo",
		zap.String("actor", a.Name()),
	)
	return action.NewEmergencyCombo(), true
}

// normalAction draws the basic-bucket action by weight from the ready
// actions outside the chain, else synthesizes a basic attack.
func (m *Automaton) normalAction(st *actor.Base) *action.Action {
	if act, ok := st.Pool().SelectNormal(m.src); ok {
		return act
	}
	return action.NewBasicAttack()
}
