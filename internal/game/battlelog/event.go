// Package battlelog records what happened in a battle as an append-only
// sequence of events.
package battlelog

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

// Type distinguishes resolved actions from turns the loop handled itself.
type Type string

const (
	// TypeAction is one resolved action.
	TypeAction Type = "action"
	// TypeSkip is a turn lost to stun or a skip-turn counter.
	TypeSkip Type = "skip"
	// TypeTick is start-of-turn damage or healing from effects.
	TypeTick Type = "tick"
	// TypeDeath marks an actor leaving the battle.
	TypeDeath Type = "death"
)

// Event is one immutable battle record. Sequence is assigned by the log.
type Event struct {
	Sequence int
	Time     float64
	Type     Type

	Actor  string
	Target string
	Action string
	Kind   string

	Damage     int
	Heal       int
	SelfDamage int
	Hits       int

	Success       bool
	Critical      bool
	CriticalMiss  bool
	Combo         bool
	Basic         bool
	OneShot       bool
	ComboEnded    bool
	ComboStep     int
	NaturalRoll   int
	ModifiedRoll  int
	Bonus         int
	Total         int
	Difficulty    int
	ActorBefore   int
	ActorAfter    int
	TargetBefore  int
	TargetAfter   int
	EffectsAdded  []effect.Kind
	EffectsRemove []effect.Kind
}

// String renders the event as one line.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d t=%.2f ", e.Sequence, e.Time)
	switch e.Type {
	case TypeSkip:
		fmt.Fprintf(&b, "%s loses the turn", e.Actor)
		return b.String()
	case TypeTick:
		fmt.Fprintf(&b, "%s: effects deal %d, heal %d (hp %d -> %d)", e.Actor, e.Damage, e.Heal, e.ActorBefore, e.ActorAfter)
		return b.String()
	case TypeDeath:
		fmt.Fprintf(&b, "%s falls", e.Actor)
		return b.String()
	}

	fmt.Fprintf(&b, "%s uses %s", e.Actor, e.Action)
	if e.Target != "" && e.Target != e.Actor {
		fmt.Fprintf(&b, " on %s", e.Target)
	}
	fmt.Fprintf(&b, " [roll %d", e.NaturalRoll)
	if e.Total != e.NaturalRoll {
		fmt.Fprintf(&b, " total %d", e.Total)
	}
	fmt.Fprintf(&b, " vs %d]", e.Difficulty)

	switch {
	case e.CriticalMiss:
		b.WriteString(" critical miss")
	case !e.Success:
		b.WriteString(" miss")
	case e.Critical:
		b.WriteString(" CRITICAL")
	}
	if e.Damage > 0 {
		fmt.Fprintf(&b, " %d damage", e.Damage)
		if e.Hits > 1 {
			fmt.Fprintf(&b, " in %d hits", e.Hits)
		}
		fmt.Fprintf(&b, " (hp %d -> %d)", e.TargetBefore, e.TargetAfter)
	}
	if e.Heal > 0 {
		fmt.Fprintf(&b, " heals %d (hp %d -> %d)", e.Heal, e.TargetBefore, e.TargetAfter)
	}
	if e.SelfDamage > 0 {
		fmt.Fprintf(&b, " takes %d back", e.SelfDamage)
	}
	if e.Combo {
		fmt.Fprintf(&b, " combo step %d", e.ComboStep)
	}
	if e.ComboEnded {
		b.WriteString(" (combo ends)")
	}
	if e.OneShot {
		b.WriteString(" ONE-SHOT")
	}
	if len(e.EffectsAdded) > 0 {
		names := make([]string, len(e.EffectsAdded))
		for i, k := range e.EffectsAdded {
			names[i] = string(k)
		}
		fmt.Fprintf(&b, " +%s", strings.Join(names, ","))
	}
	return b.String()
}
