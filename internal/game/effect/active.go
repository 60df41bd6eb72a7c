package effect

import (
	"fmt"
	"slices"
	"strings"
)

// Active is one applied effect.
type Active struct {
	Def       *Def
	Stacks    int
	Remaining int // owner turns left; -1 never expires
	Shield    int // unabsorbed shield points
}

// ActiveSet holds the timed counters on one actor.
// It is not safe for concurrent use; a battle owns its actors exclusively.
type ActiveSet struct {
	effects map[Kind]*Active
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{effects: make(map[Kind]*Active)}
}

// Apply adds def or refreshes it.
//
// Re-applying adds stacks up to MaxStacks (unstackable effects stay at one),
// keeps the longer duration and tops up shields.
// Precondition: def is non-nil and not Instant.
// Postcondition: Has(def.ID) unless duration == 0.
func (s *ActiveSet) Apply(def *Def, stacks, duration int) error {
	if def == nil {
		return fmt.Errorf("effect: Apply with nil def")
	}
	if def.Instant {
		return fmt.Errorf("effect: %q is instant and cannot be stored", def.ID)
	}
	if duration == 0 {
		return nil
	}
	if stacks < 1 {
		stacks = 1
	}
	if existing, ok := s.effects[def.ID]; ok {
		if def.MaxStacks > 0 {
			existing.Stacks = min(existing.Stacks+stacks, def.MaxStacks)
		}
		if duration < 0 || (existing.Remaining >= 0 && duration > existing.Remaining) {
			existing.Remaining = duration
		}
		existing.Shield = max(existing.Shield, def.Shield*existing.Stacks)
		return nil
	}
	n := 1
	if def.MaxStacks > 0 {
		n = min(stacks, def.MaxStacks)
	}
	s.effects[def.ID] = &Active{Def: def, Stacks: n, Remaining: duration, Shield: def.Shield * n}
	return nil
}

// Remove deletes k; absent effects are ignored.
func (s *ActiveSet) Remove(k Kind) {
	delete(s.effects, k)
}

// RemoveHarmful deletes every harmful effect and returns their kinds sorted.
func (s *ActiveSet) RemoveHarmful() []Kind {
	var removed []Kind
	for k, a := range s.effects {
		if a.Def.Harmful {
			removed = append(removed, k)
			delete(s.effects, k)
		}
	}
	sortKinds(removed)
	return removed
}

// Tick counts down every timed effect by one owner turn and returns the
// kinds that expired, sorted.
//
// Postcondition: no returned kind is still present.
func (s *ActiveSet) Tick() []Kind {
	var expired []Kind
	for k, a := range s.effects {
		if a.Remaining < 0 {
			continue
		}
		a.Remaining--
		if a.Remaining <= 0 {
			expired = append(expired, k)
			delete(s.effects, k)
		}
	}
	sortKinds(expired)
	return expired
}

// Has reports whether k is active.
func (s *ActiveSet) Has(k Kind) bool {
	_, ok := s.effects[k]
	return ok
}

// Stacks returns the stack count of k, or 0.
func (s *ActiveSet) Stacks(k Kind) int {
	if a, ok := s.effects[k]; ok {
		return a.Stacks
	}
	return 0
}

// Remaining returns the turns left on k, or 0.
func (s *ActiveSet) Remaining(k Kind) int {
	if a, ok := s.effects[k]; ok {
		return a.Remaining
	}
	return 0
}

// Len returns the number of active effects.
func (s *ActiveSet) Len() int {
	return len(s.effects)
}

// All returns the active effects sorted by kind. The pointed-to values are
// shared with the set.
func (s *ActiveSet) All() []*Active {
	out := make([]*Active, 0, len(s.effects))
	for _, a := range s.effects {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Active) int { return strings.Compare(string(a.Def.ID), string(b.Def.ID)) })
	return out
}

// Absorb spends shields against dmg and returns what gets through.
// Shields that reach zero are removed.
//
// Postcondition: 0 <= result <= dmg.
func (s *ActiveSet) Absorb(dmg int) int {
	if dmg <= 0 {
		return 0
	}
	for _, a := range s.All() {
		if a.Shield <= 0 {
			continue
		}
		used := min(a.Shield, dmg)
		a.Shield -= used
		dmg -= used
		if a.Shield == 0 {
			delete(s.effects, a.Def.ID)
		}
		if dmg == 0 {
			break
		}
	}
	return dmg
}

func sortKinds(ks []Kind) {
	slices.SortFunc(ks, func(a, b Kind) int { return strings.Compare(string(a), string(b)) })
}
