package action

import (
	"slices"

	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// Entry is one weighted action in a pool.
type Entry struct {
	Action *Action
	Weight float64
}

// Pool is an actor's owned actions. It holds per-actor clones so that
// cooldowns never leak between actors.
type Pool struct {
	entries []Entry
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends a with weight; non-positive weights count as 1.
func (p *Pool) Add(a *Action, weight float64) {
	if weight <= 0 {
		weight = 1
	}
	p.entries = append(p.entries, Entry{Action: a, Weight: weight})
}

// Remove drops every entry named name and reports whether any was removed.
func (p *Pool) Remove(name string) bool {
	n := len(p.entries)
	p.entries = slices.DeleteFunc(p.entries, func(e Entry) bool { return e.Action.Name == name })
	return len(p.entries) != n
}

// Contains reports whether a itself (not merely an action of the same
// name) is owned by the pool.
func (p *Pool) Contains(a *Action) bool {
	return slices.ContainsFunc(p.entries, func(e Entry) bool { return e.Action == a })
}

// Get returns the first action named name.
func (p *Pool) Get(name string) (*Action, bool) {
	for _, e := range p.entries {
		if e.Action.Name == name {
			return e.Action, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Actions returns the owned actions in insertion order.
func (p *Pool) Actions() []*Action {
	out := make([]*Action, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Action
	}
	return out
}

// ComboActions returns the combo-capable actions ordered by ComboOrder,
// then insertion order.
func (p *Pool) ComboActions() []*Action {
	var out []*Action
	for _, e := range p.entries {
		if e.Action.InCombo() {
			out = append(out, e.Action)
		}
	}
	slices.SortStableFunc(out, func(a, b *Action) int { return a.ComboOrder - b.ComboOrder })
	return out
}

// FirstComboCapable returns the first ready combo-capable action.
func (p *Pool) FirstComboCapable() (*Action, bool) {
	for _, e := range p.entries {
		if e.Action.InCombo() && e.Action.Ready() {
			return e.Action, true
		}
	}
	return nil, false
}

// Select draws a ready action proportionally to weight.
func (p *Pool) Select(src dice.Source) (*Action, bool) {
	return p.SelectWhere(src, nil)
}

// SelectNormal draws a ready action outside the combo chain proportionally
// to weight. It serves rolls below the combo threshold.
func (p *Pool) SelectNormal(src dice.Source) (*Action, bool) {
	return p.SelectWhere(src, func(a *Action) bool { return !a.InCombo() })
}

// SelectWhere draws proportionally to weight among ready actions accepted by
// keep; a nil keep accepts every action.
func (p *Pool) SelectWhere(src dice.Source, keep func(*Action) bool) (*Action, bool) {
	eligible := func(a *Action) bool { return a.Ready() && (keep == nil || keep(a)) }
	total := 0.0
	last := -1
	for i, e := range p.entries {
		if eligible(e.Action) {
			total += e.Weight
			last = i
		}
	}
	if last < 0 {
		return nil, false
	}
	const resolution = 1_000_000
	r := float64(src.Intn(resolution)) / resolution * total
	for _, e := range p.entries {
		if !eligible(e.Action) {
			continue
		}
		if r < e.Weight {
			return e.Action, true
		}
		r -= e.Weight
	}
	return p.entries[last].Action, true
}

// TickCooldowns counts every owned cooldown down by one turn.
func (p *Pool) TickCooldowns() {
	for _, e := range p.entries {
		e.Action.TickCooldown()
	}
}
