package action

import (
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// Sequence is an actor's ordered combo chain plus its step cursor.
//
// Invariant: step >= 0; every lookup reduces it modulo Len().
type Sequence struct {
	slots    []*Action
	disabled []bool
	step     int
}

// NewSequence builds a chain from actions in the given order.
func NewSequence(actions []*Action) *Sequence {
	return &Sequence{slots: actions, disabled: make([]bool, len(actions))}
}

// Len returns the chain length.
func (s *Sequence) Len() int {
	return len(s.slots)
}

// Step returns the raw cursor.
func (s *Sequence) Step() int {
	return s.step
}

// Depth returns the position within the chain, 0 for the opener.
func (s *Sequence) Depth() int {
	if len(s.slots) == 0 {
		return 0
	}
	return s.step % len(s.slots)
}

// SetStep moves the cursor; negatives clamp to 0.
func (s *Sequence) SetStep(n int) {
	s.step = max(n, 0)
}

// Reset returns the cursor to the opener and re-enables every slot.
func (s *Sequence) Reset() {
	s.step = 0
	clear(s.disabled)
}

// Slots returns the chain in order.
func (s *Sequence) Slots() []*Action {
	return s.slots
}

// Peek returns the action Current would return without moving the cursor.
func (s *Sequence) Peek() (*Action, bool) {
	k, ok := s.nextUsable()
	if !ok {
		return nil, false
	}
	return s.slots[(s.step+k)%len(s.slots)], true
}

// Current returns the action at step modulo Len, skipping disabled slots,
// slots restricted to a different position and actions on cooldown. The
// cursor moves onto the returned slot, so Depth and Advance refer to it.
func (s *Sequence) Current() (*Action, bool) {
	k, ok := s.nextUsable()
	if !ok {
		return nil, false
	}
	s.step += k
	return s.slots[s.step%len(s.slots)], true
}

// nextUsable returns the offset from the cursor of the first usable slot.
func (s *Sequence) nextUsable() (int, bool) {
	n := len(s.slots)
	for k := 0; k < n; k++ {
		if s.usable((s.step + k) % n) {
			return k, true
		}
	}
	return 0, false
}

// Random returns a uniformly chosen usable slot.
func (s *Sequence) Random(src dice.Source) (*Action, bool) {
	var usable []int
	for i := range s.slots {
		if s.usable(i) {
			usable = append(usable, i)
		}
	}
	if len(usable) == 0 {
		return nil, false
	}
	return s.slots[usable[src.Intn(len(usable))]], true
}

func (s *Sequence) usable(idx int) bool {
	if s.disabled[idx] {
		return false
	}
	a := s.slots[idx]
	if a.Routing.Directive == RouteRestrictToSlot && a.Routing.Slot-1 != idx {
		return false
	}
	return a.Ready()
}

// Advance moves the cursor after a landed combo action according to r and
// reports whether the chain ended.
func (s *Sequence) Advance(r Routing, src dice.Source) bool {
	n := len(s.slots)
	if n == 0 {
		return false
	}
	cur := s.step % n
	switch r.Directive {
	case RouteJumpToSlot:
		s.step = min(max(r.Slot-1, 0), n-1)
	case RouteSkipNext:
		s.step += 2
	case RouteRepeatPrevious:
		s.step = (cur - 1 + n) % n
	case RouteLoopToStart:
		s.step = 0
	case RouteStopEarly:
		s.step = 0
		return true
	case RouteDisableSlot:
		s.disabled[cur] = true
		s.step++
	case RouteRandomAction:
		s.step = src.Intn(n)
	default:
		s.step++
	}
	return false
}
