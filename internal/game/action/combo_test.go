package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

func chain(n int) *action.Sequence {
	slots := make([]*action.Action, n)
	for i := range slots {
		slots[i] = combo(string(rune('A'+i)), i+1)
	}
	return action.NewSequence(slots)
}

func current(t *testing.T, s *action.Sequence) string {
	t.Helper()
	a, ok := s.Current()
	require.True(t, ok)
	return a.Name
}

func TestSequence_WrapsModuloLength(t *testing.T) {
	s := chain(3)
	got := []string{}
	for i := 0; i < 5; i++ {
		got = append(got, current(t, s))
		s.Advance(action.Routing{}, nil)
	}
	assert.Equal(t, []string{"A", "B", "C", "A", "B"}, got)
	assert.Equal(t, 5, s.Step())
	assert.Equal(t, 2, s.Depth())
}

func TestSequence_Lookup_NeverOutOfRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := chain(rapid.IntRange(1, 6).Draw(rt, "len"))
		s.SetStep(rapid.IntRange(-50, 10_000).Draw(rt, "step"))
		a, ok := s.Current()
		require.True(rt, ok)
		assert.NotNil(rt, a)
		assert.Less(rt, s.Depth(), s.Len())
	})
}

func TestSequence_Routing(t *testing.T) {
	s := chain(4)
	s.Advance(action.Routing{Directive: action.RouteSkipNext}, nil)
	assert.Equal(t, "C", current(t, s))

	s.Advance(action.Routing{Directive: action.RouteJumpToSlot, Slot: 2}, nil)
	assert.Equal(t, "B", current(t, s))

	s.Advance(action.Routing{Directive: action.RouteRepeatPrevious}, nil)
	assert.Equal(t, "A", current(t, s))

	s.SetStep(3)
	s.Advance(action.Routing{Directive: action.RouteLoopToStart}, nil)
	assert.Equal(t, "A", current(t, s))

	s.SetStep(2)
	assert.True(t, s.Advance(action.Routing{Directive: action.RouteStopEarly}, nil))
	assert.Equal(t, 0, s.Step())

	s.Advance(action.Routing{Directive: action.RouteRandomAction}, fixedSrc{val: 3})
	assert.Equal(t, "D", current(t, s))
}

func TestSequence_DisableSlot(t *testing.T) {
	s := chain(3)
	s.Advance(action.Routing{Directive: action.RouteDisableSlot}, nil)
	s.SetStep(0)
	assert.Equal(t, "B", current(t, s), "disabled opener is skipped")
	s.Reset()
	assert.Equal(t, "A", current(t, s))
}

func TestSequence_RestrictToSlot(t *testing.T) {
	a := combo("A", 1)
	b := combo("B", 2)
	b.Routing = action.Routing{Directive: action.RouteRestrictToSlot, Slot: 1}
	s := action.NewSequence([]*action.Action{a, b})
	s.SetStep(1)
	assert.Equal(t, "A", current(t, s), "B is only usable from slot 1")
}

func TestSequence_EmptyAndExhausted(t *testing.T) {
	s := action.NewSequence(nil)
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Advance(action.Routing{}, nil))
	assert.Equal(t, 0, s.Depth())

	s = chain(1)
	s.Slots()[0].Cooldown = 1
	s.Slots()[0].StartCooldown()
	_, ok = s.Current()
	assert.False(t, ok)
	_, ok = s.Random(dice.NewSeededSource(1))
	assert.False(t, ok)
}

func TestSequence_CooldownSkipMovesCursor(t *testing.T) {
	a := combo("A", 1)
	a.Cooldown = 1
	a.StartCooldown()
	b := combo("B", 2)
	b.Routing = action.Routing{Directive: action.RouteDisableSlot}
	s := action.NewSequence([]*action.Action{a, b})

	assert.Equal(t, "B", current(t, s))
	assert.Equal(t, 1, s.Depth(), "depth follows the slot that runs")

	s.Advance(b.Routing, nil)
	a.TickCooldown()
	assert.Equal(t, "A", current(t, s), "the slot that ran is the one disabled")
	s.SetStep(1)
	assert.Equal(t, "A", current(t, s))
}

func TestSequence_CooldownSkipThenDefaultRouting(t *testing.T) {
	s := chain(3)
	s.Slots()[0].Cooldown = 2
	s.Slots()[0].StartCooldown()

	assert.Equal(t, "B", current(t, s))
	s.Advance(action.Routing{}, nil)
	assert.Equal(t, "C", current(t, s), "B does not repeat")
}

func TestSequence_PeekDoesNotMove(t *testing.T) {
	s := chain(2)
	s.Slots()[0].Cooldown = 1
	s.Slots()[0].StartCooldown()

	a, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "B", a.Name)
	assert.Equal(t, 0, s.Step())

	s.Slots()[0].TickCooldown()
	assert.Equal(t, "A", current(t, s))
}
