package battlelog_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeonfighter/internal/game/battlelog"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

func TestAppendAssignsSequence(t *testing.T) {
	l := battlelog.New()
	first := l.Append(battlelog.Event{Type: battlelog.TypeAction, Actor: "Aria", Sequence: 99})
	second := l.Append(battlelog.Event{Type: battlelog.TypeAction, Actor: "Borin"})
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, 2, second.Sequence)
	assert.Equal(t, 2, l.Len())

	evs := l.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, "Borin", evs[1].Actor)
}

func TestEventsReturnsCopy(t *testing.T) {
	l := battlelog.New()
	l.Append(battlelog.Event{Actor: "Aria", EffectsAdded: []effect.Kind{effect.Bleed}})
	evs := l.Events()
	evs[0].Actor = "Mallory"
	evs[0].EffectsAdded[0] = effect.Stun
	got := l.Events()
	assert.Equal(t, "Aria", got[0].Actor)
	assert.Equal(t, effect.Bleed, got[0].EffectsAdded[0])
}

func TestReader(t *testing.T) {
	l := battlelog.New()
	r := l.Reader()
	_, ok := r.Next()
	assert.False(t, ok)

	l.Append(battlelog.Event{Actor: "A"})
	l.Append(battlelog.Event{Actor: "B"})
	e, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "A", e.Actor)

	l.Append(battlelog.Event{Actor: "C"})
	rest := r.Drain()
	require.Len(t, rest, 2)
	assert.Equal(t, "B", rest[0].Actor)
	assert.Equal(t, "C", rest[1].Actor)
	assert.Nil(t, r.Drain())

	other := l.Reader()
	assert.Len(t, other.Drain(), 3)
}

func TestConcurrentReaders(t *testing.T) {
	l := battlelog.New()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := l.Reader()
			seen := 0
			for seen < 100 {
				if _, ok := r.Next(); ok {
					seen++
				}
			}
		}()
	}
	for range 100 {
		l.Append(battlelog.Event{Actor: "Aria"})
	}
	wg.Wait()
	assert.Equal(t, 100, l.Len())
}

func TestEventString(t *testing.T) {
	e := battlelog.Event{
		Sequence: 3, Time: 1.01, Type: battlelog.TypeAction,
		Actor: "Aria", Target: "Goblin", Action: "JAB",
		NaturalRoll: 15, Total: 17, Difficulty: 8, Success: true,
		Damage: 6, Hits: 1, TargetBefore: 10, TargetAfter: 4,
		Combo: true, ComboStep: 2, EffectsAdded: []effect.Kind{effect.Bleed},
	}
	assert.Equal(t, "#3 t=1.01 Aria uses JAB on Goblin [roll 15 total 17 vs 8] 6 damage (hp 10 -> 4) combo step 2 +bleed", e.String())

	miss := battlelog.Event{Sequence: 4, Type: battlelog.TypeAction, Actor: "Goblin", Target: "Aria", Action: "BITE", NaturalRoll: 1, Total: 1, CriticalMiss: true}
	assert.Equal(t, "#4 t=0.00 Goblin uses BITE on Aria [roll 1 vs 0] critical miss", miss.String())

	skip := battlelog.Event{Sequence: 5, Time: 2, Type: battlelog.TypeSkip, Actor: "Aria"}
	assert.Equal(t, "#5 t=2.00 Aria loses the turn", skip.String())
}
