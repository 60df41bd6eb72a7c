// Package scheduler tracks when each actor in a battle is next ready to act.
package scheduler

import (
	"container/heap"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/clock"
)

// Record is one actor's readiness.
type Record struct {
	Actor     actor.Actor
	BaseSpeed float64
	NextReady float64
	index     int
}

// queue is a min-heap on (NextReady, name).
type queue []*Record

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool { return before(q[i], q[j]) }

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	r := x.(*Record)
	r.index = len(*q)
	*q = append(*q, r)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.index = -1
	*q = old[:n-1]
	return r
}

func before(a, b *Record) bool {
	if a.NextReady != b.NextReady {
		return a.NextReady < b.NextReady
	}
	return a.Actor.Name() < b.Actor.Name()
}

// Scheduler owns the readiness records of one battle.
//
// Operations on an actor that is not registered are no-ops returning zero
// values; a stale reference never stops a battle.
type Scheduler struct {
	clock     *clock.Clock
	tieBuffer float64
	records   map[string]*Record
	queue     queue
	logger    *zap.Logger
}

// New creates a scheduler reading time from clk.
func New(clk *clock.Clock, speed config.SpeedConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:     clk,
		tieBuffer: speed.TieBuffer,
		records:   make(map[string]*Record),
		logger:    logger,
	}
}

func (s *Scheduler) lookup(a actor.Actor, op string) *Record {
	if a == nil {
		return nil
	}
	r, ok := s.records[a.Name()]
	if !ok || r.Actor != a {
		s.logger.Debug("scheduler call on unregistered actor",
			zap.String("op", op),
			zap.String("actor", a.Name()),
		)
		return nil
	}
	return r
}

// Register adds a with nextReady = now, replacing any record of the same name.
func (s *Scheduler) Register(a actor.Actor, baseSpeed float64) {
	if old, ok := s.records[a.Name()]; ok {
		heap.Remove(&s.queue, old.index)
	}
	r := &Record{Actor: a, BaseSpeed: baseSpeed, NextReady: s.clock.Now()}
	s.records[a.Name()] = r
	heap.Push(&s.queue, r)
}

// Unregister removes a.
func (s *Scheduler) Unregister(a actor.Actor) {
	r := s.lookup(a, "unregister")
	if r == nil {
		return
	}
	heap.Remove(&s.queue, r.index)
	delete(s.records, a.Name())
}

// Len returns the number of registered actors.
func (s *Scheduler) Len() int {
	return len(s.records)
}

// NextToAct returns the living actor with the smallest next-ready time that
// is not in the future, breaking ties by name.
//
// Postcondition: a returned actor has NextReady <= now.
func (s *Scheduler) NextToAct() (actor.Actor, bool) {
	if len(s.queue) == 0 {
		return nil, false
	}
	now := s.clock.Now()
	if top := s.queue[0]; top.Actor.IsAlive() {
		if top.NextReady <= now {
			return top.Actor, true
		}
		return nil, false
	}
	var best *Record
	for _, r := range s.queue {
		if !r.Actor.IsAlive() || r.NextReady > now {
			continue
		}
		if best == nil || before(r, best) {
			best = r
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Actor, true
}

// TimeUntilNextReady is how far the clock must advance before some living
// actor is ready; 0 when one already is or nobody is registered.
func (s *Scheduler) TimeUntilNextReady() float64 {
	now := s.clock.Now()
	wait := math.Inf(1)
	for _, r := range s.queue {
		if r.Actor.IsAlive() {
			wait = min(wait, max(0, r.NextReady-now))
		}
	}
	if math.IsInf(wait, 1) {
		return 0
	}
	return wait
}

// ResolveTurn charges a for the action it just took and returns the cost.
//
// cost = speed x length, where length is 1 for basic attacks and the
// action's length otherwise. A critical miss, or a pending critical-miss
// penalty, doubles the cost once and clears the penalty.
// Postcondition: NextReady = max(now, previous NextReady) + cost + tie buffer.
func (s *Scheduler) ResolveTurn(a actor.Actor, act *action.Action, isBasic, isCriticalMiss bool) float64 {
	r := s.lookup(a, "resolve_turn")
	if r == nil {
		return 0
	}
	speed := a.EffectiveActionSpeed()
	if speed <= 0 {
		speed = r.BaseSpeed
	}
	length := 1.0
	if !isBasic {
		length = act.LengthFactor()
	}
	cost := speed * length
	if pending := a.State().Transient.ConsumeCriticalMissPenalty(); pending || isCriticalMiss {
		cost *= 2
	}
	r.NextReady = max(s.clock.Now(), r.NextReady) + cost + s.tieBuffer
	heap.Fix(&s.queue, r.index)
	return cost
}

// ForceAdvance pushes a's readiness back by duration without it acting.
func (s *Scheduler) ForceAdvance(a actor.Actor, duration float64) {
	r := s.lookup(a, "force_advance")
	if r == nil {
		return
	}
	r.NextReady = max(s.clock.Now(), r.NextReady) + max(0, duration)
	heap.Fix(&s.queue, r.index)
}

// NextReady returns a's next-ready time.
func (s *Scheduler) NextReady(a actor.Actor) (float64, bool) {
	r := s.lookup(a, "next_ready")
	if r == nil {
		return 0, false
	}
	return r.NextReady, true
}

// SetNextReady overrides a's next-ready time.
func (s *Scheduler) SetNextReady(a actor.Actor, t float64) {
	r := s.lookup(a, "set_next_ready")
	if r == nil {
		return
	}
	r.NextReady = max(t, 0)
	heap.Fix(&s.queue, r.index)
}

// Order returns a snapshot of every record sorted by readiness then name.
func (s *Scheduler) Order() []Record {
	out := make([]Record, 0, len(s.queue))
	for _, r := range s.queue {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b Record) int {
		if a.NextReady != b.NextReady {
			if a.NextReady < b.NextReady {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Actor.Name(), b.Actor.Name())
	})
	return out
}

// Reset drops every record.
func (s *Scheduler) Reset() {
	clear(s.records)
	s.queue = s.queue[:0]
}
