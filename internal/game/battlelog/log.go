package battlelog

import (
	"slices"
	"sync"
)

// Log is the append-only event sequence of one battle. It is safe for one
// writer and any number of concurrent readers.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append stores e with the next sequence number and returns the stored copy.
//
// Postcondition: sequences are 1, 2, 3, ... in append order.
func (l *Log) Append(e Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Sequence = len(l.events) + 1
	e.EffectsAdded = slices.Clone(e.EffectsAdded)
	e.EffectsRemove = slices.Clone(e.EffectsRemove)
	l.events = append(l.events, e)
	return e
}

// Len returns the number of events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of every event.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.events)
}

// Reader returns a cursor positioned before the first event.
func (l *Log) Reader() *Reader {
	return &Reader{log: l}
}

// Reader consumes a log in order. Each reader has its own cursor; a reader
// is not itself safe for concurrent use.
type Reader struct {
	log  *Log
	next int
}

// Next returns the next unread event.
func (r *Reader) Next() (Event, bool) {
	r.log.mu.RLock()
	defer r.log.mu.RUnlock()
	if r.next >= len(r.log.events) {
		return Event{}, false
	}
	e := r.log.events[r.next]
	r.next++
	return e, true
}

// Drain returns every unread event.
func (r *Reader) Drain() []Event {
	r.log.mu.RLock()
	defer r.log.mu.RUnlock()
	if r.next >= len(r.log.events) {
		return nil
	}
	out := slices.Clone(r.log.events[r.next:])
	r.next = len(r.log.events)
	return out
}
