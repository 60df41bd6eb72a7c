package battle

import "github.com/cory-johannsen/dungeonfighter/internal/game/actor"

// ActorSummary is one actor's end-of-battle state.
type ActorSummary struct {
	Name      string
	Kind      actor.Kind
	Side      actor.Side
	Health    int
	MaxHealth int
	Alive     bool
	Record    actor.Record
}

// Result summarizes a finished (or interrupted) battle.
type Result struct {
	ID       string
	Seed     uint64
	Outcome  Outcome
	Turns    int
	Duration float64
	Events   int
	Actors   []ActorSummary
}

// Side returns the summaries of one side.
func (r Result) Side(side actor.Side) []ActorSummary {
	var out []ActorSummary
	for _, s := range r.Actors {
		if s.Side == side {
			out = append(out, s)
		}
	}
	return out
}

// Result snapshots the battle.
func (b *Battle) Result() Result {
	res := Result{
		ID:       b.ID,
		Seed:     b.Seed,
		Outcome:  b.outcome,
		Turns:    b.turns,
		Duration: b.clock.Now(),
		Events:   b.log.Len(),
	}
	for _, a := range b.Actors() {
		st := a.State()
		res.Actors = append(res.Actors, ActorSummary{
			Name:      a.Name(),
			Kind:      a.Kind(),
			Side:      a.Side(),
			Health:    st.Health(),
			MaxHealth: st.MaxHealth(),
			Alive:     a.IsAlive(),
			Record:    st.Record,
		})
	}
	return res
}
