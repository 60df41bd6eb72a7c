package simulation

import (
	"time"

	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
)

// SideStats totals the actor records of one side across a sweep.
type SideStats struct {
	Actions        int `json:"actions"`
	Hits           int `json:"hits"`
	Misses         int `json:"misses"`
	CriticalHits   int `json:"critical_hits"`
	CriticalMisses int `json:"critical_misses"`
	ComboHits      int `json:"combo_hits"`
	DamageDealt    int `json:"damage_dealt"`
	DamageTaken    int `json:"damage_taken"`
	HealingDone    int `json:"healing_done"`
	OneShotKills   int `json:"one_shot_kills"`
	Kills          int `json:"kills"`
	Deaths         int `json:"deaths"`
}

func (s *SideStats) add(a battle.ActorSummary) {
	r := a.Record
	s.Actions += r.Actions
	s.Hits += r.Hits
	s.Misses += r.Misses
	s.CriticalHits += r.CriticalHits
	s.CriticalMisses += r.CriticalMisses
	s.ComboHits += r.ComboHits
	s.DamageDealt += r.DamageDealt
	s.DamageTaken += r.DamageTaken
	s.HealingDone += r.HealingDone
	s.OneShotKills += r.OneShotKills
	s.Kills += r.Kills
	if !a.Alive {
		s.Deaths++
	}
}

// HitRate is hits over attempted actions, 0 when nothing was attempted.
func (s SideStats) HitRate() float64 {
	if n := s.Hits + s.Misses; n > 0 {
		return float64(s.Hits) / float64(n)
	}
	return 0
}

// BattleSummary is the per-battle row of a sweep.
type BattleSummary struct {
	Index    int            `json:"index"`
	Seed     uint64         `json:"seed"`
	Outcome  battle.Outcome `json:"outcome"`
	Turns    int            `json:"turns"`
	Duration float64        `json:"duration"`
}

// Report aggregates a sweep. Everything except RunID, Started and Elapsed is
// a pure function of the scenario, content, config and seed.
type Report struct {
	RunID    string
	Scenario string
	Seed     uint64
	Workers  int
	Started  time.Time
	Elapsed  time.Duration

	HeroWins  int
	EnemyWins int
	Draws     int

	TotalTurns    int
	TotalDuration float64

	Heroes  SideStats
	Enemies SideStats
	Battles []BattleSummary
}

// Count is the number of battles in the sweep.
func (r Report) Count() int { return len(r.Battles) }

func (r Report) rate(n int) float64 {
	if len(r.Battles) == 0 {
		return 0
	}
	return float64(n) / float64(len(r.Battles))
}

// HeroWinRate is the fraction of battles the heroes won.
func (r Report) HeroWinRate() float64 { return r.rate(r.HeroWins) }

// EnemyWinRate is the fraction of battles the enemies won.
func (r Report) EnemyWinRate() float64 { return r.rate(r.EnemyWins) }

// DrawRate is the fraction of battles that hit the turn cap or wiped both sides.
func (r Report) DrawRate() float64 { return r.rate(r.Draws) }

// AverageTurns is the mean turn count per battle.
func (r Report) AverageTurns() float64 {
	if len(r.Battles) == 0 {
		return 0
	}
	return float64(r.TotalTurns) / float64(len(r.Battles))
}

// AverageDuration is the mean battle clock at the end of each battle.
func (r Report) AverageDuration() float64 {
	if len(r.Battles) == 0 {
		return 0
	}
	return r.TotalDuration / float64(len(r.Battles))
}

// aggregate folds results in index order so float sums do not depend on
// completion order.
func aggregate(r *Report, results []battle.Result) {
	r.Battles = make([]BattleSummary, 0, len(results))
	for i, res := range results {
		switch res.Outcome {
		case battle.HeroesWin:
			r.HeroWins++
		case battle.EnemiesWin:
			r.EnemyWins++
		case battle.Draw:
			r.Draws++
		}
		r.TotalTurns += res.Turns
		r.TotalDuration += res.Duration
		for _, a := range res.Actors {
			switch a.Side {
			case actor.SideHeroes:
				r.Heroes.add(a)
			case actor.SideEnemies:
				r.Enemies.add(a)
			}
		}
		r.Battles = append(r.Battles, BattleSummary{
			Index:    i,
			Seed:     res.Seed,
			Outcome:  res.Outcome,
			Turns:    res.Turns,
			Duration: res.Duration,
		})
	}
}
