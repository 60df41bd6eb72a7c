package battle

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battlelog"
	"github.com/cory-johannsen/dungeonfighter/internal/game/combat"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
)

// Step runs one turn, or advances the clock when nobody is ready.
// It reports whether the battle continues.
func (b *Battle) Step() (bool, error) {
	if b.outcome != InProgress {
		return false, nil
	}
	if b.checkOutcome() {
		return false, nil
	}
	if b.cfg.MaxTurns > 0 && b.turns >= b.cfg.MaxTurns {
		b.outcome = Draw
		return false, nil
	}

	a, ok := b.sched.NextToAct()
	if !ok {
		wait := b.sched.TimeUntilNextReady()
		if wait <= 0 {
			wait = b.cfg.Speed.ProgressEpsilon
		}
		b.clock.Advance(wait)
		return true, nil
	}

	b.turns++
	if err := b.takeTurn(a); err != nil {
		return false, err
	}
	b.removeDead()
	return !b.checkOutcome(), nil
}

func (b *Battle) takeTurn(a actor.Actor) error {
	st := a.State()
	st.Record.Turns++

	if a.Kind() != actor.KindHazard && b.tickEffects(a) {
		return nil
	}

	if st.IsStunned() || st.Transient.SkipTurns > 0 {
		if st.Transient.SkipTurns > 0 {
			st.Transient.SkipTurns--
		}
		b.log.Append(battlelog.Event{
			Time:        b.clock.Now(),
			Type:        battlelog.TypeSkip,
			Actor:       a.Name(),
			ActorBefore: st.Health(),
			ActorAfter:  st.Health(),
		})
		b.sched.ForceAdvance(a, b.cfg.Speed.StunSkip)
		st.EndTurn()
		return nil
	}

	sel := b.automaton.Select(a)
	target := b.pickTarget(a, sel.Action)
	ev, err := b.resolver.Resolve(combat.Turn{
		Time:      b.clock.Now(),
		Source:    a,
		Target:    target,
		Selection: sel,
	})
	if err != nil {
		return fmt.Errorf("battle %s turn %d: %w", b.ID, b.turns, err)
	}
	critMiss := ev != nil && ev.CriticalMiss
	b.sched.ResolveTurn(a, sel.Action, sel.Action == nil || sel.IsBasic(), critMiss)
	st.EndTurn()
	return nil
}

// tickEffects applies start-of-turn damage and healing from effects and
// reports whether the actor died from it.
func (b *Battle) tickEffects(a actor.Actor) bool {
	st := a.State()
	dmg := effect.TickDamage(st.Effects())
	heal := effect.TickHeal(st.Effects())
	if dmg == 0 && heal == 0 {
		return false
	}
	before := st.Health()
	dealt := st.ApplyDamage(dmg)
	st.Record.DamageTaken += dealt
	healed := 0
	if st.IsAlive() {
		healed = st.Heal(heal)
	}
	b.log.Append(battlelog.Event{
		Time:        b.clock.Now(),
		Type:        battlelog.TypeTick,
		Actor:       a.Name(),
		Damage:      dealt,
		Heal:        healed,
		ActorBefore: before,
		ActorAfter:  st.Health(),
	})
	if st.IsAlive() {
		return false
	}
	b.sched.Unregister(a)
	b.logDeath(a)
	return true
}

// pickTarget chooses who an action lands on. Heals and buffs go to the
// most wounded living ally, everything else to a random living opponent.
// Hazards strike any living combatant; confused actors may hit themselves.
func (b *Battle) pickTarget(a actor.Actor, act *action.Action) actor.Actor {
	if act == nil {
		return nil
	}
	switch act.Target {
	case action.Self:
		return a
	case action.Environment:
		return nil
	}
	if a.Kind() == actor.KindHazard {
		return b.pick(living(b.heroes, b.enemies))
	}
	if act.Kind == action.Heal || act.Kind == action.Buff {
		return mostWounded(living(b.allies(a)))
	}
	if dice.Chance(b.src, effect.ConfusionChance(a.State().Effects())) {
		b.logger.Debug("confused actor targets itself", zap.String("actor", a.Name()))
		return a
	}
	return b.pick(living(b.opponents(a)))
}

func (b *Battle) pick(candidates []actor.Actor) actor.Actor {
	i := dice.Pick(b.src, len(candidates))
	if i < 0 {
		return nil
	}
	return candidates[i]
}

func (b *Battle) allies(a actor.Actor) []actor.Actor {
	if a.Side() == actor.SideEnemies {
		return b.enemies
	}
	return b.heroes
}

func (b *Battle) opponents(a actor.Actor) []actor.Actor {
	if a.Side() == actor.SideEnemies {
		return b.heroes
	}
	return b.enemies
}

func living(sides ...[]actor.Actor) []actor.Actor {
	var out []actor.Actor
	for _, side := range sides {
		for _, a := range side {
			if a.IsAlive() {
				out = append(out, a)
			}
		}
	}
	return out
}

func mostWounded(candidates []actor.Actor) actor.Actor {
	var best actor.Actor
	for _, a := range candidates {
		if best == nil || a.State().HealthFraction() < best.State().HealthFraction() {
			best = a
		}
	}
	return best
}

// removeDead unregisters every combatant that died this turn.
func (b *Battle) removeDead() {
	for _, a := range slices.Concat(b.heroes, b.enemies) {
		if a.IsAlive() {
			continue
		}
		if _, ok := b.sched.NextReady(a); ok {
			b.sched.Unregister(a)
			b.logDeath(a)
		}
	}
}

func (b *Battle) logDeath(a actor.Actor) {
	b.log.Append(battlelog.Event{
		Time:  b.clock.Now(),
		Type:  battlelog.TypeDeath,
		Actor: a.Name(),
	})
	b.logger.Debug("actor died", zap.String("actor", a.Name()), zap.Int("turn", b.turns))
}

// checkOutcome sets the outcome once a side has no living members and
// reports whether the battle is over. Hazards never count.
func (b *Battle) checkOutcome() bool {
	heroes := len(living(b.heroes)) > 0
	enemies := len(living(b.enemies)) > 0
	switch {
	case heroes && enemies:
		return false
	case heroes:
		b.outcome = HeroesWin
	case enemies:
		b.outcome = EnemiesWin
	default:
		b.outcome = Draw
	}
	return true
}
