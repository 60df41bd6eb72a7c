package combat

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battlelog"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
	"github.com/cory-johannsen/dungeonfighter/internal/game/selection"
)

// ErrNoTarget is returned when an action needing a target gets none.
var ErrNoTarget = errors.New("combat: action requires a target")

// TriggerEvaluator evaluates named scripted trigger predicates.
type TriggerEvaluator interface {
	EvaluateTrigger(script string, facts action.Facts) (bool, error)
}

// Turn is the per-turn context handed to the resolver.
type Turn struct {
	Time      float64
	Source    actor.Actor
	Target    actor.Actor
	Selection selection.Selection
}

// Resolver applies selected actions to actors and records one event per
// resolution.
//
// Invariant: src is the battle's own source; the resolver is not safe for
// concurrent use.
type Resolver struct {
	cfg      config.CombatConfig
	effects  *effect.Registry
	src      dice.Source
	log      *battlelog.Log
	triggers TriggerEvaluator
	logger   *zap.Logger
}

// NewResolver creates a resolver. log, triggers and logger may be nil.
//
// Precondition: effects and src must not be nil.
func NewResolver(cfg config.CombatConfig, effects *effect.Registry, src dice.Source, log *battlelog.Log, triggers TriggerEvaluator, logger *zap.Logger) *Resolver {
	if effects == nil {
		panic("combat.NewResolver: effects must not be nil")
	}
	if src == nil {
		panic("combat.NewResolver: src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg, effects: effects, src: src, log: log, triggers: triggers, logger: logger}
}

// Resolve executes t.Selection.
//
// A nil event with a nil error means no action was taken: the selection was
// None or named an action the source does not own.
// Postcondition: on a non-nil event exactly one event was appended to the
// log (when the resolver has one).
func (r *Resolver) Resolve(t Turn) (*battlelog.Event, error) {
	if t.Source == nil {
		return nil, fmt.Errorf("combat.Resolve: source must not be nil")
	}
	sel := t.Selection
	act := sel.Action
	if sel.Outcome == selection.None || act == nil {
		return nil, nil
	}
	source := t.Source
	src := source.State()
	if !owns(source, act) {
		r.logger.Warn("action not owned by actor; skipping",
			zap.String("actor", source.Name()),
			zap.String("action", act.Name),
		)
		return nil, nil
	}
	target := t.Target
	if act.Target == action.Self || target == nil {
		if act.Target != action.Self && act.Target != action.Environment {
			return nil, fmt.Errorf("combat.Resolve %q by %q: %w", act.Name, source.Name(), ErrNoTarget)
		}
		target = source
	}
	tgt := target.State()

	ev := battlelog.Event{
		Time:         t.Time,
		Type:         battlelog.TypeAction,
		Actor:        source.Name(),
		Target:       target.Name(),
		Action:       act.Name,
		Kind:         string(act.Kind),
		Basic:        sel.IsBasic(),
		NaturalRoll:  sel.RawRoll,
		ActorBefore:  src.Health(),
		TargetBefore: tgt.Health(),
	}

	depth := src.Combo().Depth()
	inChain := !sel.IsBasic() && act.InCombo()
	amp := 1.0
	if inChain {
		amp = ComboMultiplier(r.comboAmplifier(src, act), depth)
		ev.ComboStep = depth + 1
	}

	bonus := act.RollMods.Additive + act.Advanced.RollBonus + source.RollBonusContribution()
	if act.HasTag(TagComboScaling) {
		bonus += ComboRollBonus(amp, r.cfg.Combo.RollBonusScale)
	}
	mod := dice.Apply(sel.RawRoll, act.RollMods, r.src)
	total := mod.Value + bonus
	ev.ModifiedRoll = mod.Value
	ev.Bonus = bonus
	ev.Total = total

	guaranteed := src.Transient.GuaranteeHit
	src.Transient.GuaranteeHit = false

	var result HitResult
	if act.Kind.Damaging() {
		ev.Difficulty = Difficulty(tgt.Armor(), tgt.Agility(), r.cfg.AgilityPerDefense, effect.IgnoresArmor(tgt.Effects()))
		result = CheckHit(sel.RawRoll, total, ev.Difficulty, guaranteed, r.cfg.Thresholds, act.RollMods)
	} else {
		ev.Difficulty = r.cfg.Thresholds.Basic
		result = CheckHit(sel.RawRoll, total, 0, guaranteed, r.cfg.Thresholds, act.RollMods)
	}
	ev.Success = result.Landed()
	ev.Critical = result == CriticalHit
	ev.CriticalMiss = result == CriticalMiss
	if ev.CriticalMiss {
		src.Transient.SetCriticalMissPenalty()
	}

	if ev.Success {
		switch {
		case act.Kind.Damaging():
			r.strike(source, target, act, amp, total, ev.Critical, &ev)
		case act.Kind == action.Heal:
			ev.Heal = tgt.Heal(HealAmount(src.Technique(), act.Advanced.HealAmount))
			src.Record.HealingDone += ev.Heal
		}
	}

	facts := action.Facts{
		Hit:           ev.Success,
		Critical:      ev.Critical,
		Combo:         inChain,
		Killed:        ev.TargetBefore > 0 && !target.IsAlive(),
		Natural:       sel.RawRoll,
		ComboStep:     ev.ComboStep,
		TargetHealthF: tgt.HealthFraction(),
		SourceTags:    append(slices.Clone(src.Tags), act.Tags...),
	}
	if r.triggered(act, facts) {
		r.applyEffects(source, target, act, &ev)
		r.applyAdvanced(source, target, act, &ev)
	}

	if act.Advanced.EnemyRollPenalty > 0 && ev.Success && target != source && target.Side() != source.Side() {
		tgt.Transient.AddRollPenalty(act.Advanced.EnemyRollPenalty, max(r.cfg.RollPenaltyDuration, 1))
	}

	if source.Kind() == actor.KindHero || source.Kind() == actor.KindEnemy {
		r.advanceCombo(source, act, inChain, &ev)
	}

	act.StartCooldown()
	src.Transient.LastAction = act
	r.record(source, target, &ev)

	ev.ActorAfter = src.Health()
	ev.TargetAfter = tgt.Health()
	return r.emit(ev), nil
}

// owns reports whether a may use act.
func owns(a actor.Actor, act *action.Action) bool {
	if act.Synthetic() || a.State().Pool().Contains(act) {
		return true
	}
	if h, ok := a.(*actor.Hero); ok {
		return slices.Contains(h.UniqueActions, act)
	}
	return false
}

func (r *Resolver) comboAmplifier(src *actor.Base, act *action.Action) float64 {
	amp := ComboAmplifier(src.Technique(), r.cfg.Combo)
	if m := act.Advanced.ComboAmplifierMultiplier; m > 0 {
		amp *= m
	}
	return amp
}

// strike deals the damage of a landed damaging action, including extra hits
// and feedback onto the source.
func (r *Resolver) strike(source, target actor.Actor, act *action.Action, amp float64, total int, critical bool, ev *battlelog.Event) {
	src, tgt := source.State(), target.State()

	base := src.DamageBase()
	if act.Damage != "" {
		roll, err := dice.RollExpr(act.Damage, r.src)
		if err != nil {
			r.logger.Warn("invalid damage expression; using stats",
				zap.String("action", act.Name),
				zap.Error(err),
			)
		} else {
			base = roll.Total()
		}
	}

	armor := tgt.Armor()
	if effect.IgnoresArmor(tgt.Effects()) {
		armor = 0
	}
	first := RawDamage(DamageInput{
		Base:             base,
		ActionMultiplier: act.DamageMultiplier,
		ComboMultiplier:  amp,
		RollScaling:      RollScaling(total, critical, r.cfg.RollScaling),
		Extra:            src.Transient.TakeExtraDamage(),
		Armor:            armor,
	})
	conditional := 0.0
	if th := act.Advanced.HealthThreshold; th > 0 && tgt.HealthFraction() <= th {
		conditional = act.Advanced.ConditionalDamageMultiplier
	}

	hits := max(act.Advanced.MultiHitCount, 1) + max(act.Advanced.ExtraAttacks, 0)
	dealt := 0
	for i := 0; i < hits && (i == 0 || target.IsAlive() || target.Kind() == actor.KindHazard); i++ {
		dmg := first
		if i > 0 && act.Advanced.MultiHitDamagePercent > 0 {
			dmg = max(Percent(first, act.Advanced.MultiHitDamagePercent), 1)
		}
		dmg = Mitigate(dmg, effect.DamageTakenMultiplier(tgt.Effects()), tgt.Transient.TakeDamageReduction(), conditional)
		dealt += tgt.ApplyDamage(tgt.Effects().Absorb(dmg))
		ev.Hits++
	}
	ev.Damage = dealt
	ev.OneShot = ev.TargetBefore > 0 && !target.IsAlive() && dealt >= tgt.MaxHealth()

	feedback := Percent(dealt, float64(act.Advanced.SelfDamagePercent)) +
		int(float64(dealt)*effect.ReflectPercent(tgt.Effects()))
	if feedback > 0 && source != target {
		ev.SelfDamage = src.ApplyDamage(feedback)
		src.Record.DamageTaken += ev.SelfDamage
	}
}

func (r *Resolver) triggered(act *action.Action, facts action.Facts) bool {
	if act.Triggers.Unconditional() {
		return facts.Hit
	}
	if !act.Triggers.Matches(facts) {
		return false
	}
	if act.Triggers.Script == "" {
		return true
	}
	if r.triggers == nil {
		r.logger.Warn("scripted trigger without evaluator", zap.String("action", act.Name))
		return false
	}
	ok, err := r.triggers.EvaluateTrigger(act.Triggers.Script, facts)
	if err != nil {
		r.logger.Warn("trigger script failed",
			zap.String("action", act.Name),
			zap.String("script", act.Triggers.Script),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// applyEffects applies the action's status effects. Harmful effects land on
// the target, beneficial ones on the source for self and self-and-target
// actions.
func (r *Resolver) applyEffects(source, target actor.Actor, act *action.Action, ev *battlelog.Event) {
	for _, k := range act.Effects {
		def, ok := r.effects.Get(k)
		if !ok {
			r.logger.Warn("unknown effect", zap.String("action", act.Name), zap.String("effect", string(k)))
			continue
		}
		recipient := target
		if act.Target == action.Self || (act.Target == action.SelfAndTarget && !def.Harmful) {
			recipient = source
		}
		if !recipient.IsAlive() && recipient.Kind() != actor.KindHazard {
			continue
		}
		st := recipient.State()
		switch {
		case def.RemovesHarm:
			ev.EffectsRemove = append(ev.EffectsRemove, st.Effects().RemoveHarmful()...)
		case def.ResetsCombo:
			st.Combo().Reset()
		}
		if !def.Instant {
			duration := def.Duration
			if duration == 0 {
				duration = r.cfg.EffectDuration
			}
			if err := st.Effects().Apply(def, 1, duration); err != nil {
				r.logger.Warn("applying effect", zap.String("effect", string(k)), zap.Error(err))
				continue
			}
		}
		ev.EffectsAdded = append(ev.EffectsAdded, k)
	}
}

// applyAdvanced applies the action's side mechanics.
func (r *Resolver) applyAdvanced(source, target actor.Actor, act *action.Action, ev *battlelog.Event) {
	adv := act.Advanced
	src, tgt := source.State(), target.State()
	duration := func(n int) int {
		if n > 0 {
			return n
		}
		return r.cfg.EffectDuration
	}

	if adv.StatBonus != 0 && adv.StatBonusType != "" {
		src.Transient.AddModifier(actor.Stat(adv.StatBonusType), adv.StatBonus, duration(adv.StatBonusDuration))
	}
	if adv.ComboBonusAmount != 0 {
		src.Transient.AddModifier(actor.StatRoll, adv.ComboBonusAmount, duration(adv.ComboBonusDuration))
	}
	if adv.SkipNextTurn {
		src.Transient.SkipTurns++
	}
	if adv.GuaranteeNextSuccess {
		src.Transient.GuaranteeHit = true
	}
	if adv.RepeatLastAction {
		src.Transient.RepeatPending = true
	}
	if adv.ExtraDamage > 0 {
		src.Transient.ExtraDamage += adv.ExtraDamage
		src.Transient.ExtraDamageDecay = adv.ExtraDamageDecay
	}
	if adv.DamageReduction > 0 {
		src.Transient.DamageReduction = max(src.Transient.DamageReduction, adv.DamageReduction)
		src.Transient.DamageReductionDecay = adv.DamageReductionDecay
	}
	if adv.LengthReduction > 0 {
		src.Transient.SetLengthReduction(adv.LengthReduction, max(adv.LengthReductionDuration, 1))
	}
	if target == source {
		return
	}
	if adv.ResetEnemyCombo {
		tgt.Combo().Reset()
	}
	if adv.StunEnemy && target.IsAlive() {
		if stun, ok := r.effects.Get(effect.Stun); ok {
			if err := tgt.Effects().Apply(stun, 1, max(adv.StunDuration, 1)); err == nil {
				ev.EffectsAdded = append(ev.EffectsAdded, effect.Stun)
			}
		}
	}
}

// advanceCombo moves the source's chain. A landed chain action by a
// non-enemy advances it along the action's routing; a miss resets a hero's
// chain when so configured.
func (r *Resolver) advanceCombo(source actor.Actor, act *action.Action, inChain bool, ev *battlelog.Event) {
	seq := source.State().Combo()
	if !ev.Success {
		if source.Kind() == actor.KindHero && r.cfg.Combo.ResetOnMiss && seq.Step() > 0 {
			seq.Reset()
			ev.ComboEnded = true
		}
		return
	}
	if !inChain {
		return
	}
	ev.Combo = true
	if source.Kind() == actor.KindEnemy {
		return
	}
	ev.ComboEnded = seq.Advance(act.Routing, r.src)
}

func (r *Resolver) record(source, target actor.Actor, ev *battlelog.Event) {
	src, tgt := source.State(), target.State()
	src.Record.Actions++
	switch {
	case ev.CriticalMiss:
		src.Record.CriticalMisses++
		src.Record.Misses++
	case !ev.Success:
		src.Record.Misses++
	default:
		src.Record.Hits++
		if ev.Critical {
			src.Record.CriticalHits++
		}
		if ev.Combo {
			src.Record.ComboHits++
		}
	}
	if ev.Damage > 0 && target != source {
		src.Record.DamageDealt += ev.Damage
		tgt.Record.DamageTaken += ev.Damage
	}
	if ev.TargetBefore > 0 && !target.IsAlive() && target != source {
		src.Record.Kills++
		if ev.OneShot {
			src.Record.OneShotKills++
		}
	}
}

func (r *Resolver) emit(ev battlelog.Event) *battlelog.Event {
	if r.log == nil {
		r.logger.Debug("no battle log; event not recorded", zap.String("actor", ev.Actor), zap.String("action", ev.Action))
		return &ev
	}
	stored := r.log.Append(ev)
	return &stored
}
