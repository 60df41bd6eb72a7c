// Package battle owns everything one battle needs and runs its turn loop.
package battle

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battlelog"
	"github.com/cory-johannsen/dungeonfighter/internal/game/clock"
	"github.com/cory-johannsen/dungeonfighter/internal/game/combat"
	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
	"github.com/cory-johannsen/dungeonfighter/internal/game/scheduler"
	"github.com/cory-johannsen/dungeonfighter/internal/game/selection"
	"github.com/cory-johannsen/dungeonfighter/internal/observability"
	"github.com/cory-johannsen/dungeonfighter/internal/scripting"
)

// ErrCannotStart is returned when a battle's setup violates its data
// contract, such as an actor referencing an action missing from the catalog.
var ErrCannotStart = errors.New("battle: cannot start")

// Outcome is how a battle ended.
type Outcome string

const (
	InProgress  Outcome = ""
	HeroesWin   Outcome = "heroes"
	EnemiesWin  Outcome = "enemies"
	Draw        Outcome = "draw"
	Interrupted Outcome = "interrupted"
)

// Content is the read-only data shared by every battle.
type Content struct {
	Catalog *action.Catalog
	Effects *effect.Registry
	// Scripts is optional; without it scripted triggers never fire.
	Scripts *scripting.Library
}

// Setup lists the templates fighting on each side.
type Setup struct {
	Heroes  []*actor.Template
	Enemies []*actor.Template
	Hazards []*actor.Template
}

// Option configures a Battle.
type Option func(*Battle)

// WithLogger sets the parent logger; battle logs carry battle_id and seed.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Battle) { b.logger = logger }
}

// WithInstructionLimit bounds each trigger script call.
func WithInstructionLimit(n int) Option {
	return func(b *Battle) { b.instLimit = n }
}

// WithID overrides the generated battle ID.
func WithID(id string) Option {
	return func(b *Battle) { b.ID = id }
}

// Battle is one self-contained battle. It owns its clock, scheduler, RNG,
// action copies and log, so battles never share mutable state.
//
// A Battle is not safe for concurrent use; run each on its own goroutine.
type Battle struct {
	ID   string
	Seed uint64

	cfg       config.CombatConfig
	clock     *clock.Clock
	sched     *scheduler.Scheduler
	src       dice.Source
	roller    *dice.Roller
	automaton *selection.Automaton
	resolver  *combat.Resolver
	log       *battlelog.Log
	scripts   *scripting.Manager
	instLimit int
	logger    *zap.Logger

	heroes  []actor.Actor
	enemies []actor.Actor
	hazards []actor.Actor

	turns   int
	outcome Outcome
}

// New validates setup against content and builds a ready battle.
//
// Precondition: content.Catalog and content.Effects must be non-nil.
// Postcondition: on error the returned error wraps ErrCannotStart, and for
// missing action references also action.ErrNotFound.
func New(cfg config.CombatConfig, content Content, setup Setup, seed uint64, opts ...Option) (*Battle, error) {
	if content.Catalog == nil || content.Effects == nil {
		return nil, fmt.Errorf("%w: catalog and effect registry are required", ErrCannotStart)
	}
	if len(setup.Heroes) == 0 || len(setup.Enemies) == 0 {
		return nil, fmt.Errorf("%w: both sides need at least one actor", ErrCannotStart)
	}

	b := &Battle{
		ID:     uuid.NewString(),
		Seed:   seed,
		cfg:    cfg,
		clock:  clock.New(),
		src:    dice.NewSeededSource(seed),
		log:    battlelog.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = observability.ForBattle(b.logger, b.ID, seed)
	b.roller = dice.NewLoggedRoller(b.src, b.logger)
	b.sched = scheduler.New(b.clock, cfg.Speed, b.logger)
	b.automaton = selection.New(cfg.Thresholds, b.src, b.logger)

	var err error
	tuning := actor.TuningFrom(cfg)
	names := map[string]int{}
	if b.heroes, err = b.build(setup.Heroes, content.Catalog, tuning, names); err != nil {
		return nil, err
	}
	if b.enemies, err = b.build(setup.Enemies, content.Catalog, tuning, names); err != nil {
		return nil, err
	}
	if b.hazards, err = b.build(setup.Hazards, content.Catalog, tuning, names); err != nil {
		return nil, err
	}

	var triggers combat.TriggerEvaluator
	if content.Scripts != nil {
		b.scripts, err = scripting.NewManager(content.Scripts, b.roller, b.instLimit, b.logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCannotStart, err)
		}
		triggers = b.scripts
	}
	b.resolver = combat.NewResolver(cfg, content.Effects, b.src, b.log, triggers, b.logger)

	for _, a := range b.Actors() {
		b.sched.Register(a, a.EffectiveActionSpeed())
	}
	b.logger.Debug("battle ready",
		zap.Int("heroes", len(b.heroes)),
		zap.Int("enemies", len(b.enemies)),
		zap.Int("hazards", len(b.hazards)),
	)
	return b, nil
}

// build instantiates templates, suffixing repeated names so every actor in
// the battle has a unique name.
func (b *Battle) build(tmpls []*actor.Template, catalog *action.Catalog, tuning actor.Tuning, names map[string]int) ([]actor.Actor, error) {
	out := make([]actor.Actor, 0, len(tmpls))
	for _, t := range tmpls {
		if t == nil {
			return nil, fmt.Errorf("%w: nil actor template", ErrCannotStart)
		}
		tc := *t
		names[t.Name]++
		if n := names[t.Name]; n > 1 {
			tc.Name = fmt.Sprintf("%s #%d", t.Name, n)
		}
		a, err := tc.Build(catalog, tuning, b.cfg.UniqueActionChance)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCannotStart, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Close releases the battle's script VM. It is safe to call more than once.
func (b *Battle) Close() {
	if b.scripts != nil {
		b.scripts.Close()
		b.scripts = nil
	}
}

// Log returns the battle's event log.
func (b *Battle) Log() *battlelog.Log { return b.log }

// Clock returns the battle clock.
func (b *Battle) Clock() *clock.Clock { return b.clock }

// Scheduler returns the readiness scheduler.
func (b *Battle) Scheduler() *scheduler.Scheduler { return b.sched }

// Logger returns the battle-scoped logger.
func (b *Battle) Logger() *zap.Logger { return b.logger }

// Outcome returns the result so far.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Turns returns the number of turns taken.
func (b *Battle) Turns() int { return b.turns }

// Heroes returns the hero side.
func (b *Battle) Heroes() []actor.Actor { return b.heroes }

// Enemies returns the enemy side.
func (b *Battle) Enemies() []actor.Actor { return b.enemies }

// Actors returns every actor: heroes, enemies, then hazards.
func (b *Battle) Actors() []actor.Actor {
	return slices.Concat(b.heroes, b.enemies, b.hazards)
}

// Run steps the battle until it ends, MaxTurns is reached or ctx is
// cancelled, then closes it.
func (b *Battle) Run(ctx context.Context) (Result, error) {
	defer b.Close()
	for {
		if err := ctx.Err(); err != nil {
			b.outcome = Interrupted
			return b.Result(), err
		}
		more, err := b.Step()
		if err != nil {
			return b.Result(), err
		}
		if !more {
			break
		}
	}
	b.logger.Debug("battle finished",
		zap.String("outcome", string(b.outcome)),
		zap.Int("turns", b.turns),
		zap.Float64("time", b.clock.Now()),
	)
	return b.Result(), nil
}
