package simulation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
)

// progressEvery is how many finished battles pass between progress logs.
const progressEvery = 100

// Driver runs simulation sweeps on a bounded worker pool.
type Driver struct {
	combat    config.CombatConfig
	sim       config.SimulationConfig
	instLimit int
	content   battle.Content
	roster    *Roster
	logger    *zap.Logger
}

// NewDriver creates a Driver.
//
// Precondition: roster must not be nil; content must hold a catalog and an
// effect registry.
func NewDriver(cfg config.Config, content battle.Content, roster *Roster, logger *zap.Logger) *Driver {
	if roster == nil {
		panic("simulation.NewDriver: roster must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		combat:    cfg.Combat,
		sim:       cfg.Simulation,
		instLimit: cfg.Scripting.InstructionLimit,
		content:   content,
		roster:    roster,
		logger:    logger,
	}
}

// BattleSeed derives the seed of battle index from the sweep seed. It is a
// splitmix64 step so neighbouring battles get unrelated streams.
func BattleSeed(sweep uint64, index int) uint64 {
	z := sweep + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Run plays the configured number of battles of sc and aggregates them.
//
// Postcondition: the report is identical (apart from RunID and timing) for
// any worker count. The first battle error cancels the sweep and is
// returned.
func (d *Driver) Run(ctx context.Context, sc Scenario) (Report, error) {
	setup, err := d.roster.Setup(sc)
	if err != nil {
		return Report{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	n := max(d.sim.Battles, 1)
	workers := max(d.sim.Workers, 1)

	report := Report{
		RunID:    uuid.NewString(),
		Scenario: sc.Name,
		Seed:     d.sim.Seed,
		Workers:  workers,
		Started:  time.Now(),
	}
	logger := d.logger.With(zap.String("run_id", report.RunID), zap.String("scenario", sc.Name))
	logger.Info("simulation starting", zap.Int("battles", n), zap.Int("workers", workers), zap.Uint64("seed", d.sim.Seed))

	results := make([]battle.Result, n)
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := d.runOne(gctx, setup, report.RunID, i)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			results[i] = res
			if done := finished.Add(1); done%progressEvery == 0 {
				logger.Info("simulation progress", zap.Int64("finished", done), zap.Int("battles", n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	aggregate(&report, results)
	report.Elapsed = time.Since(report.Started)
	logger.Info("simulation finished",
		zap.Float64("hero_win_rate", report.HeroWinRate()),
		zap.Float64("average_turns", report.AverageTurns()),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (d *Driver) runOne(ctx context.Context, setup battle.Setup, runID string, i int) (battle.Result, error) {
	b, err := battle.New(d.combat, d.content, setup, BattleSeed(d.sim.Seed, i),
		battle.WithLogger(d.logger),
		battle.WithInstructionLimit(d.instLimit),
		battle.WithID(fmt.Sprintf("%s-%d", runID, i)),
	)
	if err != nil {
		return battle.Result{}, err
	}
	return b.Run(ctx)
}
