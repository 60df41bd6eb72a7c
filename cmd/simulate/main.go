// Package main runs a balance sweep: many seeded battles of one scenario,
// aggregated into win rates and per-side statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
	"github.com/cory-johannsen/dungeonfighter/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	var o Overrides
	flag.StringVar(&o.Scenario, "scenario", "", "scenario name (default from config)")
	flag.IntVar(&o.Battles, "battles", 0, "number of battles (0 = config)")
	flag.IntVar(&o.Workers, "workers", 0, "concurrent battles (0 = config)")
	flag.Uint64Var(&o.Seed, "seed", 0, "sweep seed (0 = config)")
	flag.BoolVar(&o.Persist, "persist", false, "store the report in PostgreSQL")
	flag.Parse()

	app, cleanup, err := initializeApp(*configPath, o)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()
	logger := app.Logger

	sc, err := app.Scenarios.Get(app.Config.Simulation.Scenario)
	if err != nil {
		logger.Fatal("selecting scenario", zap.Error(err), zap.Strings("available", app.Scenarios.Names()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := app.Driver.Run(ctx, sc)
	if err != nil {
		logger.Fatal("running simulation", zap.Error(err))
	}
	printReport(os.Stdout, report)

	if app.Config.Simulation.Persist {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, app.Config.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.SaveReport(ctx, report); err != nil {
			logger.Fatal("saving simulation run", zap.Error(err))
		}
		logger.Info("simulation run saved",
			zap.String("run_id", report.RunID),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	}

	logger.Info("simulate finished", zap.Duration("elapsed", time.Since(start)))
}

func printReport(w io.Writer, r simulation.Report) {
	fmt.Fprintf(w, "scenario %s: %d battles, seed %d, %d workers [%s]\n",
		r.Scenario, r.Count(), r.Seed, r.Workers, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "heroes win %.1f%%  enemies win %.1f%%  draws %.1f%%\n",
		100*r.HeroWinRate(), 100*r.EnemyWinRate(), 100*r.DrawRate())
	fmt.Fprintf(w, "average %.1f turns, %.2f clock\n\n", r.AverageTurns(), r.AverageDuration())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "side\tactions\thit%\tcrits\tcombo hits\tdamage\thealing\tone-shots\tkills\tdeaths\t")
	for _, row := range []struct {
		name string
		s    simulation.SideStats
	}{{"heroes", r.Heroes}, {"enemies", r.Enemies}} {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			row.name, row.s.Actions, 100*row.s.HitRate(), row.s.CriticalHits, row.s.ComboHits,
			row.s.DamageDealt, row.s.HealingDone, row.s.OneShotKills, row.s.Kills, row.s.Deaths)
	}
	_ = tw.Flush()
}
