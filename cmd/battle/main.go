// Package main runs one seeded battle and prints its event log as it is
// written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
	"github.com/cory-johannsen/dungeonfighter/internal/observability"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioName := flag.String("scenario", "", "scenario name (default from config)")
	seed := flag.Uint64("seed", 0, "battle seed (0 = time based)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := battle.LoadContent(cfg.Content, cfg.Scripting)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	roster, err := simulation.LoadRoster(cfg.Content)
	if err != nil {
		logger.Fatal("loading templates", zap.Error(err))
	}
	scenarios, err := simulation.LoadScenarios(cfg.Content.ScenariosDir)
	if err != nil {
		logger.Fatal("loading scenarios", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("actions", content.Catalog.Len()),
		zap.Int("templates", roster.Len()),
		zap.Int("scenarios", len(scenarios)),
		zap.Duration("elapsed", time.Since(start)),
	)

	name := cfg.Simulation.Scenario
	if *scenarioName != "" {
		name = *scenarioName
	}
	sc, err := scenarios.Get(name)
	if err != nil {
		logger.Fatal("selecting scenario", zap.Error(err), zap.Strings("available", scenarios.Names()))
	}
	setup, err := roster.Setup(sc)
	if err != nil {
		logger.Fatal("resolving scenario", zap.Error(err))
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	b, err := battle.New(cfg.Combat, content, setup, *seed,
		battle.WithLogger(logger),
		battle.WithInstructionLimit(cfg.Scripting.InstructionLimit),
	)
	if err != nil {
		logger.Fatal("creating battle", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := b.Log().Reader()
	done := make(chan struct{})
	var (
		res    battle.Result
		runErr error
	)
	go func() {
		defer close(done)
		res, runErr = b.Run(ctx)
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for running := true; running; {
		select {
		case <-done:
			running = false
		case <-ticker.C:
		}
		for _, ev := range reader.Drain() {
			fmt.Println(ev.String())
		}
	}
	if runErr != nil {
		logger.Warn("battle interrupted", zap.Error(runErr))
	}

	fmt.Printf("\n%s after %d turns (clock %.2f, seed %d)\n", res.Outcome, res.Turns, res.Duration, res.Seed)
	for _, a := range res.Actors {
		fmt.Printf("  %-16s %-8s %3d/%-3d hp  dealt %4d  taken %4d\n",
			a.Name, a.Side, a.Health, a.MaxHealth, a.Record.DamageDealt, a.Record.DamageTaken)
	}
}
