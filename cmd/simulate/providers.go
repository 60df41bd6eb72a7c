package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/observability"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

// Overrides are command-line values that win over the config file. Zero
// values leave the configured setting alone.
type Overrides struct {
	Scenario string
	Battles  int
	Workers  int
	Seed     uint64
	Persist  bool
}

// App is everything a sweep needs.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Driver    *simulation.Driver
	Scenarios simulation.Scenarios
}

func provideConfig(path string, o Overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if o.Scenario != "" {
		cfg.Simulation.Scenario = o.Scenario
	}
	if o.Battles > 0 {
		cfg.Simulation.Battles = o.Battles
	}
	if o.Workers > 0 {
		cfg.Simulation.Workers = o.Workers
	}
	if o.Seed > 0 {
		cfg.Simulation.Seed = o.Seed
	}
	if o.Persist {
		cfg.Simulation.Persist = true
	}
	return cfg, nil
}

func provideLogger(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideScenarios(paths config.ContentConfig) (simulation.Scenarios, error) {
	return simulation.LoadScenarios(paths.ScenariosDir)
}
