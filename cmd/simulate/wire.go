//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
	"github.com/cory-johannsen/dungeonfighter/internal/simulation"
)

func initializeApp(path string, o Overrides) (*App, func(), error) {
	wire.Build(
		provideConfig,
		wire.FieldsOf(new(config.Config), "Logging", "Scripting", "Content"),
		provideLogger,
		battle.LoadContent,
		simulation.LoadRoster,
		provideScenarios,
		simulation.NewDriver,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
