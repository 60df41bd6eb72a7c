package battle

import (
	"fmt"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
	"github.com/cory-johannsen/dungeonfighter/internal/game/effect"
	"github.com/cory-johannsen/dungeonfighter/internal/scripting"
)

// LoadContent reads the action catalog, the effect registry and, when
// scripts.TriggerDir is set, the trigger script library.
func LoadContent(paths config.ContentConfig, scripts config.ScriptingConfig) (Content, error) {
	catalog, err := action.LoadCatalog(paths.ActionsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading actions: %w", err)
	}
	effects := effect.DefaultRegistry()
	if paths.EffectsDir != "" {
		if effects, err = effect.LoadDirectory(paths.EffectsDir); err != nil {
			return Content{}, fmt.Errorf("loading effects: %w", err)
		}
	}
	c := Content{Catalog: catalog, Effects: effects}
	if scripts.TriggerDir != "" {
		if c.Scripts, err = scripting.LoadLibrary(scripts.TriggerDir); err != nil {
			return Content{}, fmt.Errorf("loading trigger scripts: %w", err)
		}
	}
	return c, nil
}
