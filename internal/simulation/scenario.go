// Package simulation runs many seeded battles of one scenario in parallel
// and aggregates their outcomes for balance tuning.
package simulation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfighter/internal/config"
	"github.com/cory-johannsen/dungeonfighter/internal/game/actor"
	"github.com/cory-johannsen/dungeonfighter/internal/game/battle"
)

// ErrUnknownTemplate is returned when a scenario names a template the roster
// does not hold.
var ErrUnknownTemplate = errors.New("unknown template")

// ErrUnknownScenario is returned by Scenarios.Get for a missing name.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario names the templates fighting on each side. A name may repeat to
// field several copies of the same template.
type Scenario struct {
	Name    string   `yaml:"name"`
	Heroes  []string `yaml:"heroes"`
	Enemies []string `yaml:"enemies"`
	Hazards []string `yaml:"hazards"`
}

// Validate reports the first structural problem with the scenario.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name must not be empty")
	}
	if len(s.Heroes) == 0 || len(s.Enemies) == 0 {
		return fmt.Errorf("scenario %q needs at least one hero and one enemy", s.Name)
	}
	return nil
}

// LoadScenarioFromBytes parses and validates one scenario.
func LoadScenarioFromBytes(data []byte) (Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Scenarios indexes scenarios by name.
type Scenarios map[string]Scenario

// Get returns the named scenario or ErrUnknownScenario.
func (s Scenarios) Get(name string) (Scenario, error) {
	sc, ok := s[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return sc, nil
}

// Names returns the scenario names in sorted order.
func (s Scenarios) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadScenarios reads every *.yaml scenario in dir. Duplicate names are an
// error.
func LoadScenarios(dir string) (Scenarios, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir %q: %w", dir, err)
	}
	out := make(Scenarios)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		sc, err := LoadScenarioFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := out[sc.Name]; dup {
			return nil, fmt.Errorf("loading %q: duplicate scenario %q", path, sc.Name)
		}
		out[sc.Name] = sc
	}
	return out, nil
}

// Roster indexes actor templates by name for scenario lookup.
type Roster struct {
	templates map[string]*actor.Template
}

// NewRoster indexes the given templates. Later templates with the same name
// replace earlier ones.
func NewRoster(templates ...[]*actor.Template) *Roster {
	r := &Roster{templates: make(map[string]*actor.Template)}
	for _, group := range templates {
		for _, t := range group {
			r.templates[t.Name] = t
		}
	}
	return r
}

// Len returns the number of indexed templates.
func (r *Roster) Len() int { return len(r.templates) }

// Template returns the named template.
func (r *Roster) Template(name string) (*actor.Template, bool) {
	t, ok := r.templates[name]
	return t, ok
}

// Setup resolves a scenario into battle templates.
//
// Postcondition: an unresolvable name yields an error matching both
// ErrUnknownTemplate and battle.ErrCannotStart.
func (r *Roster) Setup(sc Scenario) (battle.Setup, error) {
	var setup battle.Setup
	var err error
	if setup.Heroes, err = r.resolve(sc.Heroes, actor.KindHero); err != nil {
		return battle.Setup{}, err
	}
	if setup.Enemies, err = r.resolve(sc.Enemies, actor.KindEnemy); err != nil {
		return battle.Setup{}, err
	}
	if setup.Hazards, err = r.resolve(sc.Hazards, actor.KindHazard); err != nil {
		return battle.Setup{}, err
	}
	return setup, nil
}

func (r *Roster) resolve(names []string, kind actor.Kind) ([]*actor.Template, error) {
	out := make([]*actor.Template, 0, len(names))
	for _, n := range names {
		t, ok := r.templates[n]
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s %q", battle.ErrCannotStart, ErrUnknownTemplate, kind, n)
		}
		if t.Kind != kind {
			return nil, fmt.Errorf("%w: template %q is a %s, not a %s", battle.ErrCannotStart, n, t.Kind, kind)
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadRoster reads the hero, enemy and hazard template directories. An empty
// hazards directory setting is allowed.
func LoadRoster(paths config.ContentConfig) (*Roster, error) {
	var groups [][]*actor.Template
	for _, dir := range []string{paths.HeroesDir, paths.EnemiesDir, paths.HazardsDir} {
		if dir == "" {
			continue
		}
		tmpls, err := actor.LoadTemplates(dir)
		if err != nil {
			return nil, err
		}
		groups = append(groups, tmpls)
	}
	return NewRoster(groups...), nil
}
