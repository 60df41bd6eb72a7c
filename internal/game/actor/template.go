package actor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeonfighter/internal/game/action"
)

// PoolEntry names a catalog action and its selection weight.
type PoolEntry struct {
	Action string  `yaml:"action"`
	Weight float64 `yaml:"weight"`
}

// Template is the YAML definition of a hero, enemy or hazard.
type Template struct {
	Name      string      `yaml:"name"`
	Kind      Kind        `yaml:"kind"`
	Stats     Stats       `yaml:"stats"`
	MaxHealth int         `yaml:"max_health"`
	Armor     int         `yaml:"armor"`
	Weapon    Weapon      `yaml:"weapon"`
	Speed     float64     `yaml:"speed"`
	Actions   []PoolEntry `yaml:"actions"`
	// Combo lists the chain in order; empty derives it from the pool.
	Combo []string `yaml:"combo"`
	// UniqueActionsByWeapon maps a weapon type to its unique actions. Every
	// weapon type is its own key so that no two weapons share a branch.
	UniqueActionsByWeapon map[string][]string `yaml:"unique_actions_by_weapon"`
	UniqueActionChance    *float64            `yaml:"unique_action_chance"`
	// HazardAction is the single action a hazard performs.
	HazardAction string   `yaml:"hazard_action"`
	Tags         []string `yaml:"tags"`
}

// Validate checks the template's own fields; action references are checked
// by Build against a catalog.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("actor template: name must not be empty")
	}
	switch t.Kind {
	case KindHero, KindEnemy:
		if t.MaxHealth < 1 {
			return fmt.Errorf("actor template %q: max_health must be >= 1", t.Name)
		}
		if len(t.Actions) == 0 {
			return fmt.Errorf("actor template %q: at least one action is required", t.Name)
		}
	case KindHazard:
		if t.HazardAction == "" {
			return fmt.Errorf("actor template %q: hazard_action must not be empty", t.Name)
		}
	default:
		return fmt.Errorf("actor template %q: unknown kind %q", t.Name, t.Kind)
	}
	if t.Armor < 0 || t.Speed < 0 || t.Weapon.Speed < 0 {
		return fmt.Errorf("actor template %q: armor and speeds must not be negative", t.Name)
	}
	if c := t.UniqueActionChance; c != nil && (*c < 0 || *c > 1) {
		return fmt.Errorf("actor template %q: unique_action_chance must be within [0, 1]", t.Name)
	}
	return nil
}

// References lists every action name the template depends on.
func (t *Template) References() []string {
	var refs []string
	for _, e := range t.Actions {
		refs = append(refs, e.Action)
	}
	refs = append(refs, t.Combo...)
	if t.HazardAction != "" {
		refs = append(refs, t.HazardAction)
	}
	if t.Kind == KindHero {
		refs = append(refs, t.UniqueActionsByWeapon[t.Weapon.Type]...)
	}
	slices.Sort(refs)
	return slices.Compact(refs)
}

// Build instantiates the template with per-actor action copies.
//
// A reference missing from the catalog is returned as an error wrapping
// action.ErrNotFound.
func (t *Template) Build(catalog *action.Catalog, tuning Tuning, defaultUniqueChance float64) (Actor, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for _, ref := range t.References() {
		if _, err := catalog.Get(ref); err != nil {
			return nil, fmt.Errorf("actor %q: %w", t.Name, err)
		}
	}

	switch t.Kind {
	case KindHazard:
		act, _ := catalog.Instance(t.HazardAction)
		h := NewHazard(t.Name, t.Speed, act, tuning)
		h.Tags = slices.Clone(t.Tags)
		return h, nil
	case KindEnemy:
		e := NewEnemy(t.Name, t.Stats, t.MaxHealth, t.Armor, t.Speed, tuning)
		e.Tags = slices.Clone(t.Tags)
		t.fill(e.Base, catalog)
		return e, nil
	default:
		h := NewHero(t.Name, t.Stats, t.MaxHealth, t.Armor, t.Weapon, tuning)
		h.Tags = slices.Clone(t.Tags)
		t.fill(h.Base, catalog)
		for _, name := range t.UniqueActionsByWeapon[t.Weapon.Type] {
			a, _ := catalog.Instance(name)
			h.UniqueActions = append(h.UniqueActions, a)
		}
		h.UniqueChance = defaultUniqueChance
		if t.UniqueActionChance != nil {
			h.UniqueChance = *t.UniqueActionChance
		}
		return h, nil
	}
}

// fill populates the pool and combo chain. References are already checked.
func (t *Template) fill(b *Base, catalog *action.Catalog) {
	for _, e := range t.Actions {
		a, _ := catalog.Instance(e.Action)
		b.Pool().Add(a, e.Weight)
	}
	if len(t.Combo) == 0 {
		b.SetCombo(action.NewSequence(b.Pool().ComboActions()))
		return
	}
	chain := make([]*action.Action, 0, len(t.Combo))
	for _, name := range t.Combo {
		a, ok := b.Pool().Get(name)
		if !ok {
			a, _ = catalog.Instance(name)
			b.Pool().Add(a, 1)
		}
		chain = append(chain, a)
	}
	b.SetCombo(action.NewSequence(chain))
}

// LoadTemplateFromBytes parses and validates one template.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads every *.yaml template in dir, sorted by file name.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %q: %w", dir, err)
	}
	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
