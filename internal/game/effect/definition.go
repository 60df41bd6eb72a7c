// Package effect models timed status effects: their static definitions and
// the per-actor counters the combat resolver mutates.
package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies a status effect.
type Kind string

const (
	Bleed         Kind = "bleed"
	Poison        Kind = "poison"
	Burn          Kind = "burn"
	Stun          Kind = "stun"
	Slow          Kind = "slow"
	Weaken        Kind = "weaken"
	Vulnerability Kind = "vulnerability"
	Harden        Kind = "harden"
	Fortify       Kind = "fortify"
	Focus         Kind = "focus"
	Expose        Kind = "expose"
	Regen         Kind = "regen"
	ArmorBreak    Kind = "armor_break"
	Pierce        Kind = "pierce"
	Reflect       Kind = "reflect"
	Silence       Kind = "silence"
	StatDrain     Kind = "stat_drain"
	Absorb        Kind = "absorb"
	TemporaryHP   Kind = "temporary_hp"
	Confusion     Kind = "confusion"
	Cleanse       Kind = "cleanse"
	Mark          Kind = "mark"
	Disrupt       Kind = "disrupt"
)

// Kinds lists every known effect in declaration order.
var Kinds = []Kind{
	Bleed, Poison, Burn, Stun, Slow, Weaken, Vulnerability, Harden, Fortify,
	Focus, Expose, Regen, ArmorBreak, Pierce, Reflect, Silence, StatDrain,
	Absorb, TemporaryHP, Confusion, Cleanse, Mark, Disrupt,
}

// Valid reports whether k is a known effect.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// Def is the static definition of an effect.
//
// Numeric modifiers are per stack. Zero multipliers mean "no change".
type Def struct {
	ID          Kind   `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Harmful     bool   `yaml:"harmful"`
	// Duration is in owner turns; 0 uses the configured default.
	Duration  int `yaml:"duration"`
	MaxStacks int `yaml:"max_stacks"` // 0 = unstackable

	RollModifier          int     `yaml:"roll_modifier"`
	ArmorModifier         int     `yaml:"armor_modifier"`
	StrengthModifier      int     `yaml:"strength_modifier"`
	DamageTakenMultiplier float64 `yaml:"damage_taken_multiplier"`
	SpeedMultiplier       float64 `yaml:"speed_multiplier"`
	TickDamage            int     `yaml:"tick_damage"`
	TickHeal              int     `yaml:"tick_heal"`
	Shield                int     `yaml:"shield"`
	ReflectPercent        float64 `yaml:"reflect_percent"`
	ConfusionChance       float64 `yaml:"confusion_chance"`

	SkipsTurn    bool `yaml:"skips_turn"`
	BlocksCombo  bool `yaml:"blocks_combo"`
	IgnoresArmor bool `yaml:"ignores_armor"`
	// Instant effects act on application and are never stored.
	Instant     bool `yaml:"instant"`
	RemovesHarm bool `yaml:"removes_harm"`
	ResetsCombo bool `yaml:"resets_combo"`
}

// Validate reports the first problem with d.
func (d *Def) Validate() error {
	if !d.ID.Valid() {
		return fmt.Errorf("unknown effect id %q", d.ID)
	}
	if d.Duration < 0 || d.MaxStacks < 0 {
		return fmt.Errorf("effect %q: duration and max_stacks must not be negative", d.ID)
	}
	if d.DamageTakenMultiplier < 0 || d.SpeedMultiplier < 0 {
		return fmt.Errorf("effect %q: multipliers must not be negative", d.ID)
	}
	if d.ReflectPercent < 0 || d.ReflectPercent > 1 || d.ConfusionChance < 0 || d.ConfusionChance > 1 {
		return fmt.Errorf("effect %q: reflect_percent and confusion_chance must be within [0, 1]", d.ID)
	}
	return nil
}

// Registry holds effect definitions keyed by Kind.
type Registry struct {
	defs map[Kind]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Def)}
}

// Register adds or replaces def.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the definition for k.
func (r *Registry) Get(k Kind) (*Def, bool) {
	d, ok := r.defs[k]
	return d, ok
}

// All returns the definitions sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Def) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// LoadDirectory reads every *.yaml file in dir on top of DefaultRegistry.
// Each file holds one Def; unknown fields are rejected.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}

// DefaultRegistry returns the built-in definition of every Kind.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, d := range []Def{
		{ID: Bleed, Name: "Bleed", Harmful: true, MaxStacks: 5, TickDamage: 2},
		{ID: Poison, Name: "Poison", Harmful: true, MaxStacks: 5, TickDamage: 1, Duration: 5},
		{ID: Burn, Name: "Burn", Harmful: true, MaxStacks: 3, TickDamage: 3, Duration: 2},
		{ID: Stun, Name: "Stun", Harmful: true, Duration: 1, SkipsTurn: true},
		{ID: Slow, Name: "Slow", Harmful: true, SpeedMultiplier: 1.5},
		{ID: Weaken, Name: "Weaken", Harmful: true, DamageTakenMultiplier: 1.5},
		{ID: Vulnerability, Name: "Vulnerability", Harmful: true, DamageTakenMultiplier: 1.25},
		{ID: Harden, Name: "Harden", DamageTakenMultiplier: 0.75},
		{ID: Fortify, Name: "Fortify", ArmorModifier: 3},
		{ID: Focus, Name: "Focus", RollModifier: 2},
		{ID: Expose, Name: "Expose", Harmful: true, ArmorModifier: -2, RollModifier: -1},
		{ID: Regen, Name: "Regen", MaxStacks: 3, TickHeal: 2},
		{ID: ArmorBreak, Name: "Armor Break", Harmful: true, MaxStacks: 3, ArmorModifier: -2},
		{ID: Pierce, Name: "Pierce", Harmful: true, IgnoresArmor: true, Duration: 1},
		{ID: Reflect, Name: "Reflect", ReflectPercent: 0.25},
		{ID: Silence, Name: "Silence", Harmful: true, BlocksCombo: true, Duration: 2},
		{ID: StatDrain, Name: "Stat Drain", Harmful: true, MaxStacks: 3, StrengthModifier: -2},
		{ID: Absorb, Name: "Absorb", Shield: 10},
		{ID: TemporaryHP, Name: "Temporary HP", Shield: 5, Duration: 5},
		{ID: Confusion, Name: "Confusion", Harmful: true, ConfusionChance: 0.3, Duration: 2},
		{ID: Cleanse, Name: "Cleanse", Instant: true, RemovesHarm: true},
		{ID: Mark, Name: "Mark", Harmful: true, DamageTakenMultiplier: 1.1},
		{ID: Disrupt, Name: "Disrupt", Harmful: true, Instant: true, ResetsCombo: true},
	} {
		def := d
		reg.Register(&def)
	}
	return reg
}
