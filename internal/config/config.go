// Package config loads the engine configuration through Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
	// Output lists zap sink paths; empty means stderr.
	Output []string `mapstructure:"output"`
}

// ThresholdConfig holds the d20 classification and hit boundaries.
type ThresholdConfig struct {
	// Combo is the minimum total that selects a combo action.
	Combo int `mapstructure:"combo"`
	// Basic is the minimum total for a basic attack expected to connect.
	// Totals below it still attack but miss.
	Basic int `mapstructure:"basic"`
	// Critical is the minimum total counted as a critical hit.
	Critical int `mapstructure:"critical"`
	// CriticalMiss is the highest total counted as a critical miss.
	CriticalMiss int `mapstructure:"critical_miss"`
	// Natural is the die face that always combos and crits.
	Natural int `mapstructure:"natural"`
}

// SpeedConfig holds the readiness math constants.
type SpeedConfig struct {
	AgilityReduction float64 `mapstructure:"agility_reduction"`
	Floor            float64 `mapstructure:"floor"`
	TieBuffer        float64 `mapstructure:"tie_buffer"`
	ProgressEpsilon  float64 `mapstructure:"progress_epsilon"`
	StunSkip         float64 `mapstructure:"stun_skip"`
}

// ComboConfig controls combo amplification.
//
// The amplifier at technique t is Base + t*PerTechnique, capped at Max, and
// is raised to the power of the chain depth.
type ComboConfig struct {
	AmplifierBase float64 `mapstructure:"amplifier_base"`
	PerTechnique  float64 `mapstructure:"per_technique"`
	AmplifierMax  float64 `mapstructure:"amplifier_max"`
	ResetOnMiss   bool    `mapstructure:"reset_on_miss"`
	// RollBonusScale converts the amplifier into a roll bonus for actions
	// tagged with combo amplification scaling.
	RollBonusScale float64 `mapstructure:"roll_bonus_scale"`
}

// RollScalingConfig maps roll totals onto damage multipliers.
type RollScalingConfig struct {
	HighThreshold      int     `mapstructure:"high_threshold"`
	HighMultiplier     float64 `mapstructure:"high_multiplier"`
	MediumThreshold    int     `mapstructure:"medium_threshold"`
	MediumMultiplier   float64 `mapstructure:"medium_multiplier"`
	CriticalMultiplier float64 `mapstructure:"critical_multiplier"`
}

// CombatConfig is the read-only tuning consumed by the combat packages.
type CombatConfig struct {
	Thresholds  ThresholdConfig   `mapstructure:"thresholds"`
	Speed       SpeedConfig       `mapstructure:"speed"`
	Combo       ComboConfig       `mapstructure:"combo"`
	RollScaling RollScalingConfig `mapstructure:"roll_scaling"`
	// IntelligencePerRollBonus is how many intelligence points grant +1 roll.
	IntelligencePerRollBonus int `mapstructure:"intelligence_per_roll_bonus"`
	// AgilityPerDefense is how many agility points add 1 to hit difficulty.
	AgilityPerDefense int `mapstructure:"agility_per_defense"`
	// UniqueActionChance is the default hero unique-action override chance.
	UniqueActionChance float64 `mapstructure:"unique_action_chance"`
	// EffectDuration is used for status effects whose definition omits one.
	EffectDuration int `mapstructure:"effect_duration"`
	// RollPenaltyDuration is how many turns an enemy roll penalty lasts.
	RollPenaltyDuration int `mapstructure:"roll_penalty_duration"`
	// MaxTurns ends a battle as a draw.
	MaxTurns int `mapstructure:"max_turns"`
}

// SimulationConfig controls balance sweeps.
type SimulationConfig struct {
	Battles  int    `mapstructure:"battles"`
	Workers  int    `mapstructure:"workers"`
	Seed     uint64 `mapstructure:"seed"`
	Scenario string `mapstructure:"scenario"`
	Persist  bool   `mapstructure:"persist"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// HealthTimeout bounds the ping made before writes.
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ScriptingConfig controls the Lua trigger VM.
type ScriptingConfig struct {
	// TriggerDir holds *.lua files defining trigger predicates; empty disables scripting.
	TriggerDir       string `mapstructure:"trigger_dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// ContentConfig names the YAML data directories.
type ContentConfig struct {
	ActionsDir string `mapstructure:"actions_dir"`
	EffectsDir string `mapstructure:"effects_dir"`
	HeroesDir  string `mapstructure:"heroes_dir"`
	EnemiesDir string `mapstructure:"enemies_dir"`
	HazardsDir string `mapstructure:"hazards_dir"`
	// ScenariosDir holds the simulation scenarios.
	ScenariosDir string `mapstructure:"scenarios_dir"`
}

// Config is the top-level configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Content    ContentConfig    `mapstructure:"content"`
}

// DefaultCombat returns the stock combat tuning.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		Thresholds: ThresholdConfig{Combo: 14, Basic: 6, Critical: 20, CriticalMiss: 1, Natural: 20},
		Speed: SpeedConfig{
			AgilityReduction: 0.05,
			Floor:            0.5,
			TieBuffer:        0.01,
			ProgressEpsilon:  0.1,
			StunSkip:         1.0,
		},
		Combo: ComboConfig{
			AmplifierBase:  1.0,
			PerTechnique:   0.01,
			AmplifierMax:   1.5,
			ResetOnMiss:    true,
			RollBonusScale: 2,
		},
		RollScaling: RollScalingConfig{
			HighThreshold:      15,
			HighMultiplier:     1.5,
			MediumThreshold:    10,
			MediumMultiplier:   1.25,
			CriticalMultiplier: 2.0,
		},
		IntelligencePerRollBonus: 10,
		AgilityPerDefense:        2,
		UniqueActionChance:       0.05,
		EffectDuration:           3,
		RollPenaltyDuration:      1,
		MaxTurns:                 1000,
	}
}

// Validate checks every section and reports all violations at once.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateCombat(c.Combat),
		validateSimulation(c.Simulation),
		validateDatabase(c.Database),
		validateScripting(c.Scripting),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Validate checks the combat tuning on its own.
func (c CombatConfig) Validate() error {
	return validateCombat(c)
}

func validateCombat(c CombatConfig) error {
	var errs []string
	t := c.Thresholds
	if t.CriticalMiss < 0 {
		errs = append(errs, "combat.thresholds.critical_miss must be >= 0")
	}
	if t.Basic <= t.CriticalMiss {
		errs = append(errs, fmt.Sprintf("combat.thresholds.basic (%d) must exceed critical_miss (%d)", t.Basic, t.CriticalMiss))
	}
	if t.Combo <= t.Basic {
		errs = append(errs, fmt.Sprintf("combat.thresholds.combo (%d) must exceed basic (%d)", t.Combo, t.Basic))
	}
	if t.Natural < 1 || t.Natural > 20 {
		errs = append(errs, fmt.Sprintf("combat.thresholds.natural must be 1-20, got %d", t.Natural))
	}
	if c.Speed.Floor <= 0 {
		errs = append(errs, "combat.speed.floor must be > 0")
	}
	if c.Speed.AgilityReduction < 0 {
		errs = append(errs, "combat.speed.agility_reduction must not be negative")
	}
	if c.Speed.TieBuffer < 0 || c.Speed.ProgressEpsilon <= 0 {
		errs = append(errs, "combat.speed.tie_buffer must be >= 0 and progress_epsilon > 0")
	}
	if c.Combo.AmplifierBase < 1 || c.Combo.AmplifierMax < c.Combo.AmplifierBase {
		errs = append(errs, "combat.combo amplifier must satisfy 1 <= amplifier_base <= amplifier_max")
	}
	if c.UniqueActionChance < 0 || c.UniqueActionChance > 1 {
		errs = append(errs, "combat.unique_action_chance must be within [0, 1]")
	}
	if c.IntelligencePerRollBonus < 1 || c.AgilityPerDefense < 1 {
		errs = append(errs, "combat.intelligence_per_roll_bonus and agility_per_defense must be >= 1")
	}
	if c.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_turns must be >= 1, got %d", c.MaxTurns))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Battles < 1 {
		errs = append(errs, fmt.Sprintf("simulation.battles must be >= 1, got %d", s.Battles))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 1, got %d", s.Workers))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must be within [0, max_conns]")
	}
	if d.HealthTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("database.health_timeout must be > 0, got %s", d.HealthTimeout))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads the YAML file at path, applies DF_ environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("DF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-populated Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	c := DefaultCombat()
	v.SetDefault("combat.thresholds.combo", c.Thresholds.Combo)
	v.SetDefault("combat.thresholds.basic", c.Thresholds.Basic)
	v.SetDefault("combat.thresholds.critical", c.Thresholds.Critical)
	v.SetDefault("combat.thresholds.critical_miss", c.Thresholds.CriticalMiss)
	v.SetDefault("combat.thresholds.natural", c.Thresholds.Natural)
	v.SetDefault("combat.speed.agility_reduction", c.Speed.AgilityReduction)
	v.SetDefault("combat.speed.floor", c.Speed.Floor)
	v.SetDefault("combat.speed.tie_buffer", c.Speed.TieBuffer)
	v.SetDefault("combat.speed.progress_epsilon", c.Speed.ProgressEpsilon)
	v.SetDefault("combat.speed.stun_skip", c.Speed.StunSkip)
	v.SetDefault("combat.combo.amplifier_base", c.Combo.AmplifierBase)
	v.SetDefault("combat.combo.per_technique", c.Combo.PerTechnique)
	v.SetDefault("combat.combo.amplifier_max", c.Combo.AmplifierMax)
	v.SetDefault("combat.combo.reset_on_miss", c.Combo.ResetOnMiss)
	v.SetDefault("combat.combo.roll_bonus_scale", c.Combo.RollBonusScale)
	v.SetDefault("combat.roll_scaling.high_threshold", c.RollScaling.HighThreshold)
	v.SetDefault("combat.roll_scaling.high_multiplier", c.RollScaling.HighMultiplier)
	v.SetDefault("combat.roll_scaling.medium_threshold", c.RollScaling.MediumThreshold)
	v.SetDefault("combat.roll_scaling.medium_multiplier", c.RollScaling.MediumMultiplier)
	v.SetDefault("combat.roll_scaling.critical_multiplier", c.RollScaling.CriticalMultiplier)
	v.SetDefault("combat.intelligence_per_roll_bonus", c.IntelligencePerRollBonus)
	v.SetDefault("combat.agility_per_defense", c.AgilityPerDefense)
	v.SetDefault("combat.unique_action_chance", c.UniqueActionChance)
	v.SetDefault("combat.effect_duration", c.EffectDuration)
	v.SetDefault("combat.roll_penalty_duration", c.RollPenaltyDuration)
	v.SetDefault("combat.max_turns", c.MaxTurns)

	v.SetDefault("simulation.battles", 1000)
	v.SetDefault("simulation.workers", 4)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.scenario", "default")
	v.SetDefault("simulation.persist", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dungeonfighter")
	v.SetDefault("database.password", "dungeonfighter")
	v.SetDefault("database.name", "dungeonfighter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.health_timeout", "5s")

	v.SetDefault("scripting.trigger_dir", "content/scripts/triggers")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("content.actions_dir", "content/actions")
	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.heroes_dir", "content/heroes")
	v.SetDefault("content.enemies_dir", "content/enemies")
	v.SetDefault("content.hazards_dir", "content/hazards")
	v.SetDefault("content.scenarios_dir", "content/scenarios")
}
