// Package config loads bravecore settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/nathoo/bravecore/engine/turn"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "BRAVECORE_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a file.
const DefaultPath = "bravecore.yaml"

// Config holds all bravecore settings.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	ContentDir string `yaml:"content_dir"`
	SaveDir    string `yaml:"save_dir"` // empty: ~/.bravecore/saves

	Combat CombatConfig `yaml:"combat"`
	Turn   TurnConfig   `yaml:"turn"`
	Sim    SimConfig    `yaml:"sim"`
}

// CombatConfig holds the resolution constants.
type CombatConfig struct {
	MinDamage          int     `yaml:"min_damage"`
	CritMultiplier     float64 `yaml:"crit_multiplier"`
	BraveReset         string  `yaml:"brave_reset"` // base | zero
	BreakBonus         int     `yaml:"break_bonus"`
	MissConsumesCost   bool    `yaml:"miss_consumes_cost"`
	MissStartsCooldown bool    `yaml:"miss_starts_cooldown"`
}

// TurnConfig holds the scheduler settings.
type TurnConfig struct {
	Threshold int  `yaml:"threshold"`
	CarryOver bool `yaml:"carry_over"`
}

// SimConfig holds batch simulation settings.
type SimConfig struct {
	Workers  int `yaml:"workers"`
	MaxTurns int `yaml:"max_turns"` // per battle; 0 = unlimited
}

// Default returns Config with the stock settings.
func Default() Config {
	p := combat.DefaultPolicy()
	t := turn.DefaultOptions()
	return Config{
		LogLevel:   "info",
		ContentDir: "content",
		Combat: CombatConfig{
			MinDamage:          p.MinDamage,
			CritMultiplier:     p.CritMultiplier,
			BraveReset:         string(p.BraveReset),
			BreakBonus:         p.BreakBonus,
			MissConsumesCost:   p.MissConsumesCost,
			MissStartsCooldown: p.MissStartsCooldown,
		},
		Turn: TurnConfig{
			Threshold: t.Threshold,
			CarryOver: t.CarryOver,
		},
		Sim: SimConfig{
			Workers:  4,
			MaxTurns: 500,
		},
	}
}

// Path picks the config file: the flag value, then EnvPath, then
// DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("combat: %w", err))
	}
	if c.Turn.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("turn: threshold %d must be positive", c.Turn.Threshold))
	}
	if c.Sim.Workers <= 0 {
		errs = append(errs, fmt.Errorf("sim: workers %d must be positive", c.Sim.Workers))
	}
	if c.Sim.MaxTurns < 0 {
		errs = append(errs, fmt.Errorf("sim: max_turns %d is negative", c.Sim.MaxTurns))
	}
	return errors.Join(errs...)
}

// Policy converts the combat section.
func (c Config) Policy() combat.Policy {
	return combat.Policy{
		MinDamage:          c.Combat.MinDamage,
		CritMultiplier:     c.Combat.CritMultiplier,
		BraveReset:         combat.BraveReset(c.Combat.BraveReset),
		BreakBonus:         c.Combat.BreakBonus,
		MissConsumesCost:   c.Combat.MissConsumesCost,
		MissStartsCooldown: c.Combat.MissStartsCooldown,
	}
}

// TurnOptions converts the turn section.
func (c Config) TurnOptions() turn.Options {
	return turn.Options{Threshold: c.Turn.Threshold, CarryOver: c.Turn.CarryOver}
}

// Saves returns the save directory, defaulting to ~/.bravecore/saves.
func (c Config) Saves() (string, error) {
	if c.SaveDir != "" {
		return c.SaveDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".bravecore", "saves"), nil
}
