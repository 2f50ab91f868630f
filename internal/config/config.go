// Package config loads colony settings from a TOML or YAML file layered
// over built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/work"
	"github.com/talgya/hobbit-home/internal/world"
)

// EnvAdminKey overrides api.admin_key so the secret can stay out of files.
const EnvAdminKey = "HOBBIT_ADMIN_KEY"

type Config struct {
	Seed            int64  `toml:"seed" yaml:"seed"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	DBPath          string `toml:"db_path" yaml:"db_path"`
	AutosaveSeconds int    `toml:"autosave_seconds" yaml:"autosave_seconds"`

	Sim SimConfig `toml:"sim" yaml:"sim"`
	Map MapConfig `toml:"map" yaml:"map"`
	API APIConfig `toml:"api" yaml:"api"`

	Path string `toml:"-" yaml:"-"`
}

type SimConfig struct {
	FramesPerSecond int     `toml:"frames_per_second" yaml:"frames_per_second"`
	ActEvery        int     `toml:"act_every" yaml:"act_every"`
	RetryEvery      int     `toml:"retry_every" yaml:"retry_every"`
	WorkTime        int     `toml:"work_time" yaml:"work_time"`
	WaitTimeout     int     `toml:"wait_timeout" yaml:"wait_timeout"`
	WanderOdds      int     `toml:"wander_odds" yaml:"wander_odds"`
	Speed           float64 `toml:"speed" yaml:"speed"`
}

type MapConfig struct {
	Generate bool    `toml:"generate" yaml:"generate"`
	Width    int     `toml:"width" yaml:"width"`
	Height   int     `toml:"height" yaml:"height"`
	Seed     int64   `toml:"seed" yaml:"seed"`
	Surface  float64 `toml:"surface" yaml:"surface"`
	Cavern   float64 `toml:"cavern" yaml:"cavern"`
	Colony   int     `toml:"colony" yaml:"colony"`
}

type APIConfig struct {
	Port     int    `toml:"port" yaml:"port"`
	AdminKey string `toml:"admin_key" yaml:"admin_key"`
}

// Default returns the settings of a fresh colony on the standard map.
func Default() Config {
	tuning := engine.DefaultTuning()
	gen := world.DefaultGenConfig()
	return Config{
		Seed:            1,
		LogLevel:        "info",
		DBPath:          "hobbit-home.db",
		AutosaveSeconds: 300,
		Sim: SimConfig{
			FramesPerSecond: tuning.FramesPerSecond,
			ActEvery:        tuning.ActEvery,
			RetryEvery:      tuning.RetryEvery,
			WorkTime:        work.DefaultTime,
			WaitTimeout:     tuning.WaitTimeout,
			WanderOdds:      tuning.WanderOdds,
			Speed:           1,
		},
		Map: MapConfig{
			Width:   gen.Width,
			Height:  gen.Height,
			Seed:    gen.Seed,
			Surface: gen.Surface,
			Cavern:  gen.Cavern,
			Colony:  5,
		},
		API: APIConfig{
			Port: 8080,
		},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml/.yml. An empty path yields the defaults. Environment
// overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		resolved := filepath.Clean(path)
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", resolved, err)
		}

		switch ext := strings.ToLower(filepath.Ext(resolved)); ext {
		case ".toml":
			if _, err := toml.Decode(string(raw), &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config file: %w", err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config file: %w", err)
			}
		default:
			return Config{}, fmt.Errorf("config file %s: unsupported format %q", resolved, ext)
		}
		cfg.Path = resolved
	}

	if key := os.Getenv(EnvAdminKey); key != "" {
		cfg.API.AdminKey = key
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Sim.FramesPerSecond <= 0:
		return fmt.Errorf("sim.frames_per_second must be positive, got %d", c.Sim.FramesPerSecond)
	case c.Sim.ActEvery < 0:
		return fmt.Errorf("sim.act_every must not be negative, got %d", c.Sim.ActEvery)
	case c.Sim.RetryEvery < 0:
		return fmt.Errorf("sim.retry_every must not be negative, got %d", c.Sim.RetryEvery)
	case c.Sim.WorkTime <= 0:
		return fmt.Errorf("sim.work_time must be positive, got %d", c.Sim.WorkTime)
	case c.Sim.WaitTimeout < 0:
		return fmt.Errorf("sim.wait_timeout must not be negative, got %d", c.Sim.WaitTimeout)
	case c.Sim.WanderOdds < 0:
		return fmt.Errorf("sim.wander_odds must not be negative, got %d", c.Sim.WanderOdds)
	case c.Sim.Speed < 0:
		return fmt.Errorf("sim.speed must not be negative, got %g", c.Sim.Speed)
	case c.Map.Generate && (c.Map.Width < 8 || c.Map.Height < 8):
		return fmt.Errorf("map must be at least 8x8, got %dx%d", c.Map.Width, c.Map.Height)
	case c.Map.Generate && c.Map.Colony <= 0:
		return fmt.Errorf("map.colony must be positive, got %d", c.Map.Colony)
	case c.API.Port < 0 || c.API.Port > 65535:
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Tuning returns the simulation cadences.
func (c Config) Tuning() engine.Tuning {
	return engine.Tuning{
		FramesPerSecond: c.Sim.FramesPerSecond,
		ActEvery:        c.Sim.ActEvery,
		RetryEvery:      c.Sim.RetryEvery,
		WaitTimeout:     c.Sim.WaitTimeout,
		WanderOdds:      c.Sim.WanderOdds,
	}
}

// GenConfig returns the map generation settings.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Width:   c.Map.Width,
		Height:  c.Map.Height,
		Seed:    c.Map.Seed,
		Surface: c.Map.Surface,
		Cavern:  c.Map.Cavern,
	}
}
