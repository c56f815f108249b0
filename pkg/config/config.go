// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrInvalidConfig is returned by Validate for unusable values
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvWorldWidth  = "COLLIDE_WORLD_WIDTH"
	EnvWorldHeight = "COLLIDE_WORLD_HEIGHT"
	EnvMaxObjects  = "COLLIDE_MAX_OBJECTS"
	EnvMaxLevels   = "COLLIDE_MAX_LEVELS"
	EnvTickRate    = "COLLIDE_TICK_RATE"
)

// Config contains configuration for a collision world and the demo scene
type Config struct {
	World      WorldConfig      `json:"world"`
	QuadTree   QuadTreeConfig   `json:"quadTree"`
	Simulation SimulationConfig `json:"simulation"`
}

// WorldConfig describes the simulated area
type WorldConfig struct {
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Gravity GravityConf `json:"gravity"`
}

// GravityConf is the per-axis gravity applied to non-static bodies
type GravityConf struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// QuadTreeConfig contains broadphase tuning
type QuadTreeConfig struct {
	MaxObjects int `json:"maxObjects"`
	MaxLevels  int `json:"maxLevels"`
}

// SimulationConfig drives the demo scene
type SimulationConfig struct {
	TickRate int   `json:"tickRate"`
	Ticks    int   `json:"ticks"`
	Seed     int64 `json:"seed"`
	Bodies   int   `json:"bodies"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Width:  800,
			Height: 600,
		},
		QuadTree: QuadTreeConfig{
			MaxObjects: 4,
			MaxLevels:  4,
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			Ticks:    300,
			Seed:     1,
			Bodies:   24,
		},
	}
}

// Validate checks that the configuration can build a world
func (c *Config) Validate() error {
	if !(c.World.Width > 0) || !(c.World.Height > 0) {
		return fmt.Errorf("%w: world size %vx%v", ErrInvalidConfig, c.World.Width, c.World.Height)
	}
	if c.QuadTree.MaxObjects < 1 {
		return fmt.Errorf("%w: quadTree.maxObjects must be at least 1, got %d", ErrInvalidConfig, c.QuadTree.MaxObjects)
	}
	if c.QuadTree.MaxLevels < 0 {
		return fmt.Errorf("%w: quadTree.maxLevels must not be negative, got %d", ErrInvalidConfig, c.QuadTree.MaxLevels)
	}
	if c.Simulation.TickRate < 1 {
		return fmt.Errorf("%w: simulation.tickRate must be positive, got %d", ErrInvalidConfig, c.Simulation.TickRate)
	}
	if c.Simulation.Ticks < 0 || c.Simulation.Bodies < 0 {
		return fmt.Errorf("%w: simulation ticks and bodies must not be negative", ErrInvalidConfig)
	}
	return nil
}

// TickSeconds returns the duration of one tick in seconds
func (c *Config) TickSeconds() float64 {
	return 1 / float64(c.Simulation.TickRate)
}

// ApplyEnvironmentOverrides applies COLLIDE_* environment variables on top of config.
// Unparsable values are reported rather than skipped.
func ApplyEnvironmentOverrides(config *Config) error {
	var errs []error
	errs = append(errs,
		overrideFloat(EnvWorldWidth, &config.World.Width),
		overrideFloat(EnvWorldHeight, &config.World.Height),
		overrideInt(EnvMaxObjects, &config.QuadTree.MaxObjects),
		overrideInt(EnvMaxLevels, &config.QuadTree.MaxLevels),
		overrideInt(EnvTickRate, &config.Simulation.TickRate),
	)
	return errors.Join(errs...)
}

func overrideInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func overrideFloat(key string, dst *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
