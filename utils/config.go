package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/faction-gol/model"
	"github.com/sheikhrachel/faction-gol/rules"
)

// Config holds the configuration for a session
type Config struct {
	Dimensions     int                `json:"dimensions"`
	Size           int                `json:"size"`
	FrameRate      time.Duration      `json:"frame_rate"`
	Rule           string             `json:"rule"` // B/S notation, empty for the dimension default
	Seed           int64              `json:"seed"`
	RandomDensity  float64            `json:"random_density"`
	CooldownTicks  int                `json:"cooldown_ticks"`
	UseParallel    bool               `json:"use_parallel"`
	Workers        int                `json:"workers"` // 0 = one per CPU
	UseBoundedGrid bool               `json:"use_bounded_grid"`
	MaxGenerations int                `json:"max_generations"` // 0 = unlimited
	Patterns       map[string][][]int `json:"patterns"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Dimensions:     2,
		Size:           100,
		FrameRate:      time.Second,
		Seed:           1,
		RandomDensity:  0.2,
		CooldownTicks:  5,
		UseParallel:    false,
		UseBoundedGrid: false,
		MaxGenerations: 0,
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err = config.Validate(); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] invalid config in file: %+v", filename)
	}

	return config, nil
}

// ParsedRule returns the configured rule, or the dimension default when unset
func (c Config) ParsedRule() (rules.Rule, error) {
	if c.Rule == "" {
		return rules.Default(c.Dimensions), nil
	}
	return rules.ParseRule(c.Rule)
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return errors.Errorf("[Config.Validate] dimensions must be 2 or 3, got %d", c.Dimensions)
	}
	if c.Size <= 0 {
		return errors.Errorf("[Config.Validate] size must be positive, got %d", c.Size)
	}
	if err := model.ValidateShape(c.Dimensions, c.Size); err != nil {
		return errors.Wrap(err, "[Config.Validate]")
	}
	if c.FrameRate <= 0 {
		return errors.Errorf("[Config.Validate] frame_rate must be positive, got %s", c.FrameRate)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Errorf("[Config.Validate] random_density must be in [0,1], got %v", c.RandomDensity)
	}
	if c.CooldownTicks < 0 {
		return errors.Errorf("[Config.Validate] cooldown_ticks must not be negative, got %d", c.CooldownTicks)
	}
	if c.MaxGenerations < 0 {
		return errors.Errorf("[Config.Validate] max_generations must not be negative, got %d", c.MaxGenerations)
	}

	rule, err := c.ParsedRule()
	if err != nil {
		return errors.Wrap(err, "[Config.Validate]")
	}
	neighbors := 8
	if c.Dimensions == 3 {
		neighbors = 26
	}
	if err = rule.Validate(neighbors); err != nil {
		return errors.Wrapf(err, "[Config.Validate] rule %q", c.Rule)
	}

	for name, tuples := range c.Patterns {
		if name == "" || len(tuples) == 0 {
			return errors.Errorf("[Config.Validate] pattern %q must have a name and offsets", name)
		}
		for _, tuple := range tuples {
			if len(tuple) != c.Dimensions {
				return errors.Errorf("[Config.Validate] pattern %q offset %v is not %dD", name, tuple, c.Dimensions)
			}
		}
	}
	return nil
}
