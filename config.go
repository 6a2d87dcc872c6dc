package fplus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/fplus/rt/tiling"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config controls the light culling pipeline. The zero value of optional
// fields selects the default.
type Config struct {
	TileWidth       int            `json:"tileWidth"`
	BinMode         tiling.BinMode `json:"binMode"`
	UniformBinCount int            `json:"uniformBinCount,omitempty"`
	Workers         int            `json:"workers,omitempty"`
	// BatchSize is the number of lights per batch of the per-light jobs.
	BatchSize                  int  `json:"batchSize,omitempty"`
	MaxVisibleAdditionalLights int  `json:"maxVisibleAdditionalLights"`
	MaxMarchSteps              int  `json:"maxMarchSteps,omitempty"`
	Debug                      bool `json:"debug,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		TileWidth:                  tiling.DefaultTileWidth,
		BinMode:                    tiling.BinModeSqrt,
		UniformBinCount:            64,
		Workers:                    max(runtime.NumCPU()-1, 1),
		BatchSize:                  32,
		MaxVisibleAdditionalLights: 256,
		MaxMarchSteps:              tiling.DefaultMaxMarchSteps,
	}
}

// LoadConfig reads a JSON config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes JSON on top of DefaultConfig, so fields absent from
// data keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.TileWidth == 0 {
		c.TileWidth = d.TileWidth
	}
	if c.UniformBinCount == 0 {
		c.UniformBinCount = d.UniformBinCount
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	if c.BatchSize == 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxMarchSteps == 0 {
		c.MaxMarchSteps = d.MaxMarchSteps
	}
}

func (c Config) Validate() error {
	switch {
	case c.TileWidth <= 0:
		return fmt.Errorf("%w: tileWidth %d", ErrInvalidConfig, c.TileWidth)
	case c.BinMode != tiling.BinModeSqrt && c.BinMode != tiling.BinModeUniform:
		return fmt.Errorf("%w: binMode %v", ErrInvalidConfig, c.BinMode)
	case c.BinMode == tiling.BinModeUniform && c.UniformBinCount <= 0:
		return fmt.Errorf("%w: uniformBinCount %d", ErrInvalidConfig, c.UniformBinCount)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batchSize %d", ErrInvalidConfig, c.BatchSize)
	case c.MaxVisibleAdditionalLights < 0:
		return fmt.Errorf("%w: maxVisibleAdditionalLights %d", ErrInvalidConfig, c.MaxVisibleAdditionalLights)
	case c.MaxMarchSteps <= 0:
		return fmt.Errorf("%w: maxMarchSteps %d", ErrInvalidConfig, c.MaxMarchSteps)
	}
	return nil
}
