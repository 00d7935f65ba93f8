package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultProgramPoolSize = 32
	DefaultCanvasWidth     = 640
	DefaultCanvasHeight    = 480
)

type EngineConfig struct {
	Name            string `toml:"name"`
	Width           uint32 `toml:"width"`
	Height          uint32 `toml:"height"`
	Transparent     bool   `toml:"transparent"`
	LogLevel        string `toml:"log_level"`
	ProgramPoolSize int    `toml:"program_pool_size"`
	ShaderDir       string `toml:"shader_dir"`
	OutputPath      string `toml:"output_path"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Name:            "Anima",
		Width:           DefaultCanvasWidth,
		Height:          DefaultCanvasHeight,
		LogLevel:        "info",
		ProgramPoolSize: DefaultProgramPoolSize,
		OutputPath:      "frame.png",
	}
}

// LoadEngineConfig reads a TOML file on top of the defaults. An empty path
// returns the defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return ParseEngineConfig(data, cfg)
}

// ParseEngineConfig decodes data into cfg and validates the result.
func ParseEngineConfig(data []byte, cfg *EngineConfig) (*EngineConfig, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("%w: canvas size %dx%d", ErrConfig, c.Width, c.Height)
	}
	if c.ProgramPoolSize < 0 {
		return fmt.Errorf("%w: program_pool_size must not be negative", ErrConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrConfig, c.LogLevel)
	}
	return nil
}
