package config

import (
	"fmt"
	"os"
	"time"

	"github.com/me/rrsim/pkg/model"
	"gopkg.in/yaml.v3"
)

// Core count bounds.
const (
	MinCores = 1
	MaxCores = 8
)

// SimConfig holds the per-run scheduling parameters.
type SimConfig struct {
	Quantum int `yaml:"quantum" json:"quantum"` // ticks a process may run before preemption
	Cores   int `yaml:"cores" json:"cores"`     // number of simulated cores
}

// DefaultSimConfig returns quantum 2 on two cores.
func DefaultSimConfig() SimConfig {
	return SimConfig{Quantum: 2, Cores: 2}
}

// Validate checks quantum and core count.
func (c SimConfig) Validate() error {
	var details []model.FieldError
	if c.Quantum < 1 {
		details = append(details, model.FieldError{Field: "quantum", Message: fmt.Sprintf("must be >= 1, got %d", c.Quantum)})
	}
	if c.Cores < MinCores || c.Cores > MaxCores {
		details = append(details, model.FieldError{Field: "cores", Message: fmt.Sprintf("must be in [%d, %d], got %d", MinCores, MaxCores, c.Cores)})
	}
	if len(details) > 0 {
		return model.NewValidationError("invalid simulation config", details...)
	}
	return nil
}

// ServerConfig holds configuration for the rrsim API server.
type ServerConfig struct {
	Addr      string        `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string        `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string        `yaml:"log_format"` // Log format: text, json
	DBPath    string        `yaml:"db"`         // SQLite archive path, ":memory:" for testing, empty disables archiving
	PlayDelay time.Duration `yaml:"play_delay"` // Default delay between ticks for SSE playback
	Sim       SimConfig     `yaml:"sim"`        // Defaults for new sessions
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		PlayDelay: time.Second,
		Sim:       DefaultSimConfig(),
	}
}

// LoadServerConfig reads a YAML config file over the defaults.
// Fields missing from the file keep their default values.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Sim.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
