package app

import (
	"errors"

	"github.com/tunedrive/tunedrive/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string // hcl file or directory of hcl files
	WorkflowName string // block to run; optional when exactly one is loaded

	PrepareOnly  bool
	Launcher     string // multi-process launch binary; empty means the default
	TopologyPath string // topology state file; empty means the implicit per-host path
	LogDir       string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Overrides are CLI-supplied training values applied over the loaded
	// workflow before assembly.
	Overrides config.Overrides
}

// NewConfig validates a Config and fills its defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	return &cfg, nil
}
