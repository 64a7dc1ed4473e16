package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkflowPath is a single .hcl file or a directory of .hcl files.
	WorkflowPath string
	// Event is the simulated trigger ("push", "pull_request", ...). A
	// workflow whose `on` list does not contain it is skipped.
	Event string
	// WorkDir is the repository root that steps run against.
	WorkDir string

	LogFormat       string
	LogLevel        string
	WorkerCount     int
	FailFast        bool
	ResultsPath     string
	HealthcheckPort int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	if cfg.Event == "" {
		cfg.Event = "push"
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
