package toolgate

import (
	"fmt"
	"time"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value is
// useful - all nested fields inherit their package defaults.
type Config struct {
	Runner    RunnerConfig    `json:"runner" yaml:"runner"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
}

type RunnerConfig struct {
	WorkerCount int `json:"workers" yaml:"workers"`
}

type SchedulerConfig struct {
	PollingInterval time.Duration `json:"pollingInterval" yaml:"pollingInterval"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Runner:    RunnerConfig{WorkerCount: 5},
		Scheduler: SchedulerConfig{PollingInterval: 20 * time.Millisecond},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Runner.WorkerCount <= 0 {
		return fmt.Errorf("runner.workers must be > 0")
	}
	if c.Scheduler.PollingInterval <= 0 {
		return fmt.Errorf("scheduler.pollingInterval must be > 0")
	}
	return nil
}
