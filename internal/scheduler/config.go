package scheduler

import (
	"time"

	appconfig "github.com/tunebridge/tunebridge/internal/config"
)

// Config controls how often the auto-allocation job runs.
type Config struct {
	RunInterval time.Duration
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		RunTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}

func ProvideConfig(cfg appconfig.Config) Config {
	out := DefaultConfig()
	if cfg.SchedulerInterval > 0 {
		out.RunInterval = time.Duration(cfg.SchedulerInterval) * time.Second
	}
	return out
}
