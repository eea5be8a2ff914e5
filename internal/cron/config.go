package cron

import "time"

// JobName identifies the single recurring snapshot job.
const JobName = "snapshot_job"

// Config controls the firing interval of the snapshot job.
type Config struct {
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: 2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	return c
}
