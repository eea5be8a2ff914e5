package generator

// Config controls snapshot generation.
type Config struct {
	RetentionLimit int
}

func DefaultConfig() Config {
	return Config{
		RetentionLimit: 50,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RetentionLimit <= 0 {
		c.RetentionLimit = defaults.RetentionLimit
	}
	return c
}

// Metric value ranges. Occupancy bounds derive from facility capacity;
// the rest are fixed uniform ranges.
const (
	occupancyLowFactor  = 0.4
	occupancyHighFactor = 0.9

	energyKWHMin = 10000.0
	energyKWHMax = 30000.0

	waterLitersMin = 20000.0
	waterLitersMax = 60000.0

	openTicketsMax = 20
)
