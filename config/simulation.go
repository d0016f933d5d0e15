package config

import "fmt"

// SimulationConfig controls the generation loop.
type SimulationConfig struct {
	// MaxMessages stops the simulator after this many published passes
	// across all controllers. 0 means unlimited.
	MaxMessages int `json:"max_messages"`
	// MinIntervalSeconds and MaxIntervalSeconds bound the random sleep
	// between generation passes of one controller.
	MinIntervalSeconds int `json:"min_interval_seconds"`
	MaxIntervalSeconds int `json:"max_interval_seconds"`
	// Seed makes runs reproducible; 0 seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.MinIntervalSeconds == 0 {
		c.MinIntervalSeconds = 1
	}
	if c.MaxIntervalSeconds == 0 {
		c.MaxIntervalSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.MaxMessages < 0 {
		return fmt.Errorf("max_messages must not be negative")
	}
	if c.MinIntervalSeconds < 1 || c.MaxIntervalSeconds < c.MinIntervalSeconds {
		return fmt.Errorf("invalid publish interval bounds [%d, %d]",
			c.MinIntervalSeconds, c.MaxIntervalSeconds)
	}
	return nil
}
