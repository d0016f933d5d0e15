package config

import "fmt"

// ViolationConfig controls the contract-violation operating mode.
type ViolationConfig struct {
	// Enabled applies the static multiplier transform to the meter
	// calculation of every pass.
	Enabled bool `json:"enabled"`
	// Multiplier divides DER output inside the meter calculation, making
	// DERs appear less effective.
	Multiplier float64 `json:"multiplier"`
	// Oscillate switches to the alternate strategy that flips between
	// compliant and violating outcomes on a fixed interval.
	Oscillate bool `json:"oscillate"`
	// SwitchIntervalSeconds is the oscillator's flip period.
	SwitchIntervalSeconds int `json:"switch_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ViolationConfig) SetDefaults() {
	if c.Multiplier == 0 {
		c.Multiplier = 1.5
	}
	if c.SwitchIntervalSeconds == 0 {
		c.SwitchIntervalSeconds = 300
	}
}

// Validate checks mandatory fields.
func (c ViolationConfig) Validate() error {
	if c.Multiplier <= 0 {
		return fmt.Errorf("violation multiplier must be positive")
	}
	if c.SwitchIntervalSeconds <= 0 {
		return fmt.Errorf("switch_interval_seconds must be positive")
	}
	return nil
}
