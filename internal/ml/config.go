package ml

import (
	"fmt"
	"time"
)

// MockConfig holds configuration for the mock model
type MockConfig struct {
	// HealthyProbability is the chance a scan comes back healthy.
	HealthyProbability float64
	// Delay simulates inference latency.
	Delay time.Duration
}

// DefaultMockConfig mirrors the demo placeholders: 60% healthy, two seconds of latency.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		HealthyProbability: 0.6,
		Delay:              2 * time.Second,
	}
}

// Validate checks the configuration values are usable.
func (c MockConfig) Validate() error {
	if c.HealthyProbability < 0 || c.HealthyProbability > 1 {
		return fmt.Errorf("healthy probability %v outside [0,1]", c.HealthyProbability)
	}
	if c.Delay < 0 {
		return fmt.Errorf("negative delay %s", c.Delay)
	}
	return nil
}
