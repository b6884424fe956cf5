package sim

import (
	"fmt"
	"math"
)

// Config contains the parameters of one simulation point
type Config struct {
	// Signal-to-noise ratio in dB. +Inf transmits without noise.
	SNR float64
	// Upper bound on the number of transmitted frames
	Iterations int
	// Stop once this many frame errors have been seen. Zero or negative disables early stop.
	MaxErrors int
	// Seed of every random source used by the run
	Seed uint64
	// Number of goroutines sharing the trials
	Workers int
}

// DefaultConfig returns a single-worker configuration at 3 dB
func DefaultConfig() *Config {
	return &Config{
		SNR:        3,
		Iterations: 10000,
		MaxErrors:  100,
		Seed:       1,
		Workers:    1,
	}
}

// Validate reports the first invalid field of c
func (c *Config) Validate() error {
	if math.IsNaN(c.SNR) || math.IsInf(c.SNR, -1) {
		return fmt.Errorf("snr must be a number or +Inf, got %v: %w", c.SNR, ErrInvalidConfig)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d: %w", c.Iterations, ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d: %w", c.Workers, ErrInvalidConfig)
	}
	return nil
}

// earlyStop reports whether frameErrors exhausts the error budget
func (c *Config) earlyStop(frameErrors int64) bool {
	return c.MaxErrors > 0 && frameErrors >= int64(c.MaxErrors)
}
