package domain

import (
	"fmt"
	"time"
)

// Default run configuration values.
const (
	// DefaultMaxConcurrent is the standard batch width.
	DefaultMaxConcurrent = 3

	// DefaultBatchDelay is the standard pause between batches.
	DefaultBatchDelay = 2 * time.Second

	// DefaultStepTimeout bounds each wizard step.
	DefaultStepTimeout = 90 * time.Second
)

// RunConfig controls one submission run.
type RunConfig struct {
	// MaxConcurrent caps how many invoices run at once. Must be positive.
	MaxConcurrent int

	// BatchDelay pauses between one batch finishing and the next starting,
	// bounding the request rate against the portal. Must not be negative.
	BatchDelay time.Duration

	// StepTimeout bounds each wizard step. Must be positive.
	StepTimeout time.Duration

	// OutputDir, when set, stores generated documents under per-issuer
	// subdirectories. Empty keeps documents in the session's ephemeral
	// directory, cleaned up when the session closes.
	OutputDir string

	// Headless runs browsers without a visible window.
	Headless bool

	// Verbose enables diagnostic logging.
	Verbose bool
}

// DefaultRunConfig returns the standard run configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxConcurrent: DefaultMaxConcurrent,
		BatchDelay:    DefaultBatchDelay,
		StepTimeout:   DefaultStepTimeout,
		Headless:      true,
	}
}

// Validate checks the configuration before a run is scheduled. A failure
// here aborts the run with no batches produced and no sessions acquired.
func (c RunConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max concurrent must be positive, got %d", ErrConfiguration, c.MaxConcurrent)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("%w: batch delay must not be negative, got %s", ErrConfiguration, c.BatchDelay)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("%w: step timeout must be positive, got %s", ErrConfiguration, c.StepTimeout)
	}
	return nil
}
