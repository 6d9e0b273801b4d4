package cashflows

import (
	"errors"
	"fmt"
)

// Error categories. Every error the engine raises wraps exactly one of these,
// so callers can classify with errors.Is without matching message text.
var (
	// ErrConfiguration covers invalid or missing definition parameters,
	// detected eagerly before any computation starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrDependency covers problems found while building the driver graph:
	// cycles, lifetime mismatches, unresolved names.
	ErrDependency = errors.New("dependency error")

	// ErrComputation covers internal shape or index defects. These are bugs:
	// the pipeline is deterministic, so a retry reproduces the failure.
	ErrComputation = errors.New("computation error")
)

// Specific failures. Each wraps its category so errors.Is matches both.
var (
	ErrMissingMultiplier      = fmt.Errorf("missing multiplier: %w", ErrDependency)
	ErrDriverLengthMismatch   = fmt.Errorf("driver length mismatch: %w", ErrDependency)
	ErrLifetimeMismatch       = fmt.Errorf("component lifetime mismatch: %w", ErrDependency)
	ErrUnresolvedDriver       = fmt.Errorf("unresolved driver: %w", ErrDependency)
	ErrCyclicDependency       = fmt.Errorf("cyclic driver dependency: %w", ErrDependency)
	ErrMissingParameter       = fmt.Errorf("missing cash flow parameter: %w", ErrConfiguration)
	ErrCashflowLength         = fmt.Errorf("cash flow array length: %w", ErrConfiguration)
	ErrUnknownDepreciation    = fmt.Errorf("unknown depreciation scheme: %w", ErrConfiguration)
	ErrNoMultTarget           = fmt.Errorf("NPV_search requested but no cash flow has mult_target: %w", ErrConfiguration)
	ErrActiveComponentMissing = fmt.Errorf("requested active component not found: %w", ErrConfiguration)
)
