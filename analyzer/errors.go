package analyzer

import (
	"fmt"
)

// TruncatedError indicates that a transaction ended before an extraction
// got all the clock edges it needed.
type TruncatedError struct {
	// Needed is the number of clock edges the extraction required
	Needed int

	// Available is the number of clock edges left before the boundary
	Available int

	// Boundary is the sample at which the transaction ended
	Boundary uint64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated: needed %d clock edges, %d before chip select deactivation at sample %d",
		e.Needed, e.Available, e.Boundary)
}

// Partial reports whether some, but not all, of the needed edges arrived.
func (e *TruncatedError) Partial() bool {
	return e.Available > 0
}

// IsTruncated returns true if the error is a TruncatedError.
func IsTruncated(err error) bool {
	_, ok := err.(*TruncatedError)
	return ok
}

// ConfigError indicates an analyzer configuration that cannot be decoded with.
type ConfigError struct {
	// Field is the offending configuration field
	Field string

	// Reason describes the problem
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}
