package protocol

import (
	"fmt"
	"strings"
)

// UnknownCommandSetError is returned when a manufacturer ID selects no
// command set.
type UnknownCommandSetError struct {
	ID int
}

func (e *UnknownCommandSetError) Error() string {
	return fmt.Sprintf("unknown command set 0x%02X", e.ID)
}

// IsUnknownCommandSet returns true if the error is an UnknownCommandSetError.
func IsUnknownCommandSet(err error) bool {
	_, ok := err.(*UnknownCommandSetError)
	return ok
}

// Problem is one dictionary declaration mistake found by Validate.
type Problem struct {
	// Set is the ID of the command set holding the command
	Set int

	// Opcode is the offending command's opcode
	Opcode byte

	// Reason describes the problem
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("set 0x%02X opcode 0x%02X: %s", p.Set, p.Opcode, p.Reason)
}

// ValidationError collects every problem Validate found.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		lines = append(lines, p.String())
	}
	return fmt.Sprintf("%d dictionary problem(s): %s", len(e.Problems), strings.Join(lines, "; "))
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}
