package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUnknownCommandSetError(t *testing.T) {
	err := &UnknownCommandSetError{ID: 0x20}

	if got := err.Error(); got != "unknown command set 0x20" {
		t.Errorf("Error() = %q", got)
	}
	if !IsUnknownCommandSet(err) {
		t.Error("IsUnknownCommandSet should be true")
	}
	if IsUnknownCommandSet(errors.New("other")) {
		t.Error("IsUnknownCommandSet should be false for other errors")
	}

	wrapped := fmt.Errorf("select: %w", err)
	var target *UnknownCommandSetError
	if !errors.As(wrapped, &target) || target.ID != 0x20 {
		t.Error("errors.As should unwrap UnknownCommandSetError")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Problems: []Problem{
		{Set: 0xEF, Opcode: 0x05, Reason: "register operation without registers"},
		{Set: 0x00, Opcode: 0x0B, Reason: "dummy phase without a count"},
	}}

	msg := err.Error()
	for _, want := range []string{"2 dictionary problem(s)", "set 0xEF opcode 0x05", "set 0x00 opcode 0x0B"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError should be true")
	}
	if IsValidationError(&UnknownCommandSetError{}) {
		t.Error("IsValidationError should be false for other errors")
	}
}
