// Package validation carries field-level problems from domain checks to the HTTP layer.
package validation

import (
	"errors"
	"strings"
)

// Error lists every problem found in an input, in the order they were detected.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	if len(e.Problems) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// New returns an *Error for problems, or nil when there are none.
func New(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{Problems: problems}
}

// Problems extracts the problem list from err, or nil if err is not a validation error.
func Problems(err error) []string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Problems
	}
	return nil
}

// Missing formats the message for an absent required field.
func Missing(field string) string {
	return "Missing required field: " + field
}
