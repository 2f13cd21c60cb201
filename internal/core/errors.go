package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request rejected before any provider call.
	ErrValidation = errors.New("validation error")
	// ErrProvider marks a similarity provider failure; no decision was produced.
	ErrProvider = errors.New("provider error")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
