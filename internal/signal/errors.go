// Package signal implements lag estimation and stuck-sample detection for sampled signals.
package signal

import (
	"errors"
	"fmt"
)

// ErrPrecondition is returned when inputs violate the bounds an operation requires.
// It signals a caller bug: the result is never partial.
var ErrPrecondition = errors.New("signal: precondition violated")

func lengthMismatch(nameA string, lenA int, nameB string, lenB int) error {
	return fmt.Errorf("%w: %s has %d samples but %s has %d", ErrPrecondition, nameA, lenA, nameB, lenB)
}
