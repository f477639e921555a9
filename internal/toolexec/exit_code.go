// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// The zero value (0) means success. -1 is reserved for processes that
	// never reported a status (killed by a signal, failed to start).
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside -1..255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// NoExitCode marks a Result whose process did not exit normally.
const NoExitCode ExitCode = -1

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range -1..255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// IsValid returns whether the ExitCode is in the valid range,
// and a list of validation errors if it is not.
func (c ExitCode) IsValid() (bool, []error) {
	if c < NoExitCode || c > 255 {
		return false, []error{&InvalidExitCodeError{Value: c}}
	}
	return true, nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
