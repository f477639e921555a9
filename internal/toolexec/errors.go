// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"errors"
	"fmt"

	"modkit-cli/internal/textenc"
)

var (
	// ErrToolFailed is the sentinel error wrapped by ToolError.
	ErrToolFailed = errors.New("tool failed")
	// ErrToolNotFound is the sentinel error wrapped by ToolNotFoundError.
	ErrToolNotFound = errors.New("tool not found")
)

type (
	// ToolError describes one failed tool invocation on one subject file.
	ToolError struct {
		// Tool is the executable name or path as configured.
		Tool string
		// Subject is the file the invocation was about (may be empty).
		Subject string
		// Outcome is OutcomeToolFailure or OutcomeUnexpected.
		Outcome Outcome
		// ExitCode is the exit status, NoExitCode for unexpected failures.
		ExitCode ExitCode
		// Message is the trimmed, decoded stderr.
		Message string
		// Cause is the start/wait error for unexpected failures.
		Cause error
	}

	// ToolNotFoundError is returned by Locate when a tool cannot be resolved.
	ToolNotFoundError struct {
		Tool  string
		Cause error
	}
)

// Error implements the error interface.
func (e *ToolError) Error() string {
	subject := ""
	if e.Subject != "" {
		subject = " on " + e.Subject
	}
	if e.Outcome == OutcomeUnexpected {
		return fmt.Sprintf("%s%s: unexpected failure: %v", e.Tool, subject, e.Cause)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s%s: exit code %d", e.Tool, subject, e.ExitCode)
	}
	return fmt.Sprintf("%s%s: exit code %d: %s", e.Tool, subject, e.ExitCode, e.Message)
}

// Unwrap exposes both ErrToolFailed and the underlying cause.
func (e *ToolError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrToolFailed, e.Cause}
	}
	return []error{ErrToolFailed}
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found: %v", e.Tool, e.Cause)
}

// Unwrap returns ErrToolNotFound for errors.Is.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

func decodeStdout(b []byte, encoding string) (string, error) {
	return textenc.Decode(b, encoding)
}

func decodeStderr(b []byte, encoding string) string {
	if encoding == "" {
		return string(b)
	}
	return textenc.DecodeLossy(b, encoding)
}
