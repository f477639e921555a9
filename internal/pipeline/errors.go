// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrPrerequisite is wrapped by every error that stops a run before it starts:
	// a tool that cannot be found, or a required input directory or pack that is absent.
	ErrPrerequisite = errors.New("missing prerequisite")
	// ErrNothingToPatch stops a reverse run when no image was reconstructed.
	ErrNothingToPatch = errors.New("nothing to patch")
	// ErrStageFailed is wrapped by StageError.
	ErrStageFailed = errors.New("stage failed")
	// ErrOutputMissing marks an item whose tool exited cleanly without writing its output.
	ErrOutputMissing = errors.New("expected output not written")
	// ErrUndecodableImage marks an edited image that no longer decodes.
	ErrUndecodableImage = errors.New("image does not decode")
	// ErrNoFormat marks an intermediate file whose info output names no format.
	ErrNoFormat = errors.New("format not reported")
)

type (
	// PrerequisiteError names what was missing and where it was looked for.
	PrerequisiteError struct {
		// What is a short noun phrase, e.g. "input folder" or ".xap pack".
		What string
		// Where is the path or tool name that was checked.
		Where string
		Cause error
	}

	// StageError reports a single-item stage whose failure ends the run.
	StageError struct {
		Stage string
		Cause error
	}

	// NothingToPatchError reports how many images were considered.
	NothingToPatchError struct {
		Dir        string
		Candidates int
	}
)

// Error implements the error interface.
func (e *PrerequisiteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("missing %s %s: %v", e.What, e.Where, e.Cause)
	}
	return fmt.Sprintf("missing %s %s", e.What, e.Where)
}

// Unwrap exposes ErrPrerequisite and the cause.
func (e *PrerequisiteError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrPrerequisite, e.Cause}
	}
	return []error{ErrPrerequisite}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

// Unwrap exposes ErrStageFailed and the cause.
func (e *StageError) Unwrap() []error {
	return []error{ErrStageFailed, e.Cause}
}

// Error implements the error interface.
func (e *NothingToPatchError) Error() string {
	if e.Candidates == 0 {
		return fmt.Sprintf("nothing to patch: no images in %s", e.Dir)
	}
	return fmt.Sprintf("nothing to patch: none of %d image(s) in %s converted", e.Candidates, e.Dir)
}

// Unwrap returns ErrNothingToPatch for errors.Is.
func (e *NothingToPatchError) Unwrap() error { return ErrNothingToPatch }
