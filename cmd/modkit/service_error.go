// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"modkit-cli/internal/issue"
	"modkit-cli/internal/pipeline"
	"modkit-cli/internal/textenc"
	"modkit-cli/internal/toolexec"
)

// ServiceError is a fatal command error paired with the catalog entry that
// explains it. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the catalog entry rendered in verbose mode, zero for none.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a fatal pipeline or config error to its catalog entry.
func classifyError(err error) issue.Id {
	if linked := issue.IssueOf(err); linked != nil {
		return linked.Id()
	}

	var prereq *pipeline.PrerequisiteError
	switch {
	case errors.Is(err, toolexec.ErrToolNotFound):
		return issue.ToolNotFoundId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, textenc.ErrUnknownEncoding):
		return issue.UnknownEncodingId
	case errors.Is(err, pipeline.ErrNothingToPatch):
		return issue.NothingToPatchId
	case errors.Is(err, pipeline.ErrStageFailed):
		return issue.StageFailedId
	case errors.As(err, &prereq):
		if strings.Contains(prereq.What, "pack") {
			return issue.PackNotFoundId
		}
		return issue.InputFolderNotFoundId
	}
	return 0
}

// formatErrorForDisplay uses ActionableError.Format when the chain has one.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderServiceError prints the error and, in verbose mode, the catalog entry.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, verbose bool, style string) {
	if svcErr == nil {
		return
	}

	fmt.Fprintf(stderr, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(svcErr.Err, verbose))

	if svcErr.IssueID == 0 {
		return
	}
	if !verbose {
		fmt.Fprintln(stderr, SubtitleStyle.Render("Run again with --verbose for help on this error."))
		return
	}
	if entry := issue.Get(svcErr.IssueID); entry != nil {
		rendered, renderErr := entry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}

// fail reports a fatal error and returns the ExitError the command should return.
func (a *App) fail(err error, style string) error {
	renderServiceError(a.stderr, newServiceError(err, classifyError(err)), a.flags.verbose, style)
	return &ExitError{Code: 1}
}
