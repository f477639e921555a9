// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	// OutcomeSuccess means the tool exited with status 0.
	OutcomeSuccess Outcome = "success"
	// OutcomeToolFailure means the tool ran and reported a non-zero exit status.
	OutcomeToolFailure Outcome = "tool-failure"
	// OutcomeUnexpected means the tool could not be run to completion.
	OutcomeUnexpected Outcome = "unexpected"
)

type (
	// Outcome classifies a Result.
	Outcome string

	// Result holds everything a tool invocation produced.
	Result struct {
		// ExitCode is the process exit status, or NoExitCode when Err is set.
		ExitCode ExitCode
		// Stdout is the raw captured standard output.
		Stdout []byte
		// Stderr is the raw captured standard error.
		Stderr []byte
		// Err is set when the process could not be started or waited on.
		Err error
	}

	// Runner runs an external tool and captures its output. Implementations block
	// until the tool exits.
	Runner interface {
		Run(ctx context.Context, tool string, args []string) *Result
	}

	// ExecRunner is the os/exec backed Runner.
	ExecRunner struct {
		// Dir is the working directory for every invocation; empty means the
		// current directory.
		Dir string
		// Echo, when set, receives a copy of each tool's stderr as it runs.
		Echo io.Writer
	}
)

// NewExecRunner creates an ExecRunner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

// Run executes tool with args. A non-zero exit is reported through ExitCode, not Err.
func (r *ExecRunner) Run(ctx context.Context, tool string, args []string) *Result {
	cmd := exec.CommandContext(ctx, tool, args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Echo != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Echo)
	}

	slog.Debug("running tool", "tool", tool, "args", args, "dir", r.Dir)

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.Exited() {
			result.ExitCode = ExitCode(exitErr.ExitCode())
			return result
		}
		result.ExitCode = NoExitCode
		result.Err = fmt.Errorf("failed to run %s: %w", tool, err)
	}

	return result
}

// Outcome classifies the result.
func (r *Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeUnexpected
	case r.ExitCode.IsSuccess():
		return OutcomeSuccess
	default:
		return OutcomeToolFailure
	}
}

// Success returns true if the tool exited cleanly.
func (r *Result) Success() bool {
	return r.Outcome() == OutcomeSuccess
}

// AsError converts a failed result to a *ToolError. It returns nil on success.
// stderrEncoding decodes the captured stderr best-effort for the message.
func (r *Result) AsError(tool, subject, stderrEncoding string) error {
	if r.Success() {
		return nil
	}
	return &ToolError{
		Tool:     tool,
		Subject:  subject,
		Outcome:  r.Outcome(),
		ExitCode: r.ExitCode,
		Message:  strings.TrimSpace(decodeStderr(r.Stderr, stderrEncoding)),
		Cause:    r.Err,
	}
}
