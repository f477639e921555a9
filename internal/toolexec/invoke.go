// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"context"
	"fmt"
)

// Invocation binds a tool to an argument template and the encodings of its output.
type Invocation struct {
	// Tool is the executable name or path.
	Tool string
	// Args is expanded with the per-call Vars.
	Args Template
	// StdoutEncoding decodes stdout on success. Empty means stdout is not decoded.
	StdoutEncoding string
	// StderrEncoding decodes stderr best-effort on failure. Empty means raw bytes.
	StderrEncoding string
}

// Call is the outcome of Invoke.
type Call struct {
	// Args are the expanded arguments the tool was run with.
	Args []string
	// Result is the raw result; nil when the template failed to expand.
	Result *Result
	// Stdout is the decoded stdout, set only on success with a StdoutEncoding.
	Stdout string
}

// Invoke expands the template, runs the tool and classifies the result. The returned
// error is nil only on success; a non-zero exit yields a *ToolError, and undecodable
// stdout yields the textenc error wrapped with the subject.
func Invoke(ctx context.Context, r Runner, inv Invocation, subject string, vars Vars) (*Call, error) {
	args, err := inv.Args.Expand(vars)
	if err != nil {
		return &Call{}, err
	}

	call := &Call{Args: args}
	call.Result = r.Run(ctx, inv.Tool, args)
	if err := call.Result.AsError(inv.Tool, subject, inv.StderrEncoding); err != nil {
		return call, err
	}

	if inv.StdoutEncoding == "" {
		call.Stdout = string(call.Result.Stdout)
		return call, nil
	}

	text, err := decodeStdout(call.Result.Stdout, inv.StdoutEncoding)
	if err != nil {
		return call, fmt.Errorf("decode %s output for %s: %w", inv.Tool, subject, err)
	}
	call.Stdout = text
	return call, nil
}
