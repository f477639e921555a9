// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"sync"

	"modkit-cli/internal/toolexec"
)

type (
	// FakeCall records one invocation seen by a FakeRunner.
	FakeCall struct {
		Tool string
		Args []string
	}

	// FakeHandler scripts a tool's behavior. It may create files to mimic the tool's
	// side effects and returns the Result the runner reports.
	FakeHandler func(args []string) *toolexec.Result

	// FakeRunner implements toolexec.Runner without starting processes. Tools with
	// no handler behave like a missing executable.
	FakeRunner struct {
		mu       sync.Mutex
		handlers map[string]FakeHandler
		calls    []FakeCall
	}
)

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{handlers: make(map[string]FakeHandler)}
}

// Handle registers h for tool, replacing any earlier handler.
func (f *FakeRunner) Handle(tool string, h FakeHandler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tool] = h
	return f
}

// Run implements toolexec.Runner.
func (f *FakeRunner) Run(_ context.Context, tool string, args []string) *toolexec.Result {
	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Tool: tool, Args: slices.Clone(args)})
	h, ok := f.handlers[tool]
	f.mu.Unlock()

	if !ok {
		return &toolexec.Result{
			ExitCode: toolexec.NoExitCode,
			Err:      fmt.Errorf("failed to run %s: %w", tool, exec.ErrNotFound),
		}
	}
	return h(args)
}

// Locate resolves tool only when a handler is registered for it, mirroring
// toolexec.Locate for tools missing from PATH.
func (f *FakeRunner) Locate(tool string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[tool]; !ok {
		return "", &toolexec.ToolNotFoundError{Tool: tool, Cause: exec.ErrNotFound}
	}
	return tool, nil
}

// Calls returns every invocation in order.
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsTo returns the invocations of tool whose first argument is sub, or all
// invocations of tool when sub is empty.
func (f *FakeRunner) CallsTo(tool, sub string) []FakeCall {
	var out []FakeCall
	for _, c := range f.Calls() {
		if c.Tool != tool {
			continue
		}
		if sub != "" && (len(c.Args) == 0 || c.Args[0] != sub) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Ok is a Result for a clean exit with the given stdout.
func Ok(stdout []byte) *toolexec.Result {
	return &toolexec.Result{Stdout: stdout}
}

// Fail is a Result for a non-zero exit with the given stderr.
func Fail(code int, stderr string) *toolexec.Result {
	return &toolexec.Result{ExitCode: toolexec.ExitCode(code), Stderr: []byte(stderr)}
}
