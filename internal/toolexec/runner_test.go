// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
)

// helperEnv switches the test binary into fake-tool mode (see TestHelperProcess).
const helperEnv = "MODKIT_TOOLEXEC_HELPER"

// TestHelperProcess is not a real test: ExecRunner tests re-execute the test binary
// with helperEnv set so it behaves as a small external tool.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	switch args[0] {
	case "echo":
		fmt.Fprint(os.Stdout, strings.Join(args[1:], " "))
		os.Exit(0)
	case "sjis":
		os.Stdout.Write([]byte{0x82, 0xA0}) //nolint:errcheck // helper
		os.Exit(0)
	case "fail":
		code, _ := strconv.Atoi(args[1])
		os.Stderr.Write([]byte{'b', 'a', 'd', ' ', 0x82, 0xA0}) //nolint:errcheck // helper
		os.Exit(code)
	}
	os.Exit(99)
}

func helperRunner(t *testing.T) (*ExecRunner, string) {
	t.Helper()
	t.Setenv(helperEnv, "1")
	return NewExecRunner(""), os.Args[0]
}

func helperArgs(args ...string) []string {
	return append([]string{"-test.run=TestHelperProcess", "--"}, args...)
}

func TestExecRunner_Success(t *testing.T) {
	r, bin := helperRunner(t)

	res := r.Run(context.Background(), bin, helperArgs("echo", "hello", "world"))
	if res.Outcome() != OutcomeSuccess {
		t.Fatalf("Outcome = %s (err=%v, stderr=%q)", res.Outcome(), res.Err, res.Stderr)
	}
	if string(res.Stdout) != "hello world" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello world")
	}
	if err := res.AsError("echo", "x", ""); err != nil {
		t.Errorf("AsError on success = %v, want nil", err)
	}
}

func TestExecRunner_ToolFailure(t *testing.T) {
	r, bin := helperRunner(t)

	res := r.Run(context.Background(), bin, helperArgs("fail", "3"))
	if res.Outcome() != OutcomeToolFailure {
		t.Fatalf("Outcome = %s, want %s", res.Outcome(), OutcomeToolFailure)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}

	err := res.AsError("luadec", "a.lub", "cp932")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("AsError = %v, want *ToolError", err)
	}
	if toolErr.Message != "bad あ" {
		t.Errorf("Message = %q, want stderr decoded as cp932", toolErr.Message)
	}
	if !errors.Is(err, ErrToolFailed) {
		t.Error("ToolError should wrap ErrToolFailed")
	}
	if !strings.Contains(err.Error(), "a.lub") || !strings.Contains(err.Error(), "exit code 3") {
		t.Errorf("Error() = %q, want subject and exit code", err.Error())
	}
}

func TestExecRunner_Unexpected(t *testing.T) {
	t.Parallel()

	r := NewExecRunner(t.TempDir())
	res := r.Run(context.Background(), "modkit-definitely-not-a-real-tool", nil)
	if res.Outcome() != OutcomeUnexpected {
		t.Fatalf("Outcome = %s, want %s", res.Outcome(), OutcomeUnexpected)
	}
	if res.ExitCode != NoExitCode {
		t.Errorf("ExitCode = %d, want NoExitCode", res.ExitCode)
	}
	err := res.AsError("missing", "", "")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Outcome != OutcomeUnexpected {
		t.Fatalf("AsError = %v, want unexpected *ToolError", err)
	}
	if !strings.Contains(err.Error(), "unexpected failure") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestInvoke_DecodesStdout(t *testing.T) {
	r, bin := helperRunner(t)

	inv := Invocation{Tool: bin, Args: Template(`-test.run=TestHelperProcess -- sjis "$INPUT"`), StdoutEncoding: "cp932"}
	call, err := Invoke(context.Background(), r, inv, "a.lub", Vars{VarInput: "a.lub"})
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if call.Stdout != "あ" {
		t.Errorf("Stdout = %q, want %q", call.Stdout, "あ")
	}
	if got := call.Args[len(call.Args)-1]; got != "a.lub" {
		t.Errorf("last arg = %q, want a.lub", got)
	}
}

func TestInvoke_UndecodableStdout(t *testing.T) {
	r, bin := helperRunner(t)

	// "echo" prints its arguments; a lone 0x82 is not valid Shift-JIS.
	inv := Invocation{Tool: bin, Args: Template(`-test.run=TestHelperProcess -- echo "$INPUT"`), StdoutEncoding: "cp932"}
	_, err := Invoke(context.Background(), r, inv, "bad.lub", Vars{VarInput: "ok\x82"})
	if err == nil {
		t.Fatal("Invoke succeeded, want decode error")
	}
	if errors.Is(err, ErrToolFailed) {
		t.Error("decode failure must not be reported as a tool failure")
	}
	if !strings.Contains(err.Error(), "bad.lub") {
		t.Errorf("error %q should name the subject", err)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code      ExitCode
		wantValid bool
		success   bool
	}{
		{code: 0, wantValid: true, success: true},
		{code: 1, wantValid: true},
		{code: 255, wantValid: true},
		{code: NoExitCode, wantValid: true},
		{code: -2},
		{code: 256},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.code.IsValid()
			if valid != tt.wantValid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.wantValid)
			}
			if !valid && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidExitCode)) {
				t.Errorf("IsValid() errors = %v, want ErrInvalidExitCode", errs)
			}
			if tt.code.IsSuccess() != tt.success {
				t.Errorf("IsSuccess() = %v, want %v", tt.code.IsSuccess(), tt.success)
			}
		})
	}
}
