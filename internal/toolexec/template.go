// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// Template variables understood by the default argument templates.
const (
	VarInput  = "INPUT"
	VarOutput = "OUTPUT"
	VarOutDir = "OUTDIR"
	VarInDir  = "INDIR"
	VarFormat = "FORMAT"
	VarSRGB   = "SRGB"
)

// ErrInvalidTemplate is the sentinel error wrapped by InvalidTemplateError.
var ErrInvalidTemplate = errors.New("invalid argument template")

type (
	// Template is a shell-word argument list such as `-f "$FORMAT" -o "$OUTDIR" "$INPUT"`.
	// Expansion follows POSIX word splitting: a quoted variable is always one argument,
	// an unquoted empty variable produces no argument at all.
	Template string

	// Vars are the values substituted into a Template.
	Vars map[string]string

	// InvalidTemplateError is returned when a Template does not parse.
	InvalidTemplateError struct {
		Value Template
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid argument template %q: %v", e.Value, e.Cause)
}

// Unwrap returns ErrInvalidTemplate for errors.Is.
func (e *InvalidTemplateError) Unwrap() error { return ErrInvalidTemplate }

// Validate checks that t parses as a list of shell words.
func (t Template) Validate() error {
	err := syntax.NewParser().Words(strings.NewReader(string(t)), func(*syntax.Word) bool { return true })
	if err != nil {
		return &InvalidTemplateError{Value: t, Cause: err}
	}
	return nil
}

// Expand substitutes vars and splits the result into arguments. Variables not in
// vars expand to the empty string; the host environment is never consulted.
func (t Template) Expand(vars Vars) ([]string, error) {
	args, err := shell.Fields(string(t), func(name string) string {
		return vars[name]
	})
	if err != nil {
		return nil, &InvalidTemplateError{Value: t, Cause: err}
	}
	return args, nil
}

// Locate resolves tool to an executable path. Names containing a path separator are
// checked as files; bare names are searched in PATH (which also applies PATHEXT on
// Windows, so "texconv" finds texconv.exe).
func Locate(tool string) (string, error) {
	if tool == "" {
		return "", &ToolNotFoundError{Tool: tool, Cause: errors.New("no tool configured")}
	}
	if strings.ContainsRune(tool, filepath.Separator) || strings.ContainsRune(tool, '/') {
		abs, err := filepath.Abs(tool)
		if err != nil {
			return "", &ToolNotFoundError{Tool: tool, Cause: err}
		}
		path, err := exec.LookPath(abs)
		if err != nil {
			return "", &ToolNotFoundError{Tool: tool, Cause: err}
		}
		return path, nil
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", &ToolNotFoundError{Tool: tool, Cause: err}
	}
	return path, nil
}
