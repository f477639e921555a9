// SPDX-License-Identifier: MPL-2.0

// Package toolexec runs the external executables modkit orchestrates.
//
// The Runner interface is the only way pipelines reach a subprocess, so tests can
// substitute a scripted fake. ExecRunner is the os/exec implementation: it blocks until
// the tool exits, captures stdout and stderr as raw bytes, and never imposes a timeout.
//
// A Result is classified into exactly one Outcome: success, a tool-reported failure
// (non-zero exit), or an unexpected failure (the process could not be started or
// waited on). Argument lists are built from shell-word Templates so configured paths
// containing spaces are passed through intact.
package toolexec
