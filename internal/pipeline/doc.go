// SPDX-License-Identifier: MPL-2.0

// Package pipeline orchestrates the decompile, unpack and repack runs.
//
// A run is a strict sequence of stages. Each stage scans one staging directory and
// dispatches every matching file to a handler; a failing item is recorded in the
// stage's report and its siblings still run. Only prerequisite errors (a missing
// tool, input directory or pack), a failed single-item stage (unpack, patch) and
// a reverse run with nothing to patch end a run early. Stages communicate only
// through files in the configured directories.
package pipeline
