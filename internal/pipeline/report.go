// SPDX-License-Identifier: MPL-2.0

package pipeline

import "time"

// Stage names, in the order the pipelines run them.
const (
	StageClean     = "clean"
	StageDecompile = "decompile"
	StageUnpack    = "unpack"
	StageToDDS     = "rtex-to-dds"
	StageToPNG     = "dds-to-png"
	StageFromPNG   = "png-to-dds"
	StagePatch     = "patch"
)

const (
	// StatusSucceeded means the item produced its output.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means a tool, codec or store error stopped the item.
	StatusFailed Status = "failed"
	// StatusSkipped means the item was passed over, e.g. for missing metadata.
	StatusSkipped Status = "skipped"
)

type (
	// Status is the outcome of one item.
	Status string

	// ItemResult records what happened to one file.
	ItemResult struct {
		// Name is the file's base name.
		Name string
		// Status is the item's outcome.
		Status Status
		// Detail is a short human-readable note, such as the format tag.
		Detail string
		// Err is the typed failure or skip reason.
		Err error
	}

	// StageReport collects the item results of one stage in dispatch order.
	StageReport struct {
		Stage    string
		Items    []ItemResult
		Duration time.Duration
	}

	// Report is the outcome of one pipeline run.
	Report struct {
		// Pipeline names the run: decompile, unpack or repack.
		Pipeline string
		// Stages are in execution order; a fatal error ends the list early.
		Stages []*StageReport
		// Output is the main artifact, such as the patched pack.
		Output string
		// Fatal is the error that ended the run, nil when every stage ran.
		Fatal error
	}
)

// Succeeded counts the items that produced their output.
func (s *StageReport) Succeeded() int { return s.count(StatusSucceeded) }

// Failed counts the items that failed.
func (s *StageReport) Failed() int { return s.count(StatusFailed) }

// Skipped counts the items that were passed over.
func (s *StageReport) Skipped() int { return s.count(StatusSkipped) }

func (s *StageReport) count(st Status) int {
	n := 0
	for _, it := range s.Items {
		if it.Status == st {
			n++
		}
	}
	return n
}

// Stage returns the named stage's report, or nil if the stage never ran.
func (r *Report) Stage(name string) *StageReport {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s
		}
	}
	return nil
}

func (r *Report) add(s *StageReport) *StageReport {
	r.Stages = append(r.Stages, s)
	return s
}

// fail records err as fatal and returns it, for `return r, r.fail(err)`.
func (r *Report) fail(err error) error {
	r.Fatal = err
	return err
}

func succeeded(name, detail string) ItemResult {
	return ItemResult{Name: name, Status: StatusSucceeded, Detail: detail}
}

func failed(name string, err error) ItemResult {
	return ItemResult{Name: name, Status: StatusFailed, Err: err}
}

func skipped(name, detail string, err error) ItemResult {
	return ItemResult{Name: name, Status: StatusSkipped, Detail: detail, Err: err}
}
