// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"modkit-cli/internal/pipeline"
)

// statusPrinter prints one line per stage and item as a pipeline runs.
type statusPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

func newStatusPrinter(w io.Writer, verbose bool) *statusPrinter {
	return &statusPrinter{w: w, verbose: verbose}
}

// StageStarted implements pipeline.Observer.
func (p *statusPrinter) StageStarted(stage string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", StageStyle.Render("▸ "+stage), SubtitleStyle.Render(fmt.Sprintf("(%d)", total)))
}

// ItemFinished implements pipeline.Observer.
func (p *statusPrinter) ItemFinished(_ string, item pipeline.ItemResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var mark, note string
	switch item.Status {
	case pipeline.StatusSucceeded:
		mark, note = markSucceeded, item.Detail
	case pipeline.StatusFailed:
		mark, note = markFailed, ErrorStyle.UnsetBold().Render(errText(item.Err))
	default:
		mark, note = markSkipped, WarningStyle.Render(skipReason(item))
	}
	if note != "" && (item.Status != pipeline.StatusSucceeded || p.verbose) {
		fmt.Fprintf(p.w, "  %s %s  %s\n", mark, item.Name, note)
		return
	}
	fmt.Fprintf(p.w, "  %s %s\n", mark, item.Name)
}

func skipReason(item pipeline.ItemResult) string {
	if item.Detail != "" {
		return item.Detail
	}
	return errText(item.Err)
}

// errText keeps the first line of err so multi-line tool output stays readable.
func errText(err error) string {
	if err == nil {
		return ""
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}

// renderSummary prints per-stage counts and the run's main output.
func renderSummary(w io.Writer, r *pipeline.Report) {
	if r == nil || len(r.Stages) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(r.Pipeline+" summary"))
	for _, s := range r.Stages {
		parts := []string{SuccessStyle.Render(fmt.Sprintf("%d succeeded", s.Succeeded()))}
		if n := s.Failed(); n > 0 {
			parts = append(parts, ErrorStyle.UnsetBold().Render(fmt.Sprintf("%d failed", n)))
		}
		if n := s.Skipped(); n > 0 {
			parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d skipped", n)))
		}
		fmt.Fprintf(w, "  %-12s %s\n", s.Stage, strings.Join(parts, ", "))
	}
	if r.Output != "" && r.Fatal == nil {
		fmt.Fprintf(w, "\n%s %s\n", markSucceeded, PathStyle.Render(r.Output))
	}
}
