// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"modkit-cli/internal/pipeline"
)

func TestStatusPrinter(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		item    pipeline.ItemResult
		want    string
		absent  string
	}{
		{
			name: "success hides detail",
			item: pipeline.ItemResult{Name: "a.dds", Status: pipeline.StatusSucceeded, Detail: "BC7_UNORM"},
			want: "✓ a.dds\n", absent: "BC7_UNORM",
		},
		{
			name: "verbose success shows detail", verbose: true,
			item: pipeline.ItemResult{Name: "a.dds", Status: pipeline.StatusSucceeded, Detail: "BC7_UNORM"},
			want: "BC7_UNORM",
		},
		{
			name: "failure keeps first line",
			item: pipeline.ItemResult{Name: "b.dds", Status: pipeline.StatusFailed, Err: errors.New("texconv failed\nstack dump")},
			want: "texconv failed", absent: "stack dump",
		},
		{
			name: "skip shows reason",
			item: pipeline.ItemResult{Name: "c.png", Status: pipeline.StatusSkipped, Err: errors.New("no format tag")},
			want: "no format tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newStatusPrinter(&buf, tt.verbose).ItemFinished("stage", tt.item)
			got := buf.String()
			if !strings.Contains(got, tt.want) {
				t.Errorf("output %q lacks %q", got, tt.want)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("output %q contains %q", got, tt.absent)
			}
		})
	}
}

func TestRenderSummary(t *testing.T) {
	stage := &pipeline.StageReport{Stage: "png-to-dds", Items: []pipeline.ItemResult{
		{Name: "a", Status: pipeline.StatusSucceeded},
		{Name: "b", Status: pipeline.StatusFailed},
		{Name: "c", Status: pipeline.StatusSkipped},
	}}

	var buf bytes.Buffer
	renderSummary(&buf, &pipeline.Report{Pipeline: "repack", Stages: []*pipeline.StageReport{stage}, Output: "out/modded_data.xap"})
	got := buf.String()
	for _, want := range []string{"repack summary", "png-to-dds", "1 succeeded", "1 failed", "1 skipped", "out/modded_data.xap"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary lacks %q:\n%s", want, got)
		}
	}

	buf.Reset()
	renderSummary(&buf, &pipeline.Report{Pipeline: "repack", Stages: []*pipeline.StageReport{stage}, Output: "x", Fatal: errors.New("boom")})
	if strings.Contains(buf.String(), "✓ x") {
		t.Error("summary names the output of a failed run")
	}

	buf.Reset()
	renderSummary(&buf, &pipeline.Report{Pipeline: "unpack"})
	if buf.Len() != 0 {
		t.Errorf("empty report printed %q", buf.String())
	}
}
