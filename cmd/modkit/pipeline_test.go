// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"modkit-cli/internal/config"
	"modkit-cli/internal/issue"
	"modkit-cli/internal/pipeline"
	"modkit-cli/internal/testutil"
	"modkit-cli/internal/textenc"
	"modkit-cli/internal/toolexec"
)

func fakeDeps(r *testutil.FakeRunner) Dependencies {
	return Dependencies{Runner: r, Locate: r.Locate}
}

func TestDecompileCommand(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "title.lub"), []byte("\x1bLua"))
	testutil.MustWriteFile(t, filepath.Join(dir, "bad.lub"), []byte("\x1bLua"))

	listing, err := textenc.MustLookup(textenc.CP932).Encode("-- タイトル\n")
	if err != nil {
		t.Fatal(err)
	}
	runner := testutil.NewFakeRunner().Handle("luadec", func(args []string) *toolexec.Result {
		if filepath.Base(args[0]) == "bad.lub" {
			return testutil.Fail(1, "bad header")
		}
		return testutil.Ok(listing)
	})

	res := runCLI(t, fakeDeps(runner), "decompile", dir)
	if res.exitCode() != 0 {
		t.Fatalf("exit %d, stderr:\n%s", res.exitCode(), res.stderr)
	}
	for _, want := range []string{"▸ decompile", "✓ title.lub", "✗ bad.lub", "bad header", "1 succeeded", "1 failed"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if got := string(testutil.MustReadFile(t, filepath.Join(dir, "title.lua"))); got != "-- タイトル\n" {
		t.Errorf("title.lua = %q", got)
	}
}

func TestDecompileCommand_MissingFolder(t *testing.T) {
	runner := testutil.NewFakeRunner().Handle("luadec", func([]string) *toolexec.Result { return testutil.Ok(nil) })

	res := runCLI(t, fakeDeps(runner), "decompile", filepath.Join(t.TempDir(), "nope"))
	if res.exitCode() != 1 {
		t.Fatalf("exit %d, want 1", res.exitCode())
	}
	if !strings.Contains(res.stderr, "missing input folder") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestUnpackCommand_ToolMissing(t *testing.T) {
	res := runCLI(t, fakeDeps(testutil.NewFakeRunner()), "--workdir", t.TempDir(), "unpack")
	if res.exitCode() != 1 {
		t.Fatalf("exit %d, want 1", res.exitCode())
	}
	if !strings.Contains(res.stderr, "UnsealedVerses") {
		t.Errorf("stderr does not name the tool:\n%s", res.stderr)
	}
}

func TestRepackCommand_NothingToPatch(t *testing.T) {
	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, "input_pack", "data.xap"), nil)
	runner := testutil.NewFakeRunner().
		Handle("UnsealedVerses", func([]string) *toolexec.Result { return testutil.Ok(nil) }).
		Handle("texconv", func([]string) *toolexec.Result { return testutil.Ok(nil) })

	res := runCLI(t, fakeDeps(runner), "--workdir", work, "repack")
	if res.exitCode() != 1 {
		t.Fatalf("exit %d, want 1", res.exitCode())
	}
	if !strings.Contains(res.stderr, "nothing to patch") || !strings.Contains(res.stderr, "--verbose") {
		t.Errorf("stderr = %q", res.stderr)
	}
	if n := len(runner.CallsTo("UnsealedVerses", "pack-patch")); n != 0 {
		t.Errorf("pack-patch called %d times", n)
	}

	verbose := runCLI(t, fakeDeps(runner), "--workdir", work, "-v", "repack")
	if !strings.Contains(verbose.stderr, "Nothing to patch!") {
		t.Errorf("verbose stderr lacks the catalog entry:\n%s", verbose.stderr)
	}
}

func TestRepackCommand_WritesPack(t *testing.T) {
	work := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(work, "input_pack", "data.xap"), nil)
	runner := testutil.NewFakeRunner().
		Handle("UnsealedVerses", func(args []string) *toolexec.Result {
			testutil.MustWriteFile(t, args[1], []byte("patched"))
			return testutil.Ok(nil)
		}).
		Handle("texconv", func(args []string) *toolexec.Result {
			out := args[slices.Index(args, "-o")+1]
			testutil.MustWriteFile(t, filepath.Join(out, "hero.dds"), nil)
			return testutil.Ok(nil)
		})

	deps := fakeDeps(runner)
	p, err := pipeline.New(pipeline.Options{Config: config.DefaultConfig(), Runner: runner, Locate: runner.Locate, WorkDir: work})
	if err != nil {
		t.Fatal(err)
	}
	png := filepath.Join(work, "input_png", "hero.png")
	testutil.WritePNG(t, png, 2, 2)
	if err := p.Store().Write(png, "BC7_UNORM"); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, deps, "--workdir", work, "repack")
	if res.exitCode() != 0 {
		t.Fatalf("exit %d, stderr:\n%s", res.exitCode(), res.stderr)
	}
	out := filepath.Join(work, "output_pack", "modded_data.xap")
	if !strings.Contains(res.stdout, out) {
		t.Errorf("stdout does not name %s:\n%s", out, res.stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
}

func TestFormatCommand(t *testing.T) {
	runner := testutil.NewFakeRunner().Handle("texconv", func(args []string) *toolexec.Result {
		if strings.HasSuffix(args[len(args)-1], "none.dds") {
			return testutil.Ok([]byte("reading none.dds\n"))
		}
		return testutil.Ok([]byte("reading a.dds\n  format = DXGI_FORMAT_BC7_UNORM_SRGB\n"))
	})

	res := runCLI(t, fakeDeps(runner), "format", "a.dds")
	if res.exitCode() != 0 || res.stdout != "BC7_UNORM_SRGB\n" {
		t.Errorf("format a.dds = %q (exit %d, stderr %q)", res.stdout, res.exitCode(), res.stderr)
	}

	res = runCLI(t, fakeDeps(runner), "format", "none.dds")
	if res.exitCode() != 1 || !strings.Contains(res.stderr, "format not reported") {
		t.Errorf("format none.dds: exit %d, stderr %q", res.exitCode(), res.stderr)
	}
}

func TestConfigLoadFailureIsFatal(t *testing.T) {
	broken := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("expected '}'")).
		BuildError()

	res := runCLI(t, Dependencies{Config: staticConfig{err: broken}}, "unpack")
	if res.exitCode() != 1 {
		t.Fatalf("exit %d, want 1", res.exitCode())
	}
	if !strings.Contains(res.stderr, "failed to load configuration: config.cue") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"tool not found", &pipeline.PrerequisiteError{What: "tool", Where: "texconv", Cause: &toolexec.ToolNotFoundError{Tool: "texconv"}}, issue.ToolNotFoundId},
		{"input folder", &pipeline.PrerequisiteError{What: "input folder", Where: "scripts"}, issue.InputFolderNotFoundId},
		{"pack", &pipeline.PrerequisiteError{What: ".xap pack in", Where: "input_pack"}, issue.PackNotFoundId},
		{"nothing to patch", &pipeline.NothingToPatchError{Dir: "input_png"}, issue.NothingToPatchId},
		{"stage failed", &pipeline.StageError{Stage: pipeline.StageUnpack, Cause: errors.New("bad")}, issue.StageFailedId},
		{"permission", &os.PathError{Op: "open", Path: "x", Err: os.ErrPermission}, issue.PermissionDeniedId},
		{"encoding", &textenc.UnknownEncodingError{Value: "latin9"}, issue.UnknownEncodingId},
		{"linked", issue.NewErrorContext().WithOperation("x").WithIssue(issue.ConfigLoadFailedId).BuildError(), issue.ConfigLoadFailedId},
		{"unknown", errors.New("boom"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
