// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"modkit-cli/internal/config"
	"modkit-cli/internal/testutil"
	"modkit-cli/internal/textenc"
	"modkit-cli/internal/toolexec"
)

func sjis(t *testing.T, s string) []byte {
	t.Helper()
	b, err := textenc.MustLookup(textenc.CP932).Encode(s)
	if err != nil {
		t.Fatalf("encode %q: %v", s, err)
	}
	return b
}

func TestDecompile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"title.lub", "MENU.LUB", "broken.lub", "garbled.lub", "readme.txt"} {
		testutil.MustWriteFile(t, filepath.Join(dir, name), []byte("\x1bLua"))
	}

	outputs := map[string]*toolexec.Result{
		"title.lub":   testutil.Ok(sjis(t, "-- タイトル画面\nlocal x = 1\n")),
		"MENU.LUB":    testutil.Ok(sjis(t, "print(\"メニュー\")\n")),
		"broken.lub":  {ExitCode: 1, Stderr: sjis(t, "エラー: bad header")},
		"garbled.lub": testutil.Ok([]byte{'o', 'k', 0x82, 0x20}),
	}
	runner := testutil.NewFakeRunner().Handle("luadec", func(args []string) *toolexec.Result {
		return outputs[filepath.Base(args[0])]
	})

	p, err := New(Options{Config: config.DefaultConfig(), Runner: runner, Locate: runner.Locate})
	if err != nil {
		t.Fatal(err)
	}

	report, err := p.Decompile(context.Background(), dir)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}

	stage := report.Stage(StageDecompile)
	if stage == nil {
		t.Fatal("no decompile stage in report")
	}
	if len(stage.Items) != 4 {
		t.Fatalf("handled %d files, want 4", len(stage.Items))
	}
	if stage.Succeeded() != 2 || stage.Failed() != 2 {
		t.Errorf("succeeded=%d failed=%d, want 2 and 2", stage.Succeeded(), stage.Failed())
	}

	if got := string(testutil.MustReadFile(t, filepath.Join(dir, "title.lua"))); got != "-- タイトル画面\nlocal x = 1\n" {
		t.Errorf("title.lua = %q", got)
	}
	if got := string(testutil.MustReadFile(t, filepath.Join(dir, "MENU.lua"))); got != "print(\"メニュー\")\n" {
		t.Errorf("MENU.lua = %q", got)
	}

	want := []string{"MENU.LUB", "MENU.lua", "broken.lub", "garbled.lub", "readme.txt", "title.lua", "title.lub"}
	if got := testutil.ListDir(t, dir); !slices.Equal(got, want) {
		t.Errorf("dir = %v, want %v", got, want)
	}

	for _, it := range stage.Items {
		switch it.Name {
		case "broken.lub":
			var te *toolexec.ToolError
			if !errors.As(it.Err, &te) || te.ExitCode != 1 || te.Message != "エラー: bad header" {
				t.Errorf("broken.lub error = %#v, want ToolError with decoded stderr", it.Err)
			}
		case "garbled.lub":
			if !errors.Is(it.Err, textenc.ErrInvalidSequence) {
				t.Errorf("garbled.lub error = %v, want ErrInvalidSequence", it.Err)
			}
		}
	}
}

func TestDecompile_Prerequisites(t *testing.T) {
	t.Parallel()

	t.Run("missing folder", func(t *testing.T) {
		t.Parallel()

		runner := testutil.NewFakeRunner().Handle("luadec", func([]string) *toolexec.Result { return testutil.Ok(nil) })
		p, err := New(Options{Config: config.DefaultConfig(), Runner: runner, Locate: runner.Locate})
		if err != nil {
			t.Fatal(err)
		}
		report, err := p.Decompile(context.Background(), filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrPrerequisite) || report.Fatal != err {
			t.Errorf("Decompile() error = %v, want ErrPrerequisite recorded as fatal", err)
		}
	})

	t.Run("missing tool", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(dir, "a.lub"), nil)
		runner := testutil.NewFakeRunner()
		p, err := New(Options{Config: config.DefaultConfig(), Runner: runner, Locate: runner.Locate})
		if err != nil {
			t.Fatal(err)
		}
		_, err = p.Decompile(context.Background(), dir)
		if !errors.Is(err, ErrPrerequisite) || !errors.Is(err, toolexec.ErrToolNotFound) {
			t.Errorf("Decompile() error = %v, want prerequisite tool-not-found", err)
		}
		if n := len(runner.Calls()); n != 0 {
			t.Errorf("%d tool calls after prerequisite failure", n)
		}
	})

	t.Run("empty folder", func(t *testing.T) {
		t.Parallel()

		runner := testutil.NewFakeRunner().Handle("luadec", func([]string) *toolexec.Result { return testutil.Ok(nil) })
		p, err := New(Options{Config: config.DefaultConfig(), Runner: runner, Locate: runner.Locate})
		if err != nil {
			t.Fatal(err)
		}
		report, err := p.Decompile(context.Background(), t.TempDir())
		if err != nil {
			t.Fatalf("Decompile(empty) = %v", err)
		}
		if got := report.Stage(StageDecompile).Succeeded(); got != 0 {
			t.Errorf("Succeeded() = %d, want 0", got)
		}
	})
}
