// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modkit-cli/internal/config"
	"modkit-cli/internal/testutil"
)

// toolHelperEnv switches the test binary into fake-decompiler mode (see TestHelperTool).
const toolHelperEnv = "MODKIT_PIPELINE_HELPER"

// TestHelperTool is not a real test: it stands in for the decompiler when the
// tests below run the pipeline with a real ExecRunner. It prints the input file,
// which it opens relative to its own working directory.
func TestHelperTool(t *testing.T) {
	if os.Getenv(toolHelperEnv) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v", args[0], err)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "decompiling %s", filepath.Base(args[0]))
	os.Stdout.Write(data) //nolint:errcheck // helper
	os.Exit(0)
}

func helperPipeline(t *testing.T, workDir string, echo *bytes.Buffer) *Pipeline {
	t.Helper()
	t.Setenv(toolHelperEnv, "1")

	cfg := config.DefaultConfig()
	cfg.Decompile.Args = `-test.run=TestHelperTool -- "$INPUT"`
	opts := Options{
		Config:  cfg,
		WorkDir: workDir,
		Locate:  func(string) (string, error) { return os.Args[0], nil },
	}
	if echo != nil {
		opts.Echo = echo
	}
	p, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDecompile_RelativeWorkDir(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	testutil.MustWriteFile(t, filepath.Join(root, "mods", "scripts", "a.lub"), []byte("local a = 1\n"))

	p := helperPipeline(t, "mods", nil)

	report, err := p.Decompile(context.Background(), "scripts")
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	stage := report.Stage(StageDecompile)
	if stage == nil {
		t.Fatal("no decompile stage in report")
	}
	if stage.Succeeded() != 1 {
		for _, it := range stage.Items {
			t.Logf("%s: %v", it.Name, it.Err)
		}
		t.Fatalf("decompile did not succeed for the single file")
	}

	got, err := os.ReadFile(filepath.Join(root, "mods", "scripts", "a.lua"))
	if err != nil {
		t.Fatalf("listing not written under the work dir: %v", err)
	}
	if string(got) != "local a = 1\n" {
		t.Errorf("listing = %q", got)
	}
}

func TestDecompile_EchoesToolStderr(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "scripts", "title.lub"), []byte("print(1)\n"))

	var echo bytes.Buffer
	p := helperPipeline(t, root, &echo)

	if _, err := p.Decompile(context.Background(), "scripts"); err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	if !strings.Contains(echo.String(), "decompiling title.lub") {
		t.Errorf("echo = %q, want the tool's stderr", echo.String())
	}
}
