// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"modkit-cli/internal/config"
	"modkit-cli/internal/testutil"
	"modkit-cli/internal/toolexec"
)

// fakeTools scripts the container and texture tools against the default argument
// templates. Each handler creates the files the real tool would.
type fakeTools struct {
	t      *testing.T
	runner *testutil.FakeRunner

	// resources are the file names unpack extracts.
	resources []string
	// formats maps a DDS base name to the format its info query reports;
	// absent names report no format line.
	formats map[string]string
	// failing lists base names whose conversion exits non-zero.
	failing map[string]bool

	failUnpack bool
	failPatch  bool
}

func newFakeTools(t *testing.T) *fakeTools {
	t.Helper()
	f := &fakeTools{
		t:       t,
		runner:  testutil.NewFakeRunner(),
		formats: map[string]string{},
		failing: map[string]bool{},
	}
	f.runner.Handle("UnsealedVerses", f.container)
	f.runner.Handle("texconv", f.texconv)
	return f
}

func (f *fakeTools) container(args []string) *toolexec.Result {
	switch args[0] {
	case "unpack":
		if f.failUnpack {
			return testutil.Fail(2, "bad pack header")
		}
		for _, name := range f.resources {
			testutil.MustWriteFile(f.t, filepath.Join(args[2], name), []byte("RTEX"))
		}
		return testutil.Ok(nil)
	case "rtex-to-dds":
		out, in := args[1], args[2]
		if f.failing[filepath.Base(in)] {
			return testutil.Fail(1, "not a texture resource")
		}
		testutil.MustWriteFile(f.t, out, []byte("DDS "))
		return testutil.Ok(nil)
	case "pack-patch":
		if f.failPatch {
			return testutil.Fail(3, "patch rejected")
		}
		out, inDir := args[1], args[3]
		testutil.MustWriteFile(f.t, out, []byte(strings.Join(testutil.ListDir(f.t, inDir), "\n")))
		return testutil.Ok(nil)
	}
	return testutil.Fail(64, "unknown subcommand "+args[0])
}

func (f *fakeTools) texconv(args []string) *toolexec.Result {
	input := args[len(args)-1]
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	outDir := flagValue(args, "-o")

	switch args[0] {
	case "-info":
		tag, ok := f.formats[base]
		if !ok {
			return testutil.Ok([]byte("reading " + base + " (DDS)\n  width = 4\n"))
		}
		return testutil.Ok([]byte("reading " + base + " (DDS)\n  width = 4\n  format = DXGI_FORMAT_" + tag + "\n"))
	case "-ft":
		if f.failing[base] {
			return testutil.Fail(1, "FAILED converting "+base)
		}
		testutil.WritePNG(f.t, filepath.Join(outDir, stem+".png"), 4, 4)
		return testutil.Ok(nil)
	case "-f":
		if f.failing[base] {
			return testutil.Fail(1, "FAILED converting "+base)
		}
		testutil.MustWriteFile(f.t, filepath.Join(outDir, stem+".dds"), []byte("DDS "+args[1]))
		return testutil.Ok(nil)
	}
	return testutil.Fail(64, "unknown option "+args[0])
}

// fromPNGCalls maps each converted image base name to the -f format it was given
// and whether the sRGB flag was passed.
func (f *fakeTools) fromPNGCalls() map[string][2]string {
	got := map[string][2]string{}
	for _, c := range f.runner.CallsTo("texconv", "-f") {
		srgb := ""
		if slices.Contains(c.Args, "-srgb") {
			srgb = "-srgb"
		}
		got[filepath.Base(c.Args[len(c.Args)-1])] = [2]string{c.Args[1], srgb}
	}
	return got
}

func flagValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func newTestPipeline(t *testing.T, f *fakeTools, mode config.MetadataMode) (*Pipeline, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Metadata.Mode = mode
	workDir := t.TempDir()

	p, err := New(Options{
		Config:  cfg,
		Runner:  f.runner,
		Locate:  f.runner.Locate,
		WorkDir: workDir,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, workDir
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}
