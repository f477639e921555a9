// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"modkit-cli/internal/config"
	"modkit-cli/internal/texmeta"
	"modkit-cli/internal/toolexec"
)

const (
	ddsExt config.Extension = ".dds"
	pngExt config.Extension = ".png"
)

type (
	// Options configures a Pipeline.
	Options struct {
		// Config is required.
		Config *config.Config
		// Runner runs the external tools. Defaults to an ExecRunner in WorkDir.
		Runner toolexec.Runner
		// Echo receives a live copy of tool stderr when the default Runner is used.
		Echo io.Writer
		// Locate resolves tool names before a run. Defaults to toolexec.Locate.
		Locate func(tool string) (string, error)
		// WorkDir roots relative staging directories and is the tools' working
		// directory. Empty means the current directory.
		WorkDir string
		// Clean empties the run's intermediate directories before it starts.
		Clean bool
		// Observer receives progress events; nil discards them.
		Observer Observer
	}

	// Pipeline runs the decompile, unpack and repack flows against one
	// configuration. It holds no state between runs.
	Pipeline struct {
		cfg     *config.Config
		runner  toolexec.Runner
		locate  func(string) (string, error)
		store   texmeta.Store
		workDir string
		clean   bool
		obs     Observer
	}

	// stagingDirs are the resolved absolute or workdir-relative directories.
	stagingDirs struct {
		inputPack, extractedRTex, extractedDDS, outputPNG string
		inputPNG, reconstructedDDS, outputPack            string
	}
)

// New validates opts and builds a Pipeline. The metadata strategy is fixed here,
// so every run of one Pipeline reads and writes tags the same way.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: nil config")
	}
	if valid, errs := opts.Config.IsValid(); !valid {
		return nil, errors.Join(errs...)
	}

	// Tools run inside the work dir, so the paths handed to them must not be
	// relative to it a second time.
	workDir := opts.WorkDir
	if workDir != "" {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return nil, fmt.Errorf("pipeline: resolve work dir: %w", err)
		}
		workDir = abs
	}

	store, err := texmeta.New(texmeta.Options{
		Mode:   texmeta.Mode(opts.Config.Metadata.Mode),
		Key:    opts.Config.Metadata.Key,
		Suffix: opts.Config.Metadata.Suffix,
	})
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     opts.Config,
		runner:  opts.Runner,
		locate:  opts.Locate,
		store:   store,
		workDir: workDir,
		clean:   opts.Clean,
		obs:     opts.Observer,
	}
	if p.runner == nil {
		runner := toolexec.NewExecRunner(workDir)
		runner.Echo = opts.Echo
		p.runner = runner
	}
	if p.locate == nil {
		p.locate = toolexec.Locate
	}
	if p.obs == nil {
		p.obs = nopObserver{}
	}
	return p, nil
}

// Store returns the metadata store the pipeline was built with.
func (p *Pipeline) Store() texmeta.Store { return p.store }

// Dirs returns the resolved staging directories keyed by their config names.
func (p *Pipeline) Dirs() map[string]string {
	d := p.dirs()
	return map[string]string{
		"input_pack":        d.inputPack,
		"extracted_rtex":    d.extractedRTex,
		"extracted_dds":     d.extractedDDS,
		"output_png":        d.outputPNG,
		"input_png":         d.inputPNG,
		"reconstructed_dds": d.reconstructedDDS,
		"output_pack":       d.outputPack,
	}
}

func (p *Pipeline) dirs() stagingDirs {
	c := p.cfg.Dirs
	return stagingDirs{
		inputPack:        p.resolve(string(c.InputPack)),
		extractedRTex:    p.resolve(string(c.ExtractedRTex)),
		extractedDDS:     p.resolve(string(c.ExtractedDDS)),
		outputPNG:        p.resolve(string(c.OutputPNG)),
		inputPNG:         p.resolve(string(c.InputPNG)),
		reconstructedDDS: p.resolve(string(c.ReconstructedDDS)),
		outputPack:       p.resolve(string(c.OutputPack)),
	}
}

func (p *Pipeline) resolve(path string) string {
	if filepath.IsAbs(path) || p.workDir == "" {
		return path
	}
	return filepath.Join(p.workDir, path)
}

// tool resolves a configured tool or reports it as a missing prerequisite.
func (p *Pipeline) tool(name config.ToolPath) (string, error) {
	path, err := p.locate(string(name))
	if err != nil {
		return "", &PrerequisiteError{What: "tool", Where: string(name), Cause: err}
	}
	return path, nil
}

// bootstrap creates the directories a run reads from or writes to.
func bootstrap(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

// findPack returns the first pack file in the input pack directory.
func (p *Pipeline) findPack(dir string) (string, error) {
	packs, err := ScanDir(dir, p.cfg.Texture.PackExt)
	if err != nil {
		return "", &PrerequisiteError{What: string(p.cfg.Texture.PackExt) + " pack directory", Where: dir, Cause: err}
	}
	if len(packs) == 0 {
		return "", &PrerequisiteError{What: string(p.cfg.Texture.PackExt) + " pack in", Where: dir}
	}
	if len(packs) > 1 {
		slog.Warn("several packs found, using the first", "pack", filepath.Base(packs[0]), "count", len(packs))
	}
	return packs[0], nil
}

// cleanDirs removes the regular files directly inside dirs. Directories
// themselves and anything nested are left alone.
func (p *Pipeline) cleanDirs(ctx context.Context, dirs ...string) *StageReport {
	var files []string
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(d, e.Name()))
			}
		}
	}
	return Dispatch(ctx, StageClean, files, func(_ context.Context, path string) ItemResult {
		if err := os.Remove(path); err != nil {
			return failed(filepath.Base(path), err)
		}
		return succeeded(filepath.Base(path), "removed")
	}, p.obs)
}

// invoke runs inv for one subject and checks that want exists afterwards.
func (p *Pipeline) invoke(ctx context.Context, inv toolexec.Invocation, subject string, vars toolexec.Vars, want string) (*toolexec.Call, error) {
	call, err := toolexec.Invoke(ctx, p.runner, inv, subject, vars)
	if err != nil {
		return call, err
	}
	if want != "" && !fileExists(want) {
		return call, fmt.Errorf("%s: %w: %s", subject, ErrOutputMissing, want)
	}
	return call, nil
}

func (p *Pipeline) toolInvocation(tool string, args toolexec.Template) toolexec.Invocation {
	return toolexec.Invocation{
		Tool:           tool,
		Args:           args,
		StderrEncoding: p.cfg.Texture.OutputEncoding,
	}
}
