// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"modkit-cli/internal/texmeta"
	"modkit-cli/internal/toolexec"

	"github.com/anthonynsimon/bild/imgio"
)

// Repack runs the reverse pipeline: every edited PNG in the input image directory
// is converted back to DDS in the format its tag records, then the original pack
// is patched with the reconstructed directory into <modded prefix><pack name>.
// Images without a tag are skipped. A missing pack stops the run before any
// conversion; no converted image stops it before patching.
func (p *Pipeline) Repack(ctx context.Context) (*Report, error) {
	r := &Report{Pipeline: "repack"}
	d := p.dirs()

	if err := bootstrap(d.inputPack, d.inputPNG, d.reconstructedDDS, d.outputPack); err != nil {
		return r, r.fail(err)
	}
	texconv, err := p.tool(p.cfg.Tools.Texture)
	if err != nil {
		return r, r.fail(err)
	}
	container, err := p.tool(p.cfg.Tools.Container)
	if err != nil {
		return r, r.fail(err)
	}
	pack, err := p.findPack(d.inputPack)
	if err != nil {
		return r, r.fail(err)
	}

	if p.clean {
		r.add(p.cleanDirs(ctx, d.reconstructedDDS))
	}

	images, err := ScanDir(d.inputPNG, pngExt)
	if err != nil {
		return r, r.fail(err)
	}
	if len(images) == 0 {
		return r, r.fail(&NothingToPatchError{Dir: d.inputPNG})
	}

	convert := r.add(Dispatch(ctx, StageFromPNG, images, func(ctx context.Context, path string) ItemResult {
		return p.fromPNG(ctx, texconv, path, d.reconstructedDDS)
	}, p.obs))
	if err := ctx.Err(); err != nil {
		return r, r.fail(err)
	}
	if convert.Succeeded() == 0 {
		return r, r.fail(&NothingToPatchError{Dir: d.inputPNG, Candidates: len(images)})
	}

	out := filepath.Join(d.outputPack, p.cfg.Texture.ModdedPrefix+filepath.Base(pack))
	patch := r.add(Dispatch(ctx, StagePatch, []string{pack}, func(ctx context.Context, path string) ItemResult {
		name := filepath.Base(path)
		inv := p.toolInvocation(container, p.cfg.Texture.Args.Patch)
		if _, err := p.invoke(ctx, inv, name, toolexec.Vars{
			toolexec.VarInput:  path,
			toolexec.VarOutput: out,
			toolexec.VarInDir:  d.reconstructedDDS,
			toolexec.VarOutDir: d.outputPack,
		}, out); err != nil {
			return failed(name, err)
		}
		return succeeded(name, filepath.Base(out))
	}, p.obs))
	if patch.Succeeded() == 0 {
		return r, r.fail(&StageError{Stage: StagePatch, Cause: patch.Items[0].Err})
	}

	r.Output = out
	return r, nil
}

// fromPNG converts one edited image back to DDS using its recorded format.
func (p *Pipeline) fromPNG(ctx context.Context, texconv, path, outDir string) ItemResult {
	name := filepath.Base(path)

	// An image an editor saved badly fails here instead of inside the tool.
	if _, err := imgio.Open(path); err != nil {
		return failed(name, fmt.Errorf("%s: %w: %w", name, ErrUndecodableImage, err))
	}

	tag, err := p.store.Read(path)
	if errors.Is(err, texmeta.ErrMissing) {
		return skipped(name, "no format metadata", err)
	}
	if err != nil {
		return failed(name, err)
	}

	srgb := ""
	if texmeta.IsSRGB(tag) {
		srgb = p.cfg.Texture.SRGBFlag
	}

	out := stemPath(outDir, path, ddsExt)
	inv := p.toolInvocation(texconv, p.cfg.Texture.Args.FromPNG)
	if _, err := p.invoke(ctx, inv, name, toolexec.Vars{
		toolexec.VarInput:  path,
		toolexec.VarOutput: out,
		toolexec.VarOutDir: outDir,
		toolexec.VarFormat: tag,
		toolexec.VarSRGB:   srgb,
	}, out); err != nil {
		return failed(name, err)
	}
	return succeeded(name, tag)
}
