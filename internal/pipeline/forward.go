// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"modkit-cli/internal/texmeta"
	"modkit-cli/internal/toolexec"
)

// Unpack runs the forward pipeline: it unpacks the first pack in the input pack
// directory, converts every extracted resource to DDS, then converts every DDS to
// PNG and records its native format in the metadata store. A failed unpack ends
// the run; conversion failures only affect their own item.
func (p *Pipeline) Unpack(ctx context.Context) (*Report, error) {
	r := &Report{Pipeline: "unpack"}
	d := p.dirs()

	if err := bootstrap(d.inputPack, d.extractedRTex, d.extractedDDS, d.outputPNG); err != nil {
		return r, r.fail(err)
	}
	container, err := p.tool(p.cfg.Tools.Container)
	if err != nil {
		return r, r.fail(err)
	}
	texconv, err := p.tool(p.cfg.Tools.Texture)
	if err != nil {
		return r, r.fail(err)
	}
	pack, err := p.findPack(d.inputPack)
	if err != nil {
		return r, r.fail(err)
	}

	if p.clean {
		r.add(p.cleanDirs(ctx, d.extractedRTex, d.extractedDDS, d.outputPNG))
	}

	// Stage 1: the pack itself. Nothing downstream can run without it.
	unpack := r.add(Dispatch(ctx, StageUnpack, []string{pack}, func(ctx context.Context, path string) ItemResult {
		name := filepath.Base(path)
		inv := p.toolInvocation(container, p.cfg.Texture.Args.Unpack)
		if _, err := p.invoke(ctx, inv, name, toolexec.Vars{
			toolexec.VarInput:  path,
			toolexec.VarOutDir: d.extractedRTex,
		}, ""); err != nil {
			return failed(name, err)
		}
		return succeeded(name, "unpacked to "+d.extractedRTex)
	}, p.obs))
	if unpack.Succeeded() == 0 {
		return r, r.fail(&StageError{Stage: StageUnpack, Cause: unpack.Items[0].Err})
	}

	// Stage 2: resources to DDS. Not every resource is a texture.
	resources, err := ScanDir(d.extractedRTex, p.cfg.Texture.ResourceExt)
	if err != nil {
		return r, r.fail(err)
	}
	r.add(Dispatch(ctx, StageToDDS, resources, func(ctx context.Context, path string) ItemResult {
		name := filepath.Base(path)
		out := stemPath(d.extractedDDS, path, ddsExt)
		inv := p.toolInvocation(container, p.cfg.Texture.Args.ToDDS)
		if _, err := p.invoke(ctx, inv, name, toolexec.Vars{
			toolexec.VarInput:  path,
			toolexec.VarOutput: out,
			toolexec.VarOutDir: d.extractedDDS,
		}, out); err != nil {
			return failed(name, err)
		}
		return succeeded(name, filepath.Base(out))
	}, p.obs))
	if err := ctx.Err(); err != nil {
		return r, r.fail(err)
	}

	// Stage 3: DDS to PNG with the format tag recorded.
	textures, err := ScanDir(d.extractedDDS, ddsExt)
	if err != nil {
		return r, r.fail(err)
	}
	r.add(Dispatch(ctx, StageToPNG, textures, func(ctx context.Context, path string) ItemResult {
		return p.toPNG(ctx, texconv, path, d.outputPNG)
	}, p.obs))
	if err := ctx.Err(); err != nil {
		return r, r.fail(err)
	}

	r.Output = d.outputPNG
	return r, nil
}

// toPNG queries the DDS format, converts it and tags the resulting PNG.
func (p *Pipeline) toPNG(ctx context.Context, texconv, path, outDir string) ItemResult {
	name := filepath.Base(path)

	tag, err := p.Format(ctx, texconv, path)
	if err != nil {
		if errors.Is(err, ErrNoFormat) {
			return skipped(name, "could not determine format", err)
		}
		return failed(name, err)
	}

	png := stemPath(outDir, path, pngExt)
	inv := p.toolInvocation(texconv, p.cfg.Texture.Args.ToPNG)
	if _, err := p.invoke(ctx, inv, name, toolexec.Vars{
		toolexec.VarInput:  path,
		toolexec.VarOutput: png,
		toolexec.VarOutDir: outDir,
		toolexec.VarFormat: tag,
	}, png); err != nil {
		return failed(name, err)
	}

	if err := p.store.Write(png, tag); err != nil {
		return failed(name, fmt.Errorf("record format of %s: %w", filepath.Base(png), err))
	}
	return succeeded(name, tag)
}

// Format runs the texture tool's info query on a DDS file and returns its format
// tag without the DXGI_FORMAT_ prefix. texconv may be empty, in which case the
// configured tool is resolved first.
func (p *Pipeline) Format(ctx context.Context, texconv, dds string) (string, error) {
	if texconv == "" {
		var err error
		if texconv, err = p.tool(p.cfg.Tools.Texture); err != nil {
			return "", err
		}
	}

	name := filepath.Base(dds)
	inv := p.toolInvocation(texconv, p.cfg.Texture.Args.Info)
	inv.StdoutEncoding = p.cfg.Texture.OutputEncoding
	call, err := p.invoke(ctx, inv, name, toolexec.Vars{toolexec.VarInput: dds}, "")
	if err != nil {
		return "", err
	}

	tag, ok := texmeta.ParseFormat(call.Stdout)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNoFormat)
	}
	return tag, nil
}
