// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"modkit-cli/internal/toolexec"
)

// Decompile runs the decompiler on every bytecode file in folder and writes each
// decoded listing next to its input as UTF-8. A file whose decompile fails or whose
// output does not decode is reported and skipped; only a missing folder or tool
// ends the run. The decompile stage's Succeeded count is the number of files written.
func (p *Pipeline) Decompile(ctx context.Context, folder string) (*Report, error) {
	r := &Report{Pipeline: "decompile"}

	folder = p.resolve(folder)
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", folder)
		}
		return r, r.fail(&PrerequisiteError{What: "input folder", Where: folder, Cause: err})
	}

	tool, err := p.tool(p.cfg.Tools.Decompiler)
	if err != nil {
		return r, r.fail(err)
	}

	files, err := ScanDir(folder, p.cfg.Decompile.InputExt)
	if err != nil {
		return r, r.fail(err)
	}

	inv := toolexec.Invocation{
		Tool:           tool,
		Args:           p.cfg.Decompile.Args,
		StdoutEncoding: p.cfg.Decompile.Encoding,
		StderrEncoding: p.cfg.Decompile.Encoding,
	}
	outExt := p.cfg.Decompile.OutputExt

	r.add(Dispatch(ctx, StageDecompile, files, func(ctx context.Context, path string) ItemResult {
		name := filepath.Base(path)
		call, err := p.invoke(ctx, inv, name, toolexec.Vars{
			toolexec.VarInput:  path,
			toolexec.VarOutDir: folder,
		}, "")
		if err != nil {
			return failed(name, err)
		}

		out := stemPath(folder, path, outExt)
		if err := os.WriteFile(out, []byte(call.Stdout), 0o644); err != nil {
			return failed(name, fmt.Errorf("failed to write %s: %w", out, err))
		}
		return succeeded(name, filepath.Base(out))
	}, p.obs))

	if err := ctx.Err(); err != nil {
		return r, r.fail(err)
	}
	return r, nil
}
