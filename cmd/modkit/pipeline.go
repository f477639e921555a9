// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"modkit-cli/internal/config"
	"modkit-cli/internal/pipeline"
	"modkit-cli/internal/watch"

	"github.com/spf13/cobra"
)

func newDecompileCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "decompile <folder>",
		Short: "Decompile every script in a folder to UTF-8 source",
		Long: `Run the decompiler on every compiled script (.lub by default) in <folder>
and write the decoded listing next to it (.lua). The decompiler's output is
read as Shift-JIS and written as UTF-8.

A script that fails to decompile is reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPipeline(cmd.Context(), false, func(p *pipeline.Pipeline, ctx context.Context) (*pipeline.Report, error) {
				return p.Decompile(ctx, args[0])
			})
		},
	}
}

func newUnpackCommand(app *App) *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Extract every texture in the game pack to PNG",
		Long: `Unpack the first pack in input_pack/, convert each extracted resource to
DDS and each DDS to PNG in output_png/. Every PNG records the texture's
native format so repack can restore it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runPipeline(cmd.Context(), clean, (*pipeline.Pipeline).Unpack)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "empty the intermediate folders before unpacking")
	return cmd
}

func newRepackCommand(app *App) *cobra.Command {
	var (
		clean     bool
		watchMode bool
	)
	cmd := &cobra.Command{
		Use:   "repack",
		Short: "Convert edited PNGs back and patch them into the game pack",
		Long: `Convert every PNG in input_png/ back to DDS in its recorded format and
patch the results into a copy of the original pack, written to
output_pack/modded_<pack>.

Images without a recorded format are skipped. If no image converts, no pack
is written and modkit exits with status 1.

With --watch, modkit keeps running and repacks whenever an image or format
file in input_png/ changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watchMode {
				return app.watchRepack(cmd.Context(), clean)
			}
			return app.runPipeline(cmd.Context(), clean, (*pipeline.Pipeline).Repack)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "empty reconstructed_dds before converting")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "repack again whenever input_png changes")
	return cmd
}

func newFormatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "format <dds>",
		Short: "Print the texture format the texture tool reports for a DDS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err, glamourStyle(nil))
			}
			p, err := app.newPipeline(cfg, false, nil)
			if err != nil {
				return app.fail(err, glamourStyle(cfg))
			}
			tag, err := p.Format(cmd.Context(), "", args[0])
			if err != nil {
				return app.fail(err, glamourStyle(cfg))
			}
			fmt.Fprintln(app.stdout, tag)
			return nil
		},
	}
}

// runFunc has the shape of a *pipeline.Pipeline method expression.
type runFunc func(*pipeline.Pipeline, context.Context) (*pipeline.Report, error)

// runPipeline loads config, runs one pipeline with live status lines and
// prints its summary. Only fatal errors produce a non-zero exit.
func (a *App) runPipeline(ctx context.Context, clean bool, run runFunc) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	p, err := a.newPipeline(cfg, clean, newStatusPrinter(a.stdout, a.flags.verbose))
	if err != nil {
		return a.fail(err, glamourStyle(cfg))
	}

	report, err := run(p, ctx)
	renderSummary(a.stdout, report)
	if err != nil {
		return a.fail(err, glamourStyle(cfg))
	}
	return nil
}

// watchRepack runs the reverse pipeline once, then again after every change
// in input_png until interrupted.
func (a *App) watchRepack(ctx context.Context, clean bool) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	p, err := a.newPipeline(cfg, clean, newStatusPrinter(a.stdout, a.flags.verbose))
	if err != nil {
		return a.fail(err, glamourStyle(cfg))
	}

	repack := func(ctx context.Context) error {
		report, err := p.Repack(ctx)
		renderSummary(a.stdout, report)
		if err != nil {
			renderServiceError(a.stderr, newServiceError(err, classifyError(err)), a.flags.verbose, glamourStyle(cfg))
		}
		return err
	}

	// An empty input folder is expected while the modder is still copying
	// files in; anything else is a setup problem watching cannot fix.
	if err := repack(ctx); err != nil && !errors.Is(err, pipeline.ErrNothingToPatch) {
		return &ExitError{Code: 1}
	}

	w, err := watch.New(watch.Config{
		Dir:      p.Dirs()["input_png"],
		Patterns: watchPatterns(cfg),
		OnChange: func(ctx context.Context, changed []string) error {
			slog.Info("input changed", "files", changed)
			fmt.Fprintf(a.stdout, "\n%s %d file(s) changed\n", TitleStyle.Render("↻"), len(changed))
			_ = repack(ctx) // already rendered
			return nil
		},
	})
	if err != nil {
		return a.fail(err, glamourStyle(cfg))
	}
	fmt.Fprintf(a.stdout, "\n%s %s %s\n", SubtitleStyle.Render("Watching"), PathStyle.Render(w.Dir()), SubtitleStyle.Render("(Ctrl+C to stop)"))
	if err := w.Run(ctx); err != nil {
		return a.fail(err, glamourStyle(cfg))
	}
	return nil
}

// watchPatterns selects images and, in sidecar mode, their format files.
func watchPatterns(cfg *config.Config) []string {
	exts := []string{".png"}
	if cfg.Metadata.Mode == config.MetadataSidecar {
		exts = append(exts, cfg.Metadata.Suffix)
	}
	return watch.ExtensionPatterns(exts...)
}
