// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the modkit command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "modkit",
		Short: "Asset modding toolkit: decompile scripts, unpack and repack textures",
		Long: TitleStyle.Render("modkit") + SubtitleStyle.Render(" - asset modding toolkit") + `

modkit drives the external tools a modder needs to get at a game's assets
and put edited ones back: a script decompiler, the pack container tool and
the texture converter.

` + SubtitleStyle.Render("Workflow:") + `
  1. Put the game's pack in input_pack/
  2. modkit unpack        Extract every texture to output_png/
  3. Edit images and copy them to input_png/
  4. modkit repack        Write output_pack/modded_<pack>

` + SubtitleStyle.Render("Examples:") + `
  modkit decompile scripts/     Decompile every .lub in scripts/
  modkit fix-text "âeâXâg"       Repair Shift-JIS text shown as CP437
  modkit repack --watch         Repack whenever input_png changes
  modkit config init            Write a config file with the defaults`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.installLogger(app.flags.verbose)
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is <config dir>/modkit/config.cue, then ./config.cue)")
	flags.StringVarP(&app.flags.workDir, "workdir", "C", "", "directory the staging folders live in (default is the current directory)")

	root.AddCommand(
		newDecompileCommand(app),
		newUnpackCommand(app),
		newRepackCommand(app),
		newFixTextCommand(app),
		newFormatCommand(app),
		newConfigCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs modkit with os.Args and exits with the command's status.
// It is called by main.main.
func Execute() {
	os.Exit(Run(context.Background(), Dependencies{}))
}

// Run builds an App from deps, runs the command line and returns the exit code.
func Run(ctx context.Context, deps Dependencies) int {
	app, err := NewApp(deps)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}
		return 1
	}
	return 0
}

// handleError prints errors fang receives, except ExitErrors that were
// already reported by the command.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
