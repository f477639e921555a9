// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"modkit-cli/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `modkit config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modkit configuration",
		Long: `Manage modkit configuration.

modkit reads config.cue from, in order:
  - the --config flag
  - the platform config directory (Linux: ~/.config/modkit,
    macOS: ~/Library/Application Support/modkit, Windows: %APPDATA%\modkit)
  - the work directory

Without a file, built-in defaults apply. MODKIT_* environment variables
override single values, e.g. MODKIT_TOOLS_TEXTURE=/opt/texconv.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write config.cue with the default values",
		Long: `Write config.cue with the default values to [dir], or to the platform
config directory when no dir is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return app.initConfig(dir, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which configuration file is used",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err, glamourStyle(nil))
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}

	key := func(s string) string { return PathStyle.Render(s) }
	val := func(v any) string { return SuccessStyle.Render(fmt.Sprint(v)) }
	section := func(name string, rows ...[2]any) {
		fmt.Fprintf(a.stdout, "\n%s:\n", key(name))
		for _, r := range rows {
			fmt.Fprintf(a.stdout, "  %s: %s\n", r[0], val(r[1]))
		}
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)
	path, _ := config.ResolvePath(a.loadOptions())
	if path == "" {
		path = SubtitleStyle.Render("(using defaults)")
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", key("Config file"), path)

	section("tools",
		[2]any{"decompiler", cfg.Tools.Decompiler},
		[2]any{"container", cfg.Tools.Container},
		[2]any{"texture", cfg.Tools.Texture},
	)
	section("dirs",
		[2]any{"input_pack", cfg.Dirs.InputPack},
		[2]any{"extracted_rtex", cfg.Dirs.ExtractedRTex},
		[2]any{"extracted_dds", cfg.Dirs.ExtractedDDS},
		[2]any{"output_png", cfg.Dirs.OutputPNG},
		[2]any{"input_png", cfg.Dirs.InputPNG},
		[2]any{"reconstructed_dds", cfg.Dirs.ReconstructedDDS},
		[2]any{"output_pack", cfg.Dirs.OutputPack},
	)
	section("decompile",
		[2]any{"input_ext", cfg.Decompile.InputExt},
		[2]any{"output_ext", cfg.Decompile.OutputExt},
		[2]any{"encoding", cfg.Decompile.Encoding},
		[2]any{"args", cfg.Decompile.Args},
	)
	section("texture",
		[2]any{"pack_ext", cfg.Texture.PackExt},
		[2]any{"resource_ext", cfg.Texture.ResourceExt},
		[2]any{"modded_prefix", cfg.Texture.ModdedPrefix},
		[2]any{"srgb_flag", cfg.Texture.SRGBFlag},
		[2]any{"output_encoding", cfg.Texture.OutputEncoding},
	)
	section("metadata",
		[2]any{"mode", cfg.Metadata.Mode},
		[2]any{"key", cfg.Metadata.Key},
		[2]any{"suffix", cfg.Metadata.Suffix},
	)
	section("ui",
		[2]any{"color_scheme", cfg.UI.ColorScheme},
		[2]any{"verbose", cfg.UI.Verbose},
	)
	return nil
}

func (a *App) initConfig(dir string, force bool) error {
	path, err := config.WriteDefault(dir, force)
	if errors.Is(err, config.ErrConfigExists) {
		fmt.Fprintf(a.stdout, "%s %s already exists (use --force to overwrite)\n", markSkipped, path)
		return nil
	}
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", markSucceeded, PathStyle.Render(path))
	return nil
}

func (a *App) showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Search order: %s\n", strings.Join([]string{
		filepath.Join(cfgDir, "config.cue"),
		filepath.Join(a.flags.workDir, "config.cue"),
	}, ", "))

	path, err := config.ResolvePath(a.loadOptions())
	if err != nil {
		return a.fail(err, glamourStyle(nil))
	}
	if path == "" {
		fmt.Fprintln(a.stdout, "Config file: (none, using defaults)")
		return nil
	}
	fmt.Fprintf(a.stdout, "Config file: %s\n", path)
	return nil
}
