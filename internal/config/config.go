// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"modkit-cli/internal/cueutil"
	"modkit-cli/internal/issue"
	"modkit-cli/internal/textenc"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "modkit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "MODKIT"
	// ConfigDirEnv names a config directory that replaces the platform one,
	// for portable installs kept next to the game.
	ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

	schemaDefinition = "#Config"
)

// ErrConfigExists is returned by WriteDefault when the target exists and force is off.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the modkit configuration directory: $MODKIT_CONFIG_DIR when
// set, otherwise %APPDATA% on Windows, ~/Library/Application Support on macOS,
// and $XDG_CONFIG_HOME (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ResolvePath returns the config file Load would read, or "" when none exists and
// defaults apply. An explicit ConfigFilePath is returned even if it is missing.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		filepath.Join(opts.WorkDir, ConfigFileName+"."+ConfigFileExt),
	}
	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the config and the file it came from.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if !fileExists(resolvedPath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'modkit config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", resolvedPath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'modkit config init --force' to regenerate a default file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Encodings and argument templates are checked here; CUE only sees strings.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Encodings must be one of: " + strings.Join(textenc.SupportedNames(), ", ")).
			WithSuggestion("Quote template variables (\"$INPUT\") so paths with spaces stay one argument").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every key so environment overrides and Unmarshal see it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tools.decompiler", d.Tools.Decompiler)
	v.SetDefault("tools.container", d.Tools.Container)
	v.SetDefault("tools.texture", d.Tools.Texture)

	v.SetDefault("dirs.input_pack", d.Dirs.InputPack)
	v.SetDefault("dirs.extracted_rtex", d.Dirs.ExtractedRTex)
	v.SetDefault("dirs.extracted_dds", d.Dirs.ExtractedDDS)
	v.SetDefault("dirs.output_png", d.Dirs.OutputPNG)
	v.SetDefault("dirs.input_png", d.Dirs.InputPNG)
	v.SetDefault("dirs.reconstructed_dds", d.Dirs.ReconstructedDDS)
	v.SetDefault("dirs.output_pack", d.Dirs.OutputPack)

	v.SetDefault("decompile.input_ext", d.Decompile.InputExt)
	v.SetDefault("decompile.output_ext", d.Decompile.OutputExt)
	v.SetDefault("decompile.encoding", d.Decompile.Encoding)
	v.SetDefault("decompile.args", d.Decompile.Args)

	v.SetDefault("texture.pack_ext", d.Texture.PackExt)
	v.SetDefault("texture.resource_ext", d.Texture.ResourceExt)
	v.SetDefault("texture.modded_prefix", d.Texture.ModdedPrefix)
	v.SetDefault("texture.srgb_flag", d.Texture.SRGBFlag)
	v.SetDefault("texture.output_encoding", d.Texture.OutputEncoding)
	v.SetDefault("texture.args.unpack", d.Texture.Args.Unpack)
	v.SetDefault("texture.args.to_dds", d.Texture.Args.ToDDS)
	v.SetDefault("texture.args.info", d.Texture.Args.Info)
	v.SetDefault("texture.args.to_png", d.Texture.Args.ToPNG)
	v.SetDefault("texture.args.from_png", d.Texture.Args.FromPNG)
	v.SetDefault("texture.args.patch", d.Texture.Args.Patch)

	v.SetDefault("metadata.mode", d.Metadata.Mode)
	v.SetDefault("metadata.key", d.Metadata.Key)
	v.SetDefault("metadata.suffix", d.Metadata.Suffix)

	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against the #Config schema and merges
// its contents into Viper. Fields the file omits keep their defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, schemaDefinition, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to config.cue in dir, or in the
// platform config directory when dir is empty. It returns the written path.
func WriteDefault(dir string, force bool) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if !force && fileExists(cfgPath) {
		return cfgPath, fmt.Errorf("%w: %s", ErrConfigExists, cfgPath)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modkit configuration file\n")
	sb.WriteString("// Every field is optional; delete a line to fall back to its default.\n\n")

	sb.WriteString("tools: {\n")
	fmt.Fprintf(&sb, "\tdecompiler: %q\n", cfg.Tools.Decompiler)
	fmt.Fprintf(&sb, "\tcontainer:  %q\n", cfg.Tools.Container)
	fmt.Fprintf(&sb, "\ttexture:    %q\n", cfg.Tools.Texture)
	sb.WriteString("}\n")

	sb.WriteString("\ndirs: {\n")
	fmt.Fprintf(&sb, "\tinput_pack:        %q\n", cfg.Dirs.InputPack)
	fmt.Fprintf(&sb, "\textracted_rtex:    %q\n", cfg.Dirs.ExtractedRTex)
	fmt.Fprintf(&sb, "\textracted_dds:     %q\n", cfg.Dirs.ExtractedDDS)
	fmt.Fprintf(&sb, "\toutput_png:        %q\n", cfg.Dirs.OutputPNG)
	fmt.Fprintf(&sb, "\tinput_png:         %q\n", cfg.Dirs.InputPNG)
	fmt.Fprintf(&sb, "\treconstructed_dds: %q\n", cfg.Dirs.ReconstructedDDS)
	fmt.Fprintf(&sb, "\toutput_pack:       %q\n", cfg.Dirs.OutputPack)
	sb.WriteString("}\n")

	sb.WriteString("\ndecompile: {\n")
	fmt.Fprintf(&sb, "\tinput_ext:  %q\n", cfg.Decompile.InputExt)
	fmt.Fprintf(&sb, "\toutput_ext: %q\n", cfg.Decompile.OutputExt)
	fmt.Fprintf(&sb, "\tencoding:   %q\n", cfg.Decompile.Encoding)
	fmt.Fprintf(&sb, "\targs:       %q\n", cfg.Decompile.Args)
	sb.WriteString("}\n")

	sb.WriteString("\ntexture: {\n")
	fmt.Fprintf(&sb, "\tpack_ext:        %q\n", cfg.Texture.PackExt)
	fmt.Fprintf(&sb, "\tresource_ext:    %q\n", cfg.Texture.ResourceExt)
	fmt.Fprintf(&sb, "\tmodded_prefix:   %q\n", cfg.Texture.ModdedPrefix)
	fmt.Fprintf(&sb, "\tsrgb_flag:       %q\n", cfg.Texture.SRGBFlag)
	fmt.Fprintf(&sb, "\toutput_encoding: %q\n", cfg.Texture.OutputEncoding)
	sb.WriteString("\targs: {\n")
	fmt.Fprintf(&sb, "\t\tunpack:   %q\n", cfg.Texture.Args.Unpack)
	fmt.Fprintf(&sb, "\t\tto_dds:   %q\n", cfg.Texture.Args.ToDDS)
	fmt.Fprintf(&sb, "\t\tinfo:     %q\n", cfg.Texture.Args.Info)
	fmt.Fprintf(&sb, "\t\tto_png:   %q\n", cfg.Texture.Args.ToPNG)
	fmt.Fprintf(&sb, "\t\tfrom_png: %q\n", cfg.Texture.Args.FromPNG)
	fmt.Fprintf(&sb, "\t\tpatch:    %q\n", cfg.Texture.Args.Patch)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\nmetadata: {\n")
	fmt.Fprintf(&sb, "\tmode:   %q\n", cfg.Metadata.Mode)
	fmt.Fprintf(&sb, "\tkey:    %q\n", cfg.Metadata.Key)
	fmt.Fprintf(&sb, "\tsuffix: %q\n", cfg.Metadata.Suffix)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
