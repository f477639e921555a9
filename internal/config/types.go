// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"modkit-cli/internal/platform"
	"modkit-cli/internal/textenc"
	"modkit-cli/internal/toolexec"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MetadataEmbedded stores format tags in a PNG text chunk.
	// Defined locally to avoid coupling config to texmeta; the pipeline
	// converts to texmeta.Mode at the boundary.
	MetadataEmbedded MetadataMode = "embedded"
	// MetadataSidecar stores format tags in a file beside the PNG.
	MetadataSidecar MetadataMode = "sidecar"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMetadataMode is returned when a MetadataMode value is not recognized.
	ErrInvalidMetadataMode = errors.New("invalid metadata mode")
	// ErrInvalidToolPath is returned when a ToolPath is empty or whitespace-only.
	ErrInvalidToolPath = errors.New("invalid tool path")
	// ErrInvalidDirName is returned when a DirName is empty or whitespace-only.
	ErrInvalidDirName = errors.New("invalid directory name")
	// ErrReservedDirName is returned when a DirName uses a Windows device name.
	ErrReservedDirName = errors.New("directory name reserved on Windows")
	// ErrInvalidExtension is returned when an Extension lacks its leading dot.
	ErrInvalidExtension = errors.New("invalid file extension")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// MetadataMode selects the single format-tag strategy used by every run.
	MetadataMode string

	// ToolPath is an executable name resolved through PATH, or a path to one.
	ToolPath string

	// DirName is a staging directory, relative to the work dir unless absolute.
	DirName string

	// Extension is a file extension including its leading dot, matched
	// case-insensitively.
	Extension string

	// InvalidValueError reports one field that failed validation. It wraps the
	// field type's sentinel error for errors.Is() compatibility.
	InvalidValueError struct {
		Field    string
		Value    string
		Sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Tools names the three external executables.
		Tools ToolsConfig `json:"tools" mapstructure:"tools"`
		// Dirs names the staging directories.
		Dirs DirsConfig `json:"dirs" mapstructure:"dirs"`
		// Decompile configures the bytecode decompile pipeline.
		Decompile DecompileConfig `json:"decompile" mapstructure:"decompile"`
		// Texture configures the pack and texture pipelines.
		Texture TextureConfig `json:"texture" mapstructure:"texture"`
		// Metadata configures where format tags are stored.
		Metadata MetadataConfig `json:"metadata" mapstructure:"metadata"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ToolsConfig names the external executables.
	ToolsConfig struct {
		// Decompiler turns one bytecode file into source on stdout.
		Decompiler ToolPath `json:"decompiler" mapstructure:"decompiler"`
		// Container unpacks packs, converts resources to DDS and patches packs.
		Container ToolPath `json:"container" mapstructure:"container"`
		// Texture converts between DDS and PNG and reports DDS info.
		Texture ToolPath `json:"texture" mapstructure:"texture"`
	}

	// DirsConfig names the staging directories of both texture pipelines.
	DirsConfig struct {
		InputPack        DirName `json:"input_pack" mapstructure:"input_pack"`
		ExtractedRTex    DirName `json:"extracted_rtex" mapstructure:"extracted_rtex"`
		ExtractedDDS     DirName `json:"extracted_dds" mapstructure:"extracted_dds"`
		OutputPNG        DirName `json:"output_png" mapstructure:"output_png"`
		InputPNG         DirName `json:"input_png" mapstructure:"input_png"`
		ReconstructedDDS DirName `json:"reconstructed_dds" mapstructure:"reconstructed_dds"`
		OutputPack       DirName `json:"output_pack" mapstructure:"output_pack"`
	}

	// DecompileConfig configures the decompile pipeline.
	DecompileConfig struct {
		// InputExt selects bytecode files.
		InputExt Extension `json:"input_ext" mapstructure:"input_ext"`
		// OutputExt replaces InputExt on the written source file.
		OutputExt Extension `json:"output_ext" mapstructure:"output_ext"`
		// Encoding decodes the decompiler's stdout.
		Encoding string `json:"encoding" mapstructure:"encoding"`
		// Args is the decompiler argument template.
		Args toolexec.Template `json:"args" mapstructure:"args"`
	}

	// TextureConfig configures the forward and reverse texture pipelines.
	TextureConfig struct {
		// PackExt selects pack files in the input pack directory.
		PackExt Extension `json:"pack_ext" mapstructure:"pack_ext"`
		// ResourceExt selects extracted resources to convert to DDS.
		ResourceExt Extension `json:"resource_ext" mapstructure:"resource_ext"`
		// ModdedPrefix is prepended to the original pack name for the patched pack.
		ModdedPrefix string `json:"modded_prefix" mapstructure:"modded_prefix"`
		// SRGBFlag is passed as $SRGB when a tag names an sRGB format.
		SRGBFlag string `json:"srgb_flag" mapstructure:"srgb_flag"`
		// OutputEncoding decodes the texture and container tools' output.
		OutputEncoding string `json:"output_encoding" mapstructure:"output_encoding"`
		// Args are the per-step argument templates.
		Args TextureArgs `json:"args" mapstructure:"args"`
	}

	// TextureArgs holds one argument template per tool step.
	TextureArgs struct {
		Unpack  toolexec.Template `json:"unpack" mapstructure:"unpack"`
		ToDDS   toolexec.Template `json:"to_dds" mapstructure:"to_dds"`
		Info    toolexec.Template `json:"info" mapstructure:"info"`
		ToPNG   toolexec.Template `json:"to_png" mapstructure:"to_png"`
		FromPNG toolexec.Template `json:"from_png" mapstructure:"from_png"`
		Patch   toolexec.Template `json:"patch" mapstructure:"patch"`
	}

	// MetadataConfig configures the format tag store.
	MetadataConfig struct {
		// Mode picks exactly one strategy.
		Mode MetadataMode `json:"mode" mapstructure:"mode"`
		// Key is the PNG text chunk keyword in embedded mode.
		Key string `json:"key" mapstructure:"key"`
		// Suffix replaces the image extension in sidecar mode.
		Suffix string `json:"suffix" mapstructure:"suffix"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidValueError.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %v %q", e.Field, e.Sentinel, e.Value)
}

// Unwrap returns the field's sentinel error for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return e.Sentinel }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "ui.color_scheme", Value: string(cs), Sentinel: ErrInvalidColorScheme}}
	}
}

// String returns the string representation of the MetadataMode.
func (m MetadataMode) String() string { return string(m) }

// IsValid returns whether the MetadataMode is embedded or sidecar.
func (m MetadataMode) IsValid() (bool, []error) {
	switch m {
	case MetadataEmbedded, MetadataSidecar:
		return true, nil
	default:
		return false, []error{&InvalidValueError{Field: "metadata.mode", Value: string(m), Sentinel: ErrInvalidMetadataMode}}
	}
}

// String returns the string representation of the ToolPath.
func (p ToolPath) String() string { return string(p) }

func (p ToolPath) check(field string) []error {
	if strings.TrimSpace(string(p)) == "" {
		return []error{&InvalidValueError{Field: field, Value: string(p), Sentinel: ErrInvalidToolPath}}
	}
	return nil
}

// String returns the string representation of the DirName.
func (d DirName) String() string { return string(d) }

func (d DirName) check(field string) []error {
	if strings.TrimSpace(string(d)) == "" {
		return []error{&InvalidValueError{Field: field, Value: string(d), Sentinel: ErrInvalidDirName}}
	}
	if elem, ok := platform.ReservedElement(string(d)); ok {
		return []error{&InvalidValueError{Field: field, Value: elem, Sentinel: ErrReservedDirName}}
	}
	return nil
}

// String returns the string representation of the Extension.
func (x Extension) String() string { return string(x) }

// Matches reports whether name ends in x, ignoring case. A name that is only the
// extension has no stem and does not match.
func (x Extension) Matches(name string) bool {
	return len(name) > len(x) && strings.EqualFold(name[len(name)-len(x):], string(x))
}

func (x Extension) check(field string) []error {
	if len(x) < 2 || x[0] != '.' || strings.ContainsAny(string(x), `/\ `) {
		return []error{&InvalidValueError{Field: field, Value: string(x), Sentinel: ErrInvalidExtension}}
	}
	return nil
}

// IsValid returns whether the Config has valid fields. It checks what the CUE
// schema cannot: encodings resolve, and argument templates parse.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	errs = append(errs, c.Tools.Decompiler.check("tools.decompiler")...)
	errs = append(errs, c.Tools.Container.check("tools.container")...)
	errs = append(errs, c.Tools.Texture.check("tools.texture")...)

	for field, d := range c.Dirs.byField() {
		errs = append(errs, d.check("dirs."+field)...)
	}

	errs = append(errs, c.Decompile.InputExt.check("decompile.input_ext")...)
	errs = append(errs, c.Decompile.OutputExt.check("decompile.output_ext")...)
	errs = append(errs, c.Texture.PackExt.check("texture.pack_ext")...)
	errs = append(errs, c.Texture.ResourceExt.check("texture.resource_ext")...)

	for field, enc := range map[string]string{
		"decompile.encoding":      c.Decompile.Encoding,
		"texture.output_encoding": c.Texture.OutputEncoding,
	} {
		if _, err := textenc.Lookup(enc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	for field, tmpl := range c.templates() {
		if err := tmpl.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if valid, fieldErrs := c.Metadata.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (d DirsConfig) byField() map[string]DirName {
	return map[string]DirName{
		"input_pack":        d.InputPack,
		"extracted_rtex":    d.ExtractedRTex,
		"extracted_dds":     d.ExtractedDDS,
		"output_png":        d.OutputPNG,
		"input_png":         d.InputPNG,
		"reconstructed_dds": d.ReconstructedDDS,
		"output_pack":       d.OutputPack,
	}
}

func (c Config) templates() map[string]toolexec.Template {
	return map[string]toolexec.Template{
		"decompile.args":        c.Decompile.Args,
		"texture.args.unpack":   c.Texture.Args.Unpack,
		"texture.args.to_dds":   c.Texture.Args.ToDDS,
		"texture.args.info":     c.Texture.Args.Info,
		"texture.args.to_png":   c.Texture.Args.ToPNG,
		"texture.args.from_png": c.Texture.Args.FromPNG,
		"texture.args.patch":    c.Texture.Args.Patch,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			Decompiler: "luadec",
			Container:  "UnsealedVerses",
			Texture:    "texconv",
		},
		Dirs: DirsConfig{
			InputPack:        "input_pack",
			ExtractedRTex:    "extracted_rtex",
			ExtractedDDS:     "extracted_dds",
			OutputPNG:        "output_png",
			InputPNG:         "input_png",
			ReconstructedDDS: "reconstructed_dds",
			OutputPack:       "output_pack",
		},
		Decompile: DecompileConfig{
			InputExt:  ".lub",
			OutputExt: ".lua",
			Encoding:  string(textenc.CP932),
			Args:      `"$INPUT"`,
		},
		Texture: TextureConfig{
			PackExt:        ".xap",
			ResourceExt:    ".rtex",
			ModdedPrefix:   "modded_",
			SRGBFlag:       "-srgb",
			OutputEncoding: string(textenc.UTF8),
			Args: TextureArgs{
				Unpack:  `unpack "$INPUT" "$OUTDIR"`,
				ToDDS:   `rtex-to-dds "$OUTPUT" "$INPUT"`,
				Info:    `-info "$INPUT"`,
				ToPNG:   `-ft png -o "$OUTDIR" -y "$INPUT"`,
				FromPNG: `-f "$FORMAT" $SRGB -o "$OUTDIR" -y "$INPUT"`,
				Patch:   `pack-patch "$OUTPUT" "$INPUT" "$INDIR"`,
			},
		},
		Metadata: MetadataConfig{
			Mode:   MetadataEmbedded,
			Key:    "DDSFormat",
			Suffix: ".format",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
