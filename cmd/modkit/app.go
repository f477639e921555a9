// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"modkit-cli/internal/config"
	"modkit-cli/internal/pipeline"
	"modkit-cli/internal/toolexec"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and builds its
	// pipeline through it.
	App struct {
		Config ConfigProvider
		Runner toolexec.Runner
		Locate func(tool string) (string, error)

		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
		flags  rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		// Runner defaults to an ExecRunner rooted at --workdir.
		Runner toolexec.Runner
		// Locate defaults to a PATH lookup.
		Locate func(tool string) (string, error)
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlags are the persistent flags shared by every command.
	rootFlags struct {
		verbose    bool
		configPath string
		workDir    string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		Runner: deps.Runner,
		Locate: deps.Locate,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		logger: newLogger(deps.Stderr),
	}, nil
}

// newLogger builds the charmbracelet logger every slog call site writes through.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "modkit",
		Level:  log.WarnLevel,
	})
}

// installLogger makes the App's logger the slog default at the given verbosity.
func (a *App) installLogger(verbose bool) {
	if verbose {
		a.logger.SetLevel(log.DebugLevel)
	} else {
		a.logger.SetLevel(log.WarnLevel)
	}
	slog.SetDefault(slog.New(a.logger))
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        a.flags.workDir,
	}
}

// loadConfig loads configuration for a command and applies ui.verbose. A broken
// config file is fatal: guessing paths and tools from defaults would act on the
// wrong folders.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !a.flags.verbose {
		a.flags.verbose = true
		a.installLogger(true)
	}
	return cfg, nil
}

// newPipeline builds a pipeline rooted at --workdir that reports progress to obs.
// In verbose mode tool stderr is echoed as the tools run.
func (a *App) newPipeline(cfg *config.Config, clean bool, obs pipeline.Observer) (*pipeline.Pipeline, error) {
	var echo io.Writer
	if a.flags.verbose {
		echo = a.stderr
	}
	return pipeline.New(pipeline.Options{
		Config:   cfg,
		Runner:   a.Runner,
		Echo:     echo,
		Locate:   a.Locate,
		WorkDir:  a.flags.workDir,
		Clean:    clean,
		Observer: obs,
	})
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return string(config.ColorSchemeAuto)
	}
	return string(cfg.UI.ColorScheme)
}
