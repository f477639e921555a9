// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the modkit command-line interface.
//
// Commands are built from an App, the composition root that owns the config
// provider, the tool runner and the output writers. Each handler loads the
// configuration, builds a pipeline and renders its report with lipgloss.
package cmd
