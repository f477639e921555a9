// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every status line and summary.
const (
	// ColorPrimary is purple, for titles and stage headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, for details and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, for skipped items and warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, for paths and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for the pipeline title.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StageStyle is for stage headers.
	StageStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text and item details.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for succeeded items.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failed items and fatal errors.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for skipped items and warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// PathStyle is for files, folders and commands.
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

// Status marks printed before each item.
var (
	markSucceeded = SuccessStyle.Render("✓")
	markFailed    = ErrorStyle.Render("✗")
	markSkipped   = WarningStyle.Render("-")
)
