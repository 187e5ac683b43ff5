// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Prompt is the REPL prompt marker
	Prompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Banner renders the startup logo
	Banner = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	// Welcome renders the startup rules
	Welcome = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Echo renders the line the user just typed
	Echo = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Success marks completed operations
	Success = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	// Error marks failures
	Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	// Warning marks cautions
	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	// Muted renders secondary information
	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Selected highlights the current picker row
	Selected = lipgloss.NewStyle().
			Foreground(Purple).
			Background(SelectionBg).
			Bold(true)

	// Title renders picker titles
	Title = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		MarginBottom(1)
)

// RenderError renders an error line with its indicator.
func RenderError(message string) string {
	return Error.Render(StatusIndicators.Error) + " " + message
}

// RenderWarning renders a warning line with its indicator.
func RenderWarning(message string) string {
	return Warning.Render(StatusIndicators.Warning + " " + message)
}

// RenderSuccess renders a success line with its indicator.
func RenderSuccess(message string) string {
	return Success.Render(StatusIndicators.Success) + " " + message
}
