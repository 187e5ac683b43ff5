// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the opencoder REPL.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Banner and picker selection
  - Cyan - Prompt and titles
  - Emerald - Success lines
  - Rose - Errors
  - Amber - Warnings
  - TextMuted - Echoed input

# Styles (styles.go)

Ready-made lipgloss styles (Prompt, Echo, Error, ...) and the RenderError,
RenderWarning and RenderSuccess helpers, which prefix a text indicator so
status survives on terminals without color:

	fmt.Fprintln(w, styles.RenderError(err.Error()))
*/
package styles
