// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders everything the REPL prints: banner, echoed input,
// command output, streamed replies, errors, the busy indicator and the
// interactive model picker.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/opencoder/internal/ui/styles"
)

// DefaultWrapWidth is the markdown wrap width when the terminal width is
// unknown.
const DefaultWrapWidth = 80

const banner = `  ___                    ____          _
 / _ \ _ __   ___ _ __  / ___|___   __| | ___ _ __
| | | | '_ \ / _ \ '_ \| |   / _ \ / _  |/ _ \ '__|
| |_| | |_) |  __/ | | | |__| (_) | (_| |  __/ |
 \___/| .__/ \___|_| |_|\____\___/ \__,_|\___|_|
      |_|`

var welcomeLines = []string{
	"We trust you have knowledge of language models.",
	"It usually boils down to three things:",
	"",
	"  #1) Respect the privacy of others.",
	"  #2) Language models are never right.",
	"  #3) Non-coding means great responsibility.",
}

// =============================================================================
// OUTPUT HANDLER
// =============================================================================

// Output writes REPL output to one writer. When interactive it may move the
// cursor and renders markdown; otherwise it writes plain text only.
type Output struct {
	w           io.Writer
	term        *termenv.Output
	interactive bool
	renderer    *glamour.TermRenderer
}

// NewOutput creates an output handler. width is the markdown wrap width;
// zero or less uses DefaultWrapWidth.
func NewOutput(w io.Writer, interactive bool, width int) *Output {
	o := &Output{
		w:           w,
		term:        termenv.NewOutput(w),
		interactive: interactive,
	}

	if interactive {
		if width <= 0 {
			width = DefaultWrapWidth
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			o.renderer = r
		}
	}
	return o
}

// Banner prints the startup logo.
func (o *Output) Banner() {
	fmt.Fprintln(o.w, styles.Banner.Render(banner))
	fmt.Fprintln(o.w)
}

// Welcome prints the startup rules.
func (o *Output) Welcome() {
	for _, line := range welcomeLines {
		fmt.Fprintln(o.w, styles.Welcome.Render(line))
	}
	fmt.Fprintln(o.w)
}

// Echo replaces the prompt line with a dimmed copy of what was typed.
func (o *Output) Echo(line string) {
	if o.interactive {
		o.term.CursorPrevLine(1)
		o.term.ClearLine()
	}
	fmt.Fprintln(o.w, styles.Echo.Render("> "+line))
}

// CommandResponse prints a command's textual result.
func (o *Output) CommandResponse(text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(o.w, text)
}

// Markdown prints text through the markdown renderer when interactive.
func (o *Output) Markdown(text string) {
	fmt.Fprint(o.w, o.renderMarkdown(text))
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(o.w)
	}
}

// renderMarkdown returns the original content if rendering fails or the
// renderer is unavailable.
func (o *Output) renderMarkdown(content string) string {
	if o.renderer == nil {
		return content
	}
	rendered, err := o.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// Error prints err as a single line.
func (o *Output) Error(err error) {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	fmt.Fprintln(o.w, styles.RenderError(msg))
}

// Warning prints a warning line.
func (o *Output) Warning(msg string) {
	fmt.Fprintln(o.w, styles.RenderWarning(msg))
}

// Delta writes streamed text exactly as received.
func (o *Output) Delta(text string) {
	io.WriteString(o.w, text)
}

// EndStream terminates a streamed reply.
func (o *Output) EndStream() {
	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w)
}

// Reply prints a non-streamed completion: a status line naming the model,
// then the rendered message.
func (o *Output) Reply(model, message string) {
	fmt.Fprintln(o.w, styles.RenderSuccess("Response generated! - "+model))
	fmt.Fprintln(o.w)
	o.Markdown(message)
}
