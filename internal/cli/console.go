// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/opencoder/internal/commands"
	"github.com/jeranaias/opencoder/internal/config"
	"github.com/jeranaias/opencoder/internal/session"
	"github.com/jeranaias/opencoder/internal/ui"
	"github.com/jeranaias/opencoder/internal/ui/styles"
)

// =============================================================================
// CONSOLE
// =============================================================================

// Console provides line editing, input history and the interactive prompts
// command handlers use. It implements LineReader and session.Prompter.
type Console struct {
	line        *liner.State
	historyFile string
	out         io.Writer
	selector    *ui.Selector
	interactive bool
}

// NewConsole creates a console on the process terminal. Typed lines are
// kept in the input history file, which is unrelated to the transcript.
func NewConsole(completer *commands.Completer, interactive bool) *Console {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if completer != nil {
		line.SetCompleter(completer.Lines)
	}

	historyFile, err := config.InputHistoryPath()
	if err != nil {
		historyFile = ""
	}

	c := &Console{
		line:        line,
		historyFile: historyFile,
		out:         os.Stdout,
		selector:    ui.NewSelector(os.Stdin, os.Stdout),
		interactive: interactive,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *Console) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// SaveHistory persists input history with owner-only permissions.
func (c *Console) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *Console) Close() error {
	c.SaveHistory()
	return c.line.Close()
}

// ReadLine reads one line. Ctrl+C at the prompt is reported as io.EOF so
// the runner treats it like Ctrl+D.
func (c *Console) ReadLine(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// =============================================================================
// PROMPTER
// =============================================================================

// Input asks for one free-text answer. Ctrl+C or Ctrl+D cancels.
func (c *Console) Input(label string) (string, error) {
	answer, err := c.line.Prompt(label + ": ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", session.ErrSelectionCancelled
		}
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Select shows the bubbletea picker on a terminal. Without one it lists
// the options and reads a number or name.
func (c *Console) Select(title string, options []string) (string, error) {
	if c.interactive {
		return c.selector.Select(title, options)
	}

	fmt.Fprintln(c.out, styles.Title.Render(title))
	for i, opt := range options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, opt)
	}
	answer, err := c.Input("Choice")
	if err != nil {
		return "", err
	}
	return matchOption(answer, options)
}

// matchOption resolves answer as a 1-based index or an exact option. An
// empty answer cancels.
func matchOption(answer string, options []string) (string, error) {
	if answer == "" {
		return "", session.ErrSelectionCancelled
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choice %d out of range 1-%d", n, len(options))
		}
		return options[n-1], nil
	}
	for _, opt := range options {
		if opt == answer {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown choice '%s'", answer)
}
