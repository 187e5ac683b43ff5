// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opencoder/internal/session"
	"github.com/jeranaias/opencoder/internal/ui/styles"
)

// =============================================================================
// SELECTOR MODEL
// =============================================================================

// selectorModel is a single-choice list.
type selectorModel struct {
	title     string
	options   []string
	cursor    int
	chosen    int
	cancelled bool
}

func newSelectorModel(title string, options []string) selectorModel {
	return selectorModel{
		title:   title,
		options: options,
		chosen:  -1,
	}
}

// Init implements tea.Model.
func (m selectorModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.options) - 1
	case "enter", " ":
		m.chosen = m.cursor
		return m, tea.Quit
	case "esc", "q", "ctrl+c", "ctrl+d":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m selectorModel) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(m.title))
	sb.WriteString("\n")
	for i, opt := range m.options {
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("> " + opt))
		} else {
			sb.WriteString("  " + opt)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(styles.Muted.Render("up/down to move, enter to select, esc to cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// =============================================================================
// SELECTOR
// =============================================================================

// Selector runs the picker as a short-lived bubbletea program.
type Selector struct {
	in  io.Reader
	out io.Writer
}

// NewSelector creates a selector reading keys from in and drawing to out.
func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{in: in, out: out}
}

// Select shows options and returns the chosen one, or
// session.ErrSelectionCancelled when the user backs out.
func (s *Selector) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select from")
	}

	p := tea.NewProgram(newSelectorModel(title, options), tea.WithInput(s.in), tea.WithOutput(s.out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("selector failed: %w", err)
	}
	return selection(final)
}

// selection extracts the result from a finished model.
func selection(final tea.Model) (string, error) {
	m, ok := final.(selectorModel)
	if !ok || m.cancelled || m.chosen < 0 {
		return "", session.ErrSelectionCancelled
	}
	return m.options[m.chosen], nil
}
