// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/opencoder/internal/model"
)

// Completion is one tab-completion candidate.
type Completion struct {
	Value       string
	Description string
	Score       int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and their first argument.
type Completer struct {
	registry *Registry

	// ModelsFn returns model ids for "/set model <tab>". Optional.
	ModelsFn func() []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the given input.
func (c *Completer) Complete(input string) []Completion {
	if !IsCommand(input) {
		return nil
	}

	parts := strings.Fields(input)
	trailingSpace := strings.HasSuffix(input, " ")

	// Still typing the command name?
	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	switch {
	case len(parts) == 1:
		return c.completeFirstArg(cmd, "")
	case len(parts) == 2 && !trailingSpace:
		return c.completeFirstArg(cmd, parts[1])
	case cmd.Name == "/set" && parts[1] == model.KeyModel && c.ModelsFn != nil:
		partial := ""
		if len(parts) == 3 && !trailingSpace {
			partial = parts[2]
		} else if len(parts) > 2 {
			return nil
		}
		return completeFromList(c.ModelsFn(), partial)
	}
	return nil
}

// Lines adapts Complete to line-editor completers, which want whole
// replacement lines.
func (c *Completer) Lines(line string) []string {
	completions := c.Complete(line)
	if len(completions) == 0 {
		return nil
	}

	// Keep everything up to the word being completed
	head := ""
	if i := strings.LastIndex(line, " "); i >= 0 {
		head = line[:i+1]
	}

	out := make([]string, 0, len(completions))
	for _, comp := range completions {
		out = append(out, head+comp.Value)
	}
	return out
}

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion

	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(strings.ToLower(cmd.Name), partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(strings.ToLower(alias), partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10, // aliases rank below names
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// completeFirstArg completes the command's first declared argument.
func (c *Completer) completeFirstArg(cmd *Command, partial string) []Completion {
	if len(cmd.Args) == 0 {
		return nil
	}
	return completeFromList(cmd.Args[0].Values, partial)
}

// completeFromList returns completions from a list of strings.
func completeFromList(values []string, partial string) []Completion {
	var completions []Completion

	partial = strings.ToLower(partial)

	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), partial) {
			completions = append(completions, Completion{
				Value: value,
				Score: calculateScore(value, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100

	// Exact match
	if value == partial {
		return score + 100
	}

	// Prefix match bonus
	if strings.HasPrefix(value, partial) {
		score += 50
		// Bonus for shorter completions
		score += 20 - len(value)
	}

	// Length penalty
	score -= len(value) / 2

	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
