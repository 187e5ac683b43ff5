// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/session"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// HandlerFunc runs a command against the session state. args is the raw
// text after the command name.
type HandlerFunc func(ctx context.Context, st *session.State, args string) (string, error)

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/quit")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/set <key> [value]")
	Usage string

	// Args drives tab completion of the first argument
	Args []ArgDef

	// Handler is the function that executes the command
	Handler HandlerFunc

	// Markdown marks output that should go through the markdown renderer
	Markdown bool

	// Hidden commands don't appear in help
	Hidden bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Description explains the argument
	Description string

	// Values for enum arguments
	Values []string
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry maps command names to commands. It is not safe for concurrent
// use; the session runner is its only caller.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
		logger:   logger,
	}
}

// NewDefaultRegistry creates a registry holding the built-in commands.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	RegisterBuiltins(r)
	return r
}

// Register adds a command to the registry. A command registered under an
// existing name replaces the previous one, aliases included.
func (r *Registry) Register(cmd *Command) {
	if old, ok := r.commands[cmd.Name]; ok {
		for _, alias := range old.Aliases {
			if r.aliases[alias] == old {
				delete(r.aliases, alias)
			}
		}
		r.logger.Debug("command replaced", zap.String("command", cmd.Name))
	}
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})
	return cmds
}

// Execute runs the command called name with args. Handler results are
// returned unchanged; an unregistered name yields *UnknownCommandError.
func (r *Registry) Execute(ctx context.Context, name, args string, st *session.State) (string, error) {
	cmd := r.Get(name)
	if cmd == nil {
		r.logger.Info("unknown command", zap.String("command", name))
		return "", &UnknownCommandError{Name: name}
	}

	r.logger.Debug("dispatching command", zap.String("command", cmd.Name), zap.Int("args_len", len(args)))
	out, err := cmd.Handler(ctx, st, args)
	if err != nil {
		r.logger.Info("command failed", zap.String("command", cmd.Name), zap.Error(err))
	}
	return out, err
}
