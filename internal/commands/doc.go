// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the REPL.
//
// This package handles parsing and executing slash commands typed at the
// prompt, plus tab completion for command names and /set keys.
//
// # Key Types
//
//   - Registry: Name to command map; the last registration of a name wins
//   - Command: Name, usage text and handler
//   - HandlerFunc: Runs against the borrowed *session.State
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /exit: End the process (returns ErrExit)
//   - /set: Change the model or a sampling parameter
//   - /help: Show available commands
//   - /settings, /history, /models: Read-only views
//
// # Usage
//
//	reg := commands.NewDefaultRegistry(logger)
//	if name, args, ok := commands.Parse(line); ok {
//	    out, err := reg.Execute(ctx, name, args, state)
//	    ...
//	}
package commands
