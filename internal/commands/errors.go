// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
)

// ErrExit is returned by /exit. The session runner ends the process on it.
var ErrExit = errors.New("exit requested")

// UnknownCommandError is returned by Execute for an unregistered name.
type UnknownCommandError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q, type /help for a list of commands", e.Name)
}

// InvalidValueError reports a /set value that could not be parsed for its
// key.
type InvalidValueError struct {
	Key   string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidValueError) Unwrap() error {
	return e.Err
}
