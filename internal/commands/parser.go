// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Prefix starts every command.
const Prefix = "/"

// IsCommand returns true if the input is a command line.
func IsCommand(input string) bool {
	return strings.HasPrefix(input, Prefix)
}

// Parse splits a command line into the command name and its raw argument
// text. ok is false when line is not a command. name runs up to the first
// whitespace rune; args is everything after that one rune, untouched.
func Parse(line string) (name, args string, ok bool) {
	if !IsCommand(line) {
		return "", "", false
	}

	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, "", true
	}

	_, size := utf8.DecodeRuneInString(line[idx:])
	return line[:idx], line[idx+size:], true
}
