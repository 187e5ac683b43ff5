// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the mutable state of one interactive run.
//
// A State has exactly one owner, the session runner. It is lent by pointer to
// one command handler or chat turn at a time and carries no locks.
//
// # Key Types
//
//   - State: LM client, sampling settings, transcript and prompter
//   - Prompter: Interactive list choice and free-text input used by /set
package session
