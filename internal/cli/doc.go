// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires opencoder together: the cobra command tree, the
// liner-backed console and the session runner that drives the REPL.
//
// # Commands
//
//	opencoder [--config FILE] [--model NAME] [--log-level LEVEL]
//	opencoder ask PROMPT...
//	opencoder version
//
// # Session Runner
//
// The runner reads one line at a time. Lines starting with "/" go to the
// command registry; anything else starts a chat turn:
//
//	Idle -> Sending -> Streaming -> (Committing | Failed) -> Idle
//
// The user message is appended before the request is sent and stays in the
// transcript even if the turn fails. Streamed text is printed as it arrives
// and committed as one assistant message once the stream ends. The next
// line is not read until the turn or command has finished.
package cli
