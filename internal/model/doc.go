// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and
// the sampling settings sent with every request.
//
// # Key Types
//
//   - Transcript: Append-only conversation history, seeded with a system prompt
//   - Message: Single immutable message with role, content and timestamp
//   - Settings: Model name and sampling parameters, mutated by /set
//   - Role: Message role enumeration (system, user, assistant)
//
// # Usage
//
//	t := model.NewTranscript("You are a helpful assistant.")
//	t.Append(model.NewUserMessage("Hello!"))
//	for _, m := range t.Messages() {
//	    fmt.Println(m.Role.DisplayName(), m.Content)
//	}
package model
