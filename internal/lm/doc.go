// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lm provides the client for OpenAI-compatible chat completion
// endpoints (LM Studio, vLLM, llama.cpp server, OpenRouter and friends).
//
// # Key Types
//
//   - Client: HTTP client bound to one base URL and bearer token
//   - Stream: Pull-based iterator over a server-sent-event chat stream
//   - StreamEvent: One decoded stream payload (text delta + final flag)
//   - SSEReader: Low-level server-sent-event framing
//
// # Usage
//
//	client := lm.NewClient("http://127.0.0.1:1234/v1", apiKey).
//	    WithTimeout(60 * time.Second)
//	stream, err := client.StreamChatCompletion(ctx, settings, transcript.Messages())
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for {
//	    ev, err := stream.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(ev.Delta)
//	    if ev.Final {
//	        break
//	    }
//	}
//
// # Errors
//
// Failures are reported as *TransportError (network), *UpstreamError (non-2xx
// status) or *DecodeError (malformed JSON). Nothing is retried.
package lm
