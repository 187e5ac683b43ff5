// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lm

import (
	"encoding/json"
	"errors"
)

// FinishReasonStop marks the last event of a completed stream.
const FinishReasonStop = "stop"

// StreamEvent is one decoded stream payload.
type StreamEvent struct {
	Final bool   // finish_reason was "stop"
	Delta string // text to append, possibly empty
}

// streamChunk is the wire shape of one stream payload.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// DecodeEvent decodes one SSE data payload. A missing delta content yields
// an empty Delta; Final is set only for finish_reason "stop".
func DecodeEvent(payload []byte) (StreamEvent, error) {
	var chunk streamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return StreamEvent{}, &DecodeError{Payload: string(payload), Err: err}
	}
	if len(chunk.Choices) == 0 {
		return StreamEvent{}, nil
	}

	choice := chunk.Choices[0]
	return StreamEvent{
		Final: choice.FinishReason != nil && *choice.FinishReason == FinishReasonStop,
		Delta: choice.Delta.Content,
	}, nil
}

// Reply is the extracted result of a non-streaming completion.
type Reply struct {
	Model   string
	Message string
}

// completionBody is the wire shape of a non-streaming response.
type completionBody struct {
	Model   *string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FormatModelResponse extracts the model name and first reply from a
// non-streaming response body.
func FormatModelResponse(body []byte) (Reply, error) {
	var resp completionBody
	if err := json.Unmarshal(body, &resp); err != nil {
		return Reply{}, &DecodeError{Payload: string(body), Err: err}
	}
	if resp.Model == nil {
		return Reply{}, &DecodeError{Payload: string(body), Err: errors.New("missing model field")}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return Reply{}, &DecodeError{Payload: string(body), Err: errors.New("missing choices[0].message.content")}
	}
	return Reply{Model: *resp.Model, Message: *resp.Choices[0].Message.Content}, nil
}
