// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxEventSize is the maximum allowed size for a single SSE event (64KB).
const MaxEventSize = 64 * 1024

// doneSentinel is the payload that terminates an OpenAI-style stream.
var doneSentinel = []byte("[DONE]")

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type (usually empty), the joined data lines and any error.
// Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	size := 0

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if errors.Is(err, io.EOF) {
				// Flush an event that was not followed by a blank line
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := line[len("data:"):]
			// A single leading space is part of the framing, not the payload
			data = bytes.TrimPrefix(data, []byte(" "))
			size += len(data)
			if size > MaxEventSize {
				return "", nil, fmt.Errorf("event exceeded maximum size of %d bytes", MaxEventSize)
			}
			dataLines = append(dataLines, append([]byte(nil), data...))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// STREAM
// =============================================================================

// Stream is a pull-based iterator over a streaming chat completion. It is
// not safe for concurrent use.
type Stream struct {
	client *Client
	req    *http.Request

	body   io.ReadCloser
	reader *SSEReader
	closed bool
	start  time.Time
}

// Next returns the next decoded event. The first call opens the connection.
// It returns io.EOF when the server sends [DONE] or closes the stream, and
// ErrStreamClosed after Close. Any other error closes the stream.
func (s *Stream) Next() (StreamEvent, error) {
	if s.closed {
		return StreamEvent{}, ErrStreamClosed
	}
	if s.reader == nil {
		if err := s.open(); err != nil {
			s.Close()
			return StreamEvent{}, err
		}
	}

	for {
		_, data, err := s.reader.ReadEvent()
		if err != nil {
			s.Close()
			if errors.Is(err, io.EOF) {
				return StreamEvent{}, io.EOF
			}
			return StreamEvent{}, &TransportError{Op: "chat stream", Err: err}
		}

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, doneSentinel) {
			s.client.logger.Debug("stream done", zap.Duration("duration", time.Since(s.start)))
			s.Close()
			return StreamEvent{}, io.EOF
		}

		ev, err := DecodeEvent(data)
		if err != nil {
			s.client.logger.Warn("undecodable stream event", zap.Error(err))
			s.Close()
			return StreamEvent{}, err
		}
		return ev, nil
	}
}

// open performs the HTTP request and checks the status.
func (s *Stream) open() error {
	c := s.client
	c.logger.Debug("api request", zap.String("op", "chat stream"), zap.String("method", s.req.Method), zap.String("path", s.req.URL.Path))

	s.start = time.Now()
	resp, err := c.httpClient.Do(s.req)
	if err != nil {
		c.logger.Error("request failed", zap.String("op", "chat stream"), zap.Error(err))
		return &TransportError{Op: "chat stream", Err: err}
	}
	c.logResponse("chat stream", s.req, resp.StatusCode, time.Since(s.start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := readResponse(resp)
		c.logger.Warn("request rejected",
			zap.String("op", "chat stream"),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return &UpstreamError{Op: "chat stream", Status: resp.StatusCode, Body: string(body)}
	}

	s.body = resp.Body
	s.reader = NewSSEReader(resp.Body)
	return nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}
