// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamClosed is returned by Stream.Next after the stream was closed.
var ErrStreamClosed = errors.New("stream closed")

// TransportError indicates the request never produced an HTTP response, or
// the connection failed while a body was being read. Timeouts land here too.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError represents a non-2xx response from the API.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// DecodeError indicates a response body or event payload that was not the
// expected JSON.
type DecodeError struct {
	Payload string
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
