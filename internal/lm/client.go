// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/model"
)

// Configuration constants for the chat API.
const (
	// DefaultTimeout is the default overall timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed non-streaming response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	userAgent = "opencoder/0.1.0"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage is a single message in the wire format.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: string(model.RoleUser), Content: content}
}

// ToChatMessages converts transcript messages to the wire format, keeping
// order.
func ToChatMessages(msgs []model.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ChatMessage{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

// ChatRequest is the body of POST /chat/completions. Every sampling
// parameter is always sent.
type ChatRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	TopP             float64       `json:"top_p"`
	TopK             uint64        `json:"top_k"`
	Temperature      float64       `json:"temperature"`
	PresencePenalty  float64       `json:"presence_penalty"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	RepeatPenalty    float64       `json:"repeat_penalty"`
	Stream           bool          `json:"stream"`
}

// newChatRequest builds a request body from the current settings.
func newChatRequest(settings model.Settings, messages []ChatMessage, stream bool) ChatRequest {
	return ChatRequest{
		Model:            settings.Name,
		Messages:         messages,
		TopP:             settings.TopP,
		TopK:             settings.TopK,
		Temperature:      settings.Temperature,
		PresencePenalty:  settings.PresencePenalty,
		FrequencyPenalty: settings.FrequencyPenalty,
		RepeatPenalty:    settings.RepeatPenalty,
		Stream:           stream,
	}
}

// ModelInfo represents one entry of the models catalog.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelList is the parsed body of GET /models.
type ModelList struct {
	Data []ModelInfo `json:"data"`
}

// IDs returns the non-empty model identifiers in catalog order.
func (l *ModelList) IDs() []string {
	ids := make([]string, 0, len(l.Data))
	for _, m := range l.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one OpenAI-compatible endpoint. It holds no conversation
// state; callers pass settings and messages on every call.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL (e.g. "http://127.0.0.1:1234/v1")
// authorizing with apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
}

// WithTimeout sets the overall request timeout. It bounds streaming requests
// too, including the time spent reading the event stream.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// setHeaders sets the headers shared by every request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// logResponse logs status and duration; never headers, which carry the key.
func (c *Client) logResponse(op string, req *http.Request, status int, duration time.Duration) {
	c.logger.Debug("api response",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", duration))
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do sends req and returns the full body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	c.setHeaders(req)
	c.logger.Debug("api request", zap.String("op", op), zap.String("method", req.Method), zap.String("path", req.URL.Path))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.logResponse(op, req, resp.StatusCode, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &UpstreamError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// ListModels retrieves the models catalog from GET {base}/models.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do("list models", req)
	if err != nil {
		return nil, err
	}

	var list ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &DecodeError{Payload: string(body), Err: err}
	}
	c.logger.Debug("models listed", zap.Int("count", len(list.Data)))
	return &list, nil
}

// ChatCompletion performs a non-streaming completion for a single user
// prompt and returns the raw response body. Use FormatModelResponse to
// extract the reply.
func (c *Client) ChatCompletion(ctx context.Context, settings model.Settings, prompt string) ([]byte, error) {
	req, err := c.newChatHTTPRequest(ctx, newChatRequest(settings, []ChatMessage{NewUserMessage(prompt)}, false))
	if err != nil {
		return nil, err
	}
	return c.do("chat completion", req)
}

// StreamChatCompletion prepares a streaming completion over the whole
// message history. The connection is opened by the first Stream.Next call,
// so only request-construction problems are reported here; connection,
// status and payload errors come out of Next.
func (c *Client) StreamChatCompletion(ctx context.Context, settings model.Settings, messages []model.Message) (*Stream, error) {
	req, err := c.newChatHTTPRequest(ctx, newChatRequest(settings, ToChatMessages(messages), true))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	return &Stream{client: c, req: req}, nil
}

// newChatHTTPRequest marshals body into a POST to /chat/completions.
func (c *Client) newChatHTTPRequest(ctx context.Context, body ChatRequest) (*http.Request, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	return req, nil
}
