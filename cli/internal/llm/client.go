// Package llm provides an HTTP client for OpenAI-compatible chat-completion
// APIs (Groq, OpenAI, and local gateways that speak the same protocol).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const _defaultTimeout = 60 * time.Second

// ErrUnreachable indicates the completion endpoint could not be reached
// (connection refused, timeout, or non-2xx status).
var ErrUnreachable = errors.New("completion endpoint unreachable")

// ErrEmptyCompletion indicates a 2xx response that carried no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// Client calls a chat-completions API. Zero value is not valid; use NewClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Message is one chat message (role "system" or "user").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one completion attempt. Temperature and MaxTokens are always
// sent; the caller picks values (commit generation wants a low temperature).
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// NewClient builds a client. baseURL is the API root (e.g.
// https://api.groq.com/openai/v1). If httpClient is nil, a default client
// with a 60s timeout is used; a request must always be able to expire, so a
// zero-timeout client is given the default timeout too.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: _defaultTimeout}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = _defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Complete sends one blocking chat-completion request and returns the first
// choice's text, trimmed. No retry here: regeneration is the caller's loop.
// Transport failures and non-2xx statuses wrap ErrUnreachable; a well-formed
// response with no text returns ErrEmptyCompletion.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm: %w: HTTP %d: %s", ErrUnreachable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm: api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Check verifies the endpoint accepts requests with the configured key by
// GETting /models. Used by commitgen doctor.
func (c *Client) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm: %w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}
