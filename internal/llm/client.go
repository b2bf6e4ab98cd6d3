// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llm wraps an OpenAI-compatible chat completion API (OpenRouter,
// or any provider speaking the same protocol) behind a small interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("empty completion response")

// Message roles.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one chat message sent to the model.
type Message struct {
	Role    string
	Content string
}

// Request describes a single completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// JSON requests the provider's JSON-object response mode.
	JSON bool
}

// Completer issues chat completions and returns the first choice's content.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// Referer and Title are sent as HTTP-Referer and X-Title for
	// OpenRouter attribution. Empty values are omitted.
	Referer string
	Title   string
	Timeout time.Duration
	// HTTPClient overrides the transport; mainly for tests.
	HTTPClient *http.Client
}

// Client is a Completer backed by go-openai.
type Client struct {
	api *openai.Client
}

// NewClient creates a completion client for the configured provider.
func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	} else {
		oc.BaseURL = DefaultBaseURL
	}

	base := cfg.HTTPClient
	if base == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		base = &http.Client{Timeout: timeout}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	oc.HTTPClient = &http.Client{
		Timeout: base.Timeout,
		Transport: &headerTransport{
			base:    transport,
			referer: cfg.Referer,
			title:   cfg.Title,
		},
	}

	return &Client{api: openai.NewClientWithConfig(oc)}
}

// Complete sends one chat completion request. No retries are attempted.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	// go-openai omits a zero temperature from the payload, which makes
	// the provider fall back to its own default.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	ccr := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		ccr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return "", fmt.Errorf("create chat completion (%s): %w", req.Model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// headerTransport adds OpenRouter attribution headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(req)
}

// System is shorthand for a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User is shorthand for a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }
