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

// Package chat answers follow-up questions about a single calendar event.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

const (
	// DefaultModel is the chat model.
	DefaultModel = "anthropic/claude-3-opus-20240229"
	// NoReply is returned when the model answers with nothing.
	NoReply = "Sorry, I could not generate a response."

	maxTokens   = 500
	temperature = 0.7
)

const systemPrompt = `You help people get ready for their calendar events. The event details are provided; ground your answers in them.

Guidelines:
1. Keep answers short and direct.
2. Tie advice to the specific event where you can.
3. For questions the details do not cover, make sensible assumptions based on the kind of event, and say that you are assuming.
4. Prefer concrete, actionable suggestions.
5. On sensitive topics stay professional and point to the right professionals.

Stay focused on preparing for the event, give examples where useful, suggest follow-up questions when they help, and say so when the event details lack the information asked for.`

// Service produces chat replies.
type Service struct {
	llm   llm.Completer
	model string
}

// NewService creates a chat service. An empty model selects DefaultModel.
func NewService(completer llm.Completer, model string) *Service {
	if model == "" {
		model = DefaultModel
	}
	return &Service{llm: completer, model: model}
}

// Reply answers message in the context of event and the prior history.
func (s *Service) Reply(ctx context.Context, message string, event models.EventContext, history []models.ChatMessage) (string, error) {
	content, err := s.llm.Complete(ctx, llm.Request{
		Model:       s.model,
		Messages:    []llm.Message{llm.System(systemPrompt), llm.User(Prompt(message, event, history))},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if errors.Is(err, llm.ErrEmptyResponse) {
		slog.Warn("chat model returned no content", "event", event.Title)
		return NoReply, nil
	}
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return content, nil
}

// Prompt renders the user turn: event details, earlier messages and the
// new question.
func Prompt(message string, event models.EventContext, history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString("Event Context:\n")
	fmt.Fprintf(&b, "Title: %s\n", event.Title)
	fmt.Fprintf(&b, "Description: %s\n", event.Description)
	fmt.Fprintf(&b, "Date: %s\n", event.Date)
	fmt.Fprintf(&b, "Time: %s\n", event.Time)
	fmt.Fprintf(&b, "Attendees: %s\n", strings.Join(event.Attendees, ", "))
	if event.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", event.Location)
	}

	b.WriteString("\nPrevious messages:\n")
	for _, m := range history {
		speaker := "User"
		if m.Role == llm.RoleAssistant {
			speaker = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
	}

	fmt.Fprintf(&b, "\nUser: %s", message)
	return b.String()
}
