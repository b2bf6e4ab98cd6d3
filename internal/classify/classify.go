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

// Package classify infers an event's type and the user's role in it from
// the title and description alone.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

const (
	DefaultPrimaryModel  = "llama-3.1-8b-instant"
	DefaultFallbackModel = "mistralai/mistral-7b-instruct"

	jsonOnlySuffix = "\n\nIMPORTANT: Respond ONLY with valid JSON. No additional text or explanations."
)

// Provider is one completion backend the classifier can use.
type Provider struct {
	Name  string
	LLM   llm.Completer
	Model string
}

// Cache stores classification results keyed by title and description.
type Cache interface {
	Get(ctx context.Context, title, description string) (*models.ClassificationResult, error)
	Set(ctx context.Context, title, description string, r models.ClassificationResult) error
}

// Config holds dependencies for the classifier.
type Config struct {
	// Primary is used when set; it is only configured when its API key
	// is present.
	Primary  *Provider
	Fallback Provider
	Cache    Cache
}

// Classifier classifies events with a single completion call.
type Classifier struct {
	provider Provider
	cache    Cache
}

// New creates a classifier. The provider is chosen once, here.
func New(cfg Config) *Classifier {
	p := cfg.Fallback
	if cfg.Primary != nil && cfg.Primary.LLM != nil {
		p = *cfg.Primary
	}
	if p.Model == "" {
		p.Model = DefaultFallbackModel
	}
	return &Classifier{provider: p, cache: cfg.Cache}
}

// ProviderName returns the name of the selected provider.
func (c *Classifier) ProviderName() string { return c.provider.Name }

// Classify returns a normalized classification. Only a failed completion
// call is reported as an error; malformed answers are salvaged.
func (c *Classifier) Classify(ctx context.Context, title, description string) (models.ClassificationResult, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, title, description)
		if err != nil {
			slog.Warn("classification cache read failed", "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	content, err := c.provider.LLM.Complete(ctx, llm.Request{
		Model:       c.provider.Model,
		Messages:    []llm.Message{llm.User(Prompt(title, description) + jsonOnlySuffix)},
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("classify %q via %s: %w", title, c.provider.Name, err)
	}

	result := Parse(content)
	slog.Info("event classified",
		"title", title,
		"provider", c.provider.Name,
		"event_type", result.EventType,
		"user_role", result.UserRole,
		"confidence", result.Confidence,
	)

	if c.cache != nil {
		if err := c.cache.Set(ctx, title, description, result); err != nil {
			slog.Warn("classification cache write failed", "error", err)
		}
	}
	return result, nil
}

// Prompt builds the classification instructions for one event.
func Prompt(title, description string) string {
	if strings.TrimSpace(description) == "" {
		description = "No description provided"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Given an event with the following details:\nTitle: %s\nDescription: %s\n\n", title, description)
	b.WriteString("Analyze the event and provide:\n")
	fmt.Fprintf(&b, "1. The most appropriate event type from this list: %s\n", strings.Join(models.EventTypes, ", "))
	fmt.Fprintf(&b, "2. The most likely role of the person adding this event from this list: %s\n\n", strings.Join(models.UserRoles, ", "))
	b.WriteString(`Guidelines:
- Holidays such as Christmas, Diwali or Holi are "holiday"
- Medical or doctor appointments are "health"
- Fitness, yoga or meditation sessions are "wellness"
- Team meetings with several attendees are "team"
- One-on-one meetings are "1on1"
- Use "meeting" only when nothing else fits

Respond in JSON like this:
{
  "eventType": "type_here",
  "userRole": "role_here",
  "confidence": 0.0 to 1.0
}

Set confidence to:
- 0.9 or more when the title or description makes it obvious
- 0.7-0.9 when reasonably clear but ambiguous
- 0.5-0.7 for an educated guess
- below 0.5 when highly uncertain`)
	return b.String()
}
