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

// Package agent turns a PreparationInput into preparation materials. Each
// event family has an Agent supplying its persona and prompt; a Registry
// maps event types to agents and a Generator runs the completion.
package agent

import (
	"context"
	"log/slog"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

const (
	DefaultModel       = "openai/gpt-4-turbo"
	DefaultTemperature = 0.7
)

// Agent supplies the persona and prompt for one family of events.
type Agent interface {
	SystemMessage() string
	UserPrompt(in models.PreparationInput) (string, error)
	// NewOutput returns an empty value of the variant this agent produces.
	NewOutput() models.Preparation
}

const fallbackSummary = "Failed to generate summary. Please try again later."

// Fallback returns the placeholder output used whenever generation fails.
func Fallback() *models.PreparationOutput {
	return &models.PreparationOutput{
		Summary:           fallbackSummary,
		KeyPoints:         []string{"Error generating key points"},
		SuggestedApproach: "Error generating approach",
		Questions:         []string{"Error generating questions"},
		RelevantTopics:    []string{"Error generating topics"},
		ActionItems:       []string{"Error generating action items"},
	}
}

// IsFallback reports whether p is the placeholder from a failed generation.
func IsFallback(p models.Preparation) bool {
	out, ok := p.(*models.PreparationOutput)
	return ok && out.Summary == fallbackSummary
}

// Generator runs an agent's prompt through the completion API.
type Generator struct {
	llm         llm.Completer
	model       string
	temperature float32
}

// GeneratorConfig holds dependencies for the generator.
type GeneratorConfig struct {
	LLM         llm.Completer
	Model       string
	Temperature float32
}

// NewGenerator creates a preparation generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	g := &Generator{
		llm:         cfg.LLM,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.temperature == 0 {
		g.temperature = DefaultTemperature
	}
	return g
}

// Generate produces preparation materials for in using agent a. It never
// returns nil: any failure yields Fallback().
func (g *Generator) Generate(ctx context.Context, a Agent, in models.PreparationInput) models.Preparation {
	prompt, err := a.UserPrompt(in)
	if err != nil {
		slog.Error("failed to build preparation prompt", "title", in.EventTitle, "error", err)
		return Fallback()
	}

	content, err := g.llm.Complete(ctx, llm.Request{
		Model:       g.model,
		Messages:    []llm.Message{llm.System(a.SystemMessage()), llm.User(prompt)},
		Temperature: g.temperature,
		JSON:        true,
	})
	if err != nil {
		slog.Error("preparation completion failed", "title", in.EventTitle, "model", g.model, "error", err)
		return Fallback()
	}

	res := llm.Decode(content, a.NewOutput())
	if err := res.Err(); err != nil {
		slog.Warn("preparation response was not valid JSON",
			"title", in.EventTitle,
			"content_len", len(content),
			"error", err,
		)
	}
	return res.UnwrapOr(Fallback())
}
