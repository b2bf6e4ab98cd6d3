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

package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/smartcal/backend/internal/models"
)

// DefaultType is used when a request carries no event type.
const DefaultType = "default"

// NotFoundError reports an event type with no registered agent.
type NotFoundError struct {
	EventType string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no agent found for type: %s", e.EventType)
}

// Registry maps event types to agents. It is built once at startup and
// passed to whoever needs it.
type Registry struct {
	mu        sync.RWMutex
	agents    map[string]Agent
	generator *Generator
}

// NewRegistry creates an empty registry that generates with gen.
func NewRegistry(gen *Generator) *Registry {
	return &Registry{
		agents:    make(map[string]Agent),
		generator: gen,
	}
}

// NewDefaultRegistry creates a registry with every built-in agent.
func NewDefaultRegistry(gen *Generator) *Registry {
	r := NewRegistry(gen)
	r.Register(DefaultType, DefaultAgent{})
	r.Register("interview", InterviewAgent{})
	r.Register("social", SocialAgent{})
	for _, t := range []string{"workshop", "learning", "training"} {
		r.Register(t, LearningAgent{})
	}
	for _, t := range []string{"holiday", "celebration"} {
		r.Register(t, HolidayAgent{})
	}
	for _, t := range []string{"business", "client", "meeting"} {
		r.Register(t, BusinessAgent{})
	}
	for _, t := range []string{"presentation", "speech"} {
		r.Register(t, PresentationAgent{})
	}
	for _, t := range []string{"health", "medical", "wellness"} {
		r.Register(t, HealthAgent{})
	}
	for _, t := range []string{"fitness", "sports", "game", "match"} {
		r.Register(t, FitnessAgent{})
	}
	return r
}

// Register adds or replaces the agent for an event type.
func (r *Registry) Register(eventType string, a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[normalizeType(eventType)] = a
}

// Lookup returns the agent for an event type. An empty type resolves to
// the default agent.
func (r *Registry) Lookup(eventType string) (Agent, error) {
	key := normalizeType(eventType)
	if key == "" {
		key = DefaultType
	}
	r.mu.RLock()
	a, ok := r.agents[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{EventType: key}
	}
	return a, nil
}

// Types lists the registered event types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.agents))
	for t := range r.agents {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GeneratePreparation resolves in.EventType to an agent and generates its
// materials. The only error is *NotFoundError.
func (r *Registry) GeneratePreparation(ctx context.Context, in models.PreparationInput) (models.Preparation, error) {
	a, err := r.Lookup(in.EventType)
	if err != nil {
		return nil, err
	}
	return r.generator.Generate(ctx, a, in), nil
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
