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

package classify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

type mockCompleter struct {
	mu       sync.Mutex
	content  string
	err      error
	requests []llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.content, m.err
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]models.ClassificationResult
}

func (c *memoryCache) Get(_ context.Context, title, description string) (*models.ClassificationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.items[title+"\n"+description]; ok {
		return &r, nil
	}
	return nil, nil
}

func (c *memoryCache) Set(_ context.Context, title, description string, r models.ClassificationResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[title+"\n"+description] = r
	return nil
}

// TestParse verifies each layer of the parse and salvage chain.
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.ClassificationResult
	}{
		{
			name:    "clean json",
			content: `{"eventType":"interview","userRole":"interviewer","confidence":0.92}`,
			want:    models.ClassificationResult{EventType: "interview", UserRole: "interviewer", Confidence: 0.92},
		},
		{
			name:    "prose around json",
			content: "Here is the result:\n{\"eventType\":\"Holiday\",\"userRole\":\"HOST\",\"confidence\":0.95}\nThanks!",
			want:    models.ClassificationResult{EventType: "holiday", UserRole: "host", Confidence: 0.95},
		},
		{
			name:    "plural event type",
			content: `{"eventType":"meetings","userRole":"participant","confidence":0.8}`,
			want:    models.ClassificationResult{EventType: "meeting", UserRole: "participant", Confidence: 0.8},
		},
		{
			name:    "unknown type caps confidence",
			content: `{"eventType":"banquet","userRole":"participant","confidence":0.99}`,
			want:    models.ClassificationResult{EventType: "meeting", UserRole: "participant", Confidence: 0.5},
		},
		{
			name:    "unknown role caps confidence",
			content: `{"eventType":"social","userRole":"guest","confidence":0.9}`,
			want:    models.ClassificationResult{EventType: "social", UserRole: "host", Confidence: 0.5},
		},
		{
			name:    "confidence as string falls to salvage",
			content: `{"eventType":"health","userRole":"client","confidence":"high"}`,
			want:    models.ClassificationResult{EventType: "health", UserRole: "client", Confidence: 0.5},
		},
		{
			name:    "missing confidence falls to salvage",
			content: `{"eventType":"workshop","userRole":"presenter"}`,
			want:    models.ClassificationResult{EventType: "workshop", UserRole: "presenter", Confidence: 0.5},
		},
		{
			name:    "truncated json salvaged by pattern",
			content: `{"eventType": "Interview", "userRole": "interviewee", "confid`,
			want:    models.ClassificationResult{EventType: "interview", UserRole: "interviewee", Confidence: 0.5},
		},
		{
			name:    "salvaged invalid values use defaults",
			content: `{"eventType": "gala", "userRole": "vip", bad}`,
			want:    models.ClassificationResult{EventType: "meeting", UserRole: "host", Confidence: 0.5},
		},
		{
			name:    "no json at all",
			content: "I think this is a meeting.",
			want:    models.ClassificationResult{EventType: "meeting", UserRole: "host", Confidence: 0.5},
		},
		{
			name:    "confidence clamped",
			content: `{"eventType":"team","userRole":"manager","confidence":7}`,
			want:    models.ClassificationResult{EventType: "team", UserRole: "manager", Confidence: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.content)
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
			if !models.IsEventType(got.EventType) || !models.IsUserRole(got.UserRole) {
				t.Errorf("result outside allowed sets: %+v", got)
			}
		})
	}
}

// TestNormalize_Idempotent verifies normalizing twice changes nothing.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []models.ClassificationResult{
		{EventType: "Meetings", UserRole: "Host", Confidence: 0.7},
		{EventType: "meeting", UserRole: "host", Confidence: 0.7},
		{EventType: "business", UserRole: "client", Confidence: 0.6},
		{EventType: "nonsense", UserRole: "nobody", Confidence: 0.9},
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %+v: %+v then %+v", in, once, twice)
		}
	}
	if got := Normalize(models.ClassificationResult{EventType: "business", UserRole: "client", Confidence: 0.6}); got.EventType != "business" {
		t.Errorf("business should not be singularized, got %q", got.EventType)
	}
}

// TestClassify_ProviderSelection verifies the primary provider wins when
// configured.
func TestClassify_ProviderSelection(t *testing.T) {
	primary := &mockCompleter{content: `{"eventType":"team","userRole":"manager","confidence":0.9}`}
	fallback := &mockCompleter{content: `{"eventType":"social","userRole":"host","confidence":0.9}`}

	c := New(Config{
		Primary:  &Provider{Name: "groq", LLM: primary, Model: DefaultPrimaryModel},
		Fallback: Provider{Name: "openrouter", LLM: fallback},
	})
	got, err := c.Classify(context.Background(), "Weekly team sync", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.EventType != "team" || c.ProviderName() != "groq" {
		t.Errorf("got %+v via %s", got, c.ProviderName())
	}
	if len(fallback.requests) != 0 {
		t.Error("fallback provider should not be called")
	}

	req := primary.requests[0]
	if req.Temperature != 0 || !req.JSON {
		t.Errorf("unexpected request settings: %+v", req)
	}
	if !strings.HasSuffix(req.Messages[0].Content, jsonOnlySuffix) {
		t.Error("prompt should end with the JSON-only instruction")
	}
	if !strings.Contains(req.Messages[0].Content, "No description provided") {
		t.Error("empty description should be replaced in the prompt")
	}

	c = New(Config{Fallback: Provider{Name: "openrouter", LLM: fallback}})
	if _, err := c.Classify(context.Background(), "Birthday party", ""); err != nil {
		t.Fatal(err)
	}
	if fallback.requests[0].Model != DefaultFallbackModel {
		t.Errorf("fallback model = %q", fallback.requests[0].Model)
	}
}

// TestClassify_TransportError verifies completion failures are returned.
func TestClassify_TransportError(t *testing.T) {
	c := New(Config{Fallback: Provider{Name: "openrouter", LLM: &mockCompleter{err: errors.New("timeout")}}})
	if _, err := c.Classify(context.Background(), "Demo", ""); err == nil {
		t.Fatal("expected error")
	}
}

// TestClassify_UsesCache verifies a cached result skips the model.
func TestClassify_UsesCache(t *testing.T) {
	m := &mockCompleter{content: `{"eventType":"health","userRole":"client","confidence":0.88}`}
	cache := &memoryCache{items: map[string]models.ClassificationResult{}}
	c := New(Config{Fallback: Provider{Name: "openrouter", LLM: m}, Cache: cache})

	for i := 0; i < 3; i++ {
		got, err := c.Classify(context.Background(), "Dentist", "checkup")
		if err != nil {
			t.Fatal(err)
		}
		if got.EventType != "health" {
			t.Errorf("EventType = %q", got.EventType)
		}
	}
	if len(m.requests) != 1 {
		t.Errorf("completion calls = %d, want 1", len(m.requests))
	}
}
