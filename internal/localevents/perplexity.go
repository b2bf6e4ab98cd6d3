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

package localevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

const (
	// DefaultPerplexityModel is the search-grounded model used for lookups.
	DefaultPerplexityModel = "perplexity/sonar"
	// DefaultPerplexityLocation is searched when the request has no location.
	DefaultPerplexityLocation = "San Francisco"

	perplexitySource  = "Perplexity Sonar"
	untitledEvent     = "Untitled Event"
	perplexitySystem  = "You find local events and format them as JSON. Always answer with valid JSON in exactly the requested shape. When nothing is found, return an empty events array."
	perplexityExample = `{
  "events": [
    {
      "name": "Example Event",
      "description": "Short description",
      "location": "123 Main St, City, State",
      "date": "2024-03-20",
      "time": "18:00",
      "link": "https://example.com"
    }
  ]
}`
)

var (
	openFence    = regexp.MustCompile("```json\n")
	closeFence   = regexp.MustCompile("```\n?$")
	lineComments = regexp.MustCompile(`(?m)// .*$`)
)

// Perplexity asks a search-grounded model for events.
type Perplexity struct {
	llm   llm.Completer
	model string
}

// NewPerplexity creates a Perplexity finder. An empty model selects
// DefaultPerplexityModel.
func NewPerplexity(completer llm.Completer, model string) *Perplexity {
	if model == "" {
		model = DefaultPerplexityModel
	}
	return &Perplexity{llm: completer, model: model}
}

type sonarEvent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Link        string `json:"link"`
}

// Find runs a single completion. Output that cannot be parsed yields an
// empty list; only transport failures are returned as errors.
func (p *Perplexity) Find(ctx context.Context, req Request) ([]models.LocalEvent, error) {
	location := req.Location
	if location == "" {
		location = DefaultPerplexityLocation
	}

	content, err := p.llm.Complete(ctx, llm.Request{
		Model: p.model,
		Messages: []llm.Message{
			llm.System(perplexitySystem),
			llm.User(query(req.EventType, location)),
		},
		Temperature: 0.5,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("perplexity lookup: %w", err)
	}

	return ParseSonar(content), nil
}

func query(eventType, location string) string {
	return fmt.Sprintf(`Search for upcoming %s events or celebrations in or near %s. Answer with a JSON object holding an "events" array. Each event has:
- name (required): event name
- description: one or two sentences
- location: venue or address
- date: YYYY-MM-DD
- time: HH:MM
- link: URL with more information

Example:
%s`, eventType, location, perplexityExample)
}

// ParseSonar cleans up a model answer and maps its events. Anything that
// does not parse yields an empty, non-nil slice.
func ParseSonar(content string) []models.LocalEvent {
	cleaned := openFence.ReplaceAllLiteralString(content, "")
	cleaned = closeFence.ReplaceAllLiteralString(cleaned, "")
	cleaned = strings.TrimSpace(lineComments.ReplaceAllLiteralString(cleaned, ""))

	var body struct {
		Events []sonarEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(cleaned), &body); err != nil {
		slog.Warn("unparseable perplexity response", "error", err, "content", content)
		return []models.LocalEvent{}
	}

	events := make([]models.LocalEvent, 0, len(body.Events))
	for _, ev := range body.Events {
		events = append(events, models.LocalEvent{
			Name:        firstNonEmpty(ev.Name, untitledEvent),
			Description: ev.Description,
			Location:    firstNonEmpty(ev.Location, locationTBA),
			Date:        strings.ReplaceAll(ev.Date, "X", "1"),
			Time:        ev.Time,
			Link:        ev.Link,
			Source:      perplexitySource,
		})
	}
	return events
}
