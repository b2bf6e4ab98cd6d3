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
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"googlemaps.github.io/maps"

	"github.com/smartcal/backend/internal/llm"
)

type mockCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	reqs    []llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	return m.content, m.err
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func placesServer(t *testing.T, detailCalls *int, mu *sync.Mutex) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/maps/api/geocode/json":
			writeJSON(w, map[string]any{
				"status": "OK",
				"results": []any{map[string]any{
					"formatted_address": "San Francisco, CA",
					"geometry":          map[string]any{"location": map[string]any{"lat": 37.7749, "lng": -122.4194}},
				}},
			})
		case "/maps/api/place/textsearch/json":
			if got := r.URL.Query().Get("query"); got != "holiday events 2025-12-20" {
				t.Errorf("query = %q", got)
			}
			if got := r.URL.Query().Get("radius"); got != "5000" {
				t.Errorf("radius = %q", got)
			}
			var results []any
			for i := 0; i < 7; i++ {
				results = append(results, map[string]any{
					"name":              fmt.Sprintf("Place %d", i),
					"place_id":          fmt.Sprintf("p%d", i),
					"formatted_address": fmt.Sprintf("%d Market St", i),
					"rating":            4.0,
					"geometry":          map[string]any{"location": map[string]any{"lat": 37.7849, "lng": -122.4194}},
				})
			}
			writeJSON(w, map[string]any{"status": "OK", "results": results})
		case "/maps/api/place/details/json":
			mu.Lock()
			*detailCalls++
			mu.Unlock()
			id := r.URL.Query().Get("placeid")
			writeJSON(w, map[string]any{"status": "OK", "result": map[string]any{
				"place_id":          id,
				"formatted_address": "Details for " + id,
				"website":           "https://example.com/" + id,
			}})
		case "/v3/events/search/":
			if r.Header.Get("Authorization") != "Bearer eb-token" {
				t.Errorf("missing eventbrite token")
			}
			var events []any
			for i := 0; i < 4; i++ {
				events = append(events, map[string]any{
					"name":        map[string]any{"text": fmt.Sprintf("Fair %d", i)},
					"description": map[string]any{"text": "Seasonal fair"},
					"url":         "https://eventbrite.com/e/1",
					"capacity":    200,
					"start":       map[string]any{"local": "2025-12-20T18:30:00"},
				})
			}
			writeJSON(w, map[string]any{"events": events})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
}

// TestPlacesFind verifies geocoding, the five-result cap, details
// enrichment, and the appended Eventbrite results.
func TestPlacesFind(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	srv := placesServer(t, &calls, &mu)
	defer srv.Close()

	p, err := NewPlaces(PlacesConfig{
		APIKey:     "AIza-test",
		BaseURL:    srv.URL,
		Eventbrite: NewEventbrite(srv.Client(), srv.URL, "eb-token"),
	})
	if err != nil {
		t.Fatal(err)
	}

	events, err := p.Find(context.Background(), Request{EventType: "holiday", Location: "San Francisco, CA", Date: "2025-12-20"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if calls != 5 {
		t.Errorf("details calls = %d, want 5", calls)
	}
	if len(events) != 8 {
		t.Fatalf("got %d events, want 5 places + 3 eventbrite", len(events))
	}

	first := events[0]
	if first.Name != "Place 0" || first.Location != "Details for p0" || first.Description != "0 Market St" {
		t.Errorf("unexpected place event %+v", first)
	}
	if first.Source != "Google Places" || first.Link != "https://example.com/p0" {
		t.Errorf("unexpected place source/link %+v", first)
	}
	if first.Rating == nil || *first.Rating != 4.0 {
		t.Errorf("rating = %v, want 4.0 from search result", first.Rating)
	}
	if first.Distance != "1.1 km" {
		t.Errorf("distance = %q, want 1.1 km", first.Distance)
	}

	eb := events[5]
	if eb.Source != "Eventbrite" || eb.Date != "2025-12-20" || eb.Time != "18:30:00" || eb.Location != "Location TBA" {
		t.Errorf("unexpected eventbrite event %+v", eb)
	}
	if eb.Attendees == nil || *eb.Attendees != 200 {
		t.Errorf("attendees = %v, want 200", eb.Attendees)
	}
}

// TestPlacesFind_NotConfigured verifies the missing-key error.
func TestPlacesFind_NotConfigured(t *testing.T) {
	p, err := NewPlaces(PlacesConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Find(context.Background(), Request{EventType: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

// TestHaversine verifies a known distance.
func TestHaversine(t *testing.T) {
	sf := maps.LatLng{Lat: 37.7749, Lng: -122.4194}
	la := maps.LatLng{Lat: 34.0522, Lng: -118.2437}
	if d := Haversine(sf, la); math.Abs(d-559) > 2 {
		t.Errorf("Haversine(SF, LA) = %.1f km, want ~559", d)
	}
	if d := Haversine(sf, sf); d != 0 {
		t.Errorf("Haversine(x, x) = %f, want 0", d)
	}
}

// TestParseSonar verifies cleanup and defaults for model answers.
func TestParseSonar(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		check   func(t *testing.T, name, location, date, source string)
	}{
		{
			name:    "fenced with comments",
			content: "```json\n{\"events\": [{\"name\": \"Lights\", \"date\": \"2025-12-XX\"} // approx\n]}\n```",
			want:    1,
			check: func(t *testing.T, name, location, date, source string) {
				if name != "Lights" || location != "Location TBA" || date != "2025-12-11" || source != "Perplexity Sonar" {
					t.Errorf("got %q %q %q %q", name, location, date, source)
				}
			},
		},
		{
			name:    "missing name",
			content: `{"events":[{"location":"Pier 39"}]}`,
			want:    1,
			check: func(t *testing.T, name, location, _, _ string) {
				if name != "Untitled Event" || location != "Pier 39" {
					t.Errorf("got %q %q", name, location)
				}
			},
		},
		{name: "garbage", content: "no events today", want: 0},
		{name: "events not a list", content: `{"events":"none"}`, want: 0},
		{name: "empty list", content: `{"events":[]}`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSonar(tt.content)
			if got == nil {
				t.Fatal("ParseSonar returned nil")
			}
			if len(got) != tt.want {
				t.Fatalf("got %d events, want %d", len(got), tt.want)
			}
			if tt.check != nil {
				tt.check(t, got[0].Name, got[0].Location, got[0].Date, got[0].Source)
			}
		})
	}
}

// TestPerplexityFind verifies request shape and defaults.
func TestPerplexityFind(t *testing.T) {
	m := &mockCompleter{content: `{"events":[{"name":"Parade"}]}`}
	p := NewPerplexity(m, "")

	events, err := p.Find(context.Background(), Request{EventType: "holiday"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Name != "Parade" {
		t.Errorf("unexpected events %+v", events)
	}
	req := m.reqs[0]
	if req.Model != "perplexity/sonar" || req.Temperature != 0.5 || !req.JSON {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(req.Messages[1].Content, "in or near San Francisco") {
		t.Errorf("query should default to San Francisco: %q", req.Messages[1].Content)
	}
}

// TestPerplexityFind_Error verifies transport failures surface.
func TestPerplexityFind_Error(t *testing.T) {
	p := NewPerplexity(&mockCompleter{err: llm.ErrEmptyResponse}, "")
	if _, err := p.Find(context.Background(), Request{EventType: "holiday"}); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}
