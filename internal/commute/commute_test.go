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

package commute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestParseEventTime verifies 12- and 24-hour parsing and range handling.
func TestParseEventTime(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		date, time string
		wantHour   int
		wantMin    int
		wantOK     bool
	}{
		{"2025-03-20", "2:00 PM - 3:00 PM", 14, 0, true},
		{"2025-03-20", "12:30 PM", 12, 30, true},
		{"2025-03-20", "12:15 AM", 0, 15, true},
		{"2025-03-20", "14:45", 14, 45, true},
		{"Thursday, March 20, 2025", "9 AM", 9, 0, true},
		{"3/20/2025", "9:05 am", 9, 5, true},
		{"2025-03-20", "All day", 0, 0, false},
		{"2025-03-20", "", 0, 0, false},
		{"someday", "2:00 PM", 0, 0, false},
		{"2025-03-20", "25:00", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseEventTime(tt.date, tt.time, loc)
		if ok != tt.wantOK {
			t.Errorf("ParseEventTime(%q, %q) ok = %v, want %v", tt.date, tt.time, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got.Hour() != tt.wantHour || got.Minute() != tt.wantMin || got.Day() != 20 {
			t.Errorf("ParseEventTime(%q, %q) = %v", tt.date, tt.time, got)
		}
	}
}

// TestHumanDuration verifies Google-style duration text.
func TestHumanDuration(t *testing.T) {
	tests := map[time.Duration]string{
		20 * time.Second:           "1 min",
		25 * time.Minute:           "25 mins",
		time.Hour:                  "1 hour",
		65 * time.Minute:           "1 hour 5 mins",
		2*time.Hour + time.Minute:  "2 hours 1 min",
		26 * time.Hour:             "1 day 2 hours",
		48 * time.Hour:             "2 days",
	}
	for d, want := range tests {
		if got := HumanDuration(d); got != want {
			t.Errorf("HumanDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func matrixServer(t *testing.T, seen *[]string, mu *sync.Mutex) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/distancematrix/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		mu.Lock()
		*seen = append(*seen, q.Get("mode")+"|"+q.Get("departure_time")+"|"+q.Get("traffic_model"))
		mu.Unlock()

		element := map[string]any{
			"status":   "OK",
			"distance": map[string]any{"text": "12.3 km", "value": 12300},
			"duration": map[string]any{"text": "20 mins", "value": 1200},
		}
		if q.Get("mode") == "driving" {
			element["duration_in_traffic"] = map[string]any{"text": "31 mins", "value": 1860}
		} else {
			element["duration"] = map[string]any{"text": "45 mins", "value": 2700}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":                "OK",
			"origin_addresses":      []string{"San Francisco, CA"},
			"destination_addresses": []string{"Oakland, CA"},
			"rows":                  []map[string]any{{"elements": []any{element}}},
		})
	}))
}

// TestEstimate verifies both requests and the formatted options.
func TestEstimate(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := matrixServer(t, &seen, &mu)
	defer srv.Close()

	e, err := New(Config{APIKey: "AIza-test", BaseURL: srv.URL, Location: time.UTC})
	if err != nil {
		t.Fatal(err)
	}
	e.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	info, err := e.Estimate(context.Background(), "Oakland, CA", "", "2025-03-20", "2:00 PM - 3:00 PM")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if info.Distance != "12.3 km" || info.Duration != "20 mins" || info.TrafficDuration != "31 mins" {
		t.Errorf("unexpected info %+v", info)
	}
	want := []string{
		"Transit: 45 mins (at 2:00 PM on 3/20/2025)",
		"Drive: 20 mins (at 2:00 PM on 3/20/2025)",
		"Drive (with traffic): 31 mins (at 2:00 PM on 3/20/2025)",
	}
	if strings.Join(info.TransitOptions, "\n") != strings.Join(want, "\n") {
		t.Errorf("TransitOptions = %q", info.TransitOptions)
	}

	departure := time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC).Unix()
	if len(seen) != 2 || !strings.HasPrefix(seen[0], "driving|") || !strings.HasSuffix(seen[0], "|best_guess") {
		t.Errorf("unexpected requests %v", seen)
	}
	if !strings.Contains(seen[1], "transit|"+itoa(departure)) {
		t.Errorf("transit request %q missing departure %d", seen[1], departure)
	}
}

// TestEstimate_PastEventUsesNow verifies past departures fall back to now.
func TestEstimate_PastEventUsesNow(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := matrixServer(t, &seen, &mu)
	defer srv.Close()

	e, _ := New(Config{APIKey: "AIza-test", BaseURL: srv.URL, Location: time.UTC})
	info, err := e.Estimate(context.Background(), "Oakland, CA", "Berkeley, CA", "2001-01-01", "garbage")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(info.TransitOptions[0], "(now)") {
		t.Errorf("option %q should end with (now)", info.TransitOptions[0])
	}
	if !strings.Contains(seen[0], "|now|") {
		t.Errorf("request %q should depart now", seen[0])
	}
}

// TestEstimate_NotConfigured verifies the missing-key error.
func TestEstimate_NotConfigured(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Estimate(context.Background(), "x", "y", "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
