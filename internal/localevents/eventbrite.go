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
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/smartcal/backend/internal/models"
)

const (
	// DefaultEventbriteURL is the Eventbrite API base URL.
	DefaultEventbriteURL = "https://www.eventbriteapi.com"

	eventbriteSource     = "Eventbrite"
	maxEventbriteResults = 3
	locationTBA          = "Location TBA"
)

// Eventbrite searches public Eventbrite listings.
type Eventbrite struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewEventbrite creates an Eventbrite client. An empty baseURL selects
// DefaultEventbriteURL.
func NewEventbrite(httpClient *http.Client, baseURL, token string) *Eventbrite {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultEventbriteURL
	}
	return &Eventbrite{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

type eventbriteText struct {
	Text string `json:"text"`
}

type eventbriteEvent struct {
	Name        eventbriteText `json:"name"`
	Description eventbriteText `json:"description"`
	URL         string         `json:"url"`
	Capacity    *int           `json:"capacity"`
	Start       struct {
		Local string `json:"local"`
	} `json:"start"`
	Venue *struct {
		Address struct {
			Display string `json:"localized_address_display"`
		} `json:"address"`
	} `json:"venue"`
}

// Search returns up to three events matching query near the given point.
func (e *Eventbrite) Search(ctx context.Context, query string, near maps.LatLng, radius uint) ([]models.LocalEvent, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("location.latitude", strconv.FormatFloat(near.Lat, 'f', -1, 64))
	params.Set("location.longitude", strconv.FormatFloat(near.Lng, 'f', -1, 64))
	params.Set("location.within", fmt.Sprintf("%dm", radius))
	params.Set("expand", "venue")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/v3/events/search/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eventbrite API returned HTTP %d", resp.StatusCode)
	}

	var body struct {
		Events []eventbriteEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	found := body.Events
	if len(found) > maxEventbriteResults {
		found = found[:maxEventbriteResults]
	}
	events := make([]models.LocalEvent, 0, len(found))
	for _, ev := range found {
		date, clock, _ := strings.Cut(ev.Start.Local, "T")
		location := locationTBA
		if ev.Venue != nil && ev.Venue.Address.Display != "" {
			location = ev.Venue.Address.Display
		}
		events = append(events, models.LocalEvent{
			Name:        ev.Name.Text,
			Description: ev.Description.Text,
			Location:    location,
			Date:        date,
			Time:        clock,
			Link:        ev.URL,
			Source:      eventbriteSource,
			Attendees:   ev.Capacity,
		})
	}

	slog.Debug("eventbrite search complete", "query", query, "count", len(events))
	return events, nil
}
