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
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
	"googlemaps.github.io/maps"

	"github.com/smartcal/backend/internal/models"
)

const (
	placesSource     = "Google Places"
	maxPlaceResults  = 5
	earthRadiusKm    = 6371.0
	detailFieldNames = "name,formatted_address,rating,website"
)

// ErrNotConfigured is returned when no Places API key is set.
var ErrNotConfigured = errors.New("google places API key not configured")

// PlacesConfig configures a Places finder.
type PlacesConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// Eventbrite is optional; when set its results are appended.
	Eventbrite *Eventbrite
}

// Places finds venues through the Google Places text search.
type Places struct {
	client     *maps.Client
	fields     []maps.PlaceDetailsFieldMask
	eventbrite *Eventbrite
}

// NewPlaces creates a Places finder. Without an API key Find fails with
// ErrNotConfigured.
func NewPlaces(cfg PlacesConfig) (*Places, error) {
	p := &Places{eventbrite: cfg.Eventbrite}
	for _, name := range strings.Split(detailFieldNames, ",") {
		f, err := maps.ParsePlaceDetailsFieldMask(name)
		if err != nil {
			return nil, fmt.Errorf("parse field mask %q: %w", name, err)
		}
		p.fields = append(p.fields, f)
	}
	if cfg.APIKey == "" {
		return p, nil
	}

	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, maps.WithHTTPClient(cfg.HTTPClient))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	p.client = client
	return p, nil
}

// Find geocodes the location, searches for matching places and enriches
// the first few with place details.
func (p *Places) Find(ctx context.Context, req Request) ([]models.LocalEvent, error) {
	if p.client == nil {
		return nil, ErrNotConfigured
	}
	if req.Radius == 0 {
		req.Radius = DefaultRadius
	}

	geo, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: req.Location})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", req.Location, err)
	}
	if len(geo) == 0 {
		return nil, fmt.Errorf("could not geocode location %q", req.Location)
	}
	origin := geo[0].Geometry.Location

	query := strings.TrimSpace(req.EventType + " events " + req.Date)
	resp, err := p.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Location: &origin,
		Radius:   req.Radius,
	})
	if err != nil {
		return nil, fmt.Errorf("text search %q: %w", query, err)
	}

	results := resp.Results
	if len(results) > maxPlaceResults {
		results = results[:maxPlaceResults]
	}

	events := make([]models.LocalEvent, len(results))
	g, gctx := errgroup.WithContext(ctx)
	for i, place := range results {
		i, place := i, place
		g.Go(func() error {
			details, err := p.client.PlaceDetails(gctx, &maps.PlaceDetailsRequest{
				PlaceID: place.PlaceID,
				Fields:  p.fields,
			})
			if err != nil {
				return fmt.Errorf("place details %s: %w", place.PlaceID, err)
			}
			events[i] = placeEvent(place, details, origin)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.eventbrite != nil {
		extra, err := p.eventbrite.Search(ctx, query, origin, req.Radius)
		if err != nil {
			slog.Warn("eventbrite search failed", "query", query, "error", err)
		} else {
			events = append(events, extra...)
		}
	}

	slog.Info("local events found", "query", query, "count", len(events))
	return events, nil
}

func placeEvent(place maps.PlacesSearchResult, details maps.PlaceDetailsResult, origin maps.LatLng) models.LocalEvent {
	ev := models.LocalEvent{
		Name:        place.Name,
		Description: place.FormattedAddress,
		Location:    firstNonEmpty(details.FormattedAddress, place.FormattedAddress),
		Link:        details.Website,
		Source:      placesSource,
		Distance:    fmt.Sprintf("%.1f km", Haversine(origin, place.Geometry.Location)),
	}
	rating := details.Rating
	if rating == 0 {
		rating = place.Rating
	}
	if rating > 0 {
		r := math.Round(float64(rating)*10) / 10
		ev.Rating = &r
	}
	return ev
}

// Haversine returns the great-circle distance between a and b in km.
func Haversine(a, b maps.LatLng) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
