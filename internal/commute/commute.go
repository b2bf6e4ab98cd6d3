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

// Package commute estimates travel time to an event with the Google
// Distance Matrix API.
package commute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"github.com/smartcal/backend/internal/models"
)

// ErrNotConfigured is returned when no Maps API key is set.
var ErrNotConfigured = errors.New("google maps API key not configured")

// Config configures an Estimator.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// Location interprets event dates and times; defaults to time.Local.
	Location *time.Location
}

// Estimator computes driving and transit estimates.
type Estimator struct {
	client *maps.Client
	loc    *time.Location
	now    func() time.Time
}

// New creates an Estimator. Without an API key every estimate fails with
// ErrNotConfigured.
func New(cfg Config) (*Estimator, error) {
	e := &Estimator{loc: cfg.Location, now: time.Now}
	if e.loc == nil {
		e.loc = time.Local
	}
	if cfg.APIKey == "" {
		return e, nil
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
	e.client = client
	return e, nil
}

// Estimate returns travel estimates from origin to destination, departing
// at the event's start when that is in the future and now otherwise.
func (e *Estimator) Estimate(ctx context.Context, destination, origin, date, timeRange string) (*models.CommuteInfo, error) {
	if e.client == nil {
		return nil, ErrNotConfigured
	}
	if origin == "" {
		origin = models.DefaultLocation
	}

	now := e.now()
	departure, ok := ParseEventTime(date, timeRange, e.loc)
	future := ok && departure.After(now)

	departureParam := "now"
	timeContext := "now"
	if future {
		departureParam = strconv.FormatInt(departure.Unix(), 10)
		timeContext = fmt.Sprintf("at %s on %s", departure.Format("3:04 PM"), departure.Format("1/2/2006"))
	}

	driving, err := e.element(ctx, &maps.DistanceMatrixRequest{
		Origins:       []string{origin},
		Destinations:  []string{destination},
		Mode:          maps.TravelModeDriving,
		DepartureTime: departureParam,
		TrafficModel:  maps.TrafficModelBestGuess,
	})
	if err != nil {
		return nil, fmt.Errorf("driving distance matrix: %w", err)
	}
	transit, err := e.element(ctx, &maps.DistanceMatrixRequest{
		Origins:       []string{origin},
		Destinations:  []string{destination},
		Mode:          maps.TravelModeTransit,
		DepartureTime: departureParam,
	})
	if err != nil {
		return nil, fmt.Errorf("transit distance matrix: %w", err)
	}

	info := &models.CommuteInfo{TransitOptions: []string{}}
	if transit != nil && transit.Status == "OK" {
		info.TransitOptions = append(info.TransitOptions, fmt.Sprintf("Transit: %s (%s)", HumanDuration(transit.Duration), timeContext))
	}
	if driving != nil && driving.Status == "OK" {
		info.Distance = driving.Distance.HumanReadable
		info.Duration = HumanDuration(driving.Duration)
		info.TransitOptions = append(info.TransitOptions, fmt.Sprintf("Drive: %s (%s)", info.Duration, timeContext))
		if driving.DurationInTraffic > 0 {
			info.TrafficDuration = HumanDuration(driving.DurationInTraffic)
			info.TransitOptions = append(info.TransitOptions, fmt.Sprintf("Drive (with traffic): %s (%s)", info.TrafficDuration, timeContext))
		}
	}

	slog.Info("commute estimated",
		"destination", destination,
		"departure", departureParam,
		"options", len(info.TransitOptions),
	)
	return info, nil
}

func (e *Estimator) element(ctx context.Context, req *maps.DistanceMatrixRequest) (*maps.DistanceMatrixElement, error) {
	resp, err := e.client.DistanceMatrix(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, nil
	}
	return resp.Rows[0].Elements[0], nil
}

// HumanDuration renders d the way Google Maps does, e.g. "1 hour 5 mins".
func HumanDuration(d time.Duration) string {
	mins := int((d + 30*time.Second) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	days, hours := mins/(24*60), (mins/60)%24
	mins %= 60

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return strconv.Itoa(n) + " " + unit + "s"
	}
	switch {
	case days > 0:
		if hours == 0 {
			return plural(days, "day")
		}
		return plural(days, "day") + " " + plural(hours, "hour")
	case hours > 0:
		if mins == 0 {
			return plural(hours, "hour")
		}
		return plural(hours, "hour") + " " + plural(mins, "min")
	default:
		return plural(mins, "min")
	}
}
