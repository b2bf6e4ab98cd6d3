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

// Package google talks to Google Calendar and Google OAuth on behalf of a
// signed-in user.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/smartcal/backend/internal/calendar"
)

// PrimaryCalendar is the calendar ID for the user's main calendar.
const PrimaryCalendar = "primary"

var (
	// ErrUnauthorized means Google rejected the access token.
	ErrUnauthorized = errors.New("google rejected credentials")
	// ErrEventNotFound means the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")
)

// Calendar reads events from the Google Calendar API.
type Calendar struct {
	endpoint string
}

// CalendarConfig configures the Calendar client.
type CalendarConfig struct {
	// Endpoint overrides the API base URL; used by tests.
	Endpoint string
}

// NewCalendar creates a Calendar client.
func NewCalendar(cfg CalendarConfig) *Calendar {
	return &Calendar{endpoint: cfg.Endpoint}
}

func (c *Calendar) service(ctx context.Context, ts oauth2.TokenSource) (*gcal.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

// ListEvents returns the single (expanded) events of a calendar that
// overlap [timeMin, timeMax), ordered by start time.
func (c *Calendar) ListEvents(ctx context.Context, ts oauth2.TokenSource, calendarID string, timeMin, timeMax time.Time) ([]calendar.RawEvent, error) {
	svc, err := c.service(ctx, ts)
	if err != nil {
		return nil, err
	}

	var events []calendar.RawEvent
	err = svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				events = append(events, toRawEvent(item, page.Summary))
			}
			return nil
		})
	if err != nil {
		return nil, classify(fmt.Errorf("list events for %s: %w", calendarID, err))
	}
	return events, nil
}

// GetEvent fetches a single event by ID.
func (c *Calendar) GetEvent(ctx context.Context, ts oauth2.TokenSource, calendarID, eventID string) (calendar.RawEvent, error) {
	svc, err := c.service(ctx, ts)
	if err != nil {
		return calendar.RawEvent{}, err
	}
	item, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return calendar.RawEvent{}, classify(fmt.Errorf("get event %s: %w", eventID, err))
	}
	return toRawEvent(item, ""), nil
}

// ValidateToken checks an access token by listing the next 24 hours of
// the primary calendar.
func (c *Calendar) ValidateToken(ctx context.Context, accessToken string) error {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	now := time.Now()
	if _, err := c.ListEvents(ctx, ts, PrimaryCalendar, now, now.Add(24*time.Hour)); err != nil {
		return fmt.Errorf("validate access token: %w", err)
	}
	return nil
}

func toRawEvent(item *gcal.Event, calendarSummary string) calendar.RawEvent {
	raw := calendar.RawEvent{
		ID:              item.Id,
		Summary:         item.Summary,
		Description:     item.Description,
		Location:        item.Location,
		EventType:       calendar.DetectEventType(item.Summary),
		CalendarSummary: calendarSummary,
	}
	if item.Start != nil {
		raw.Start = &calendar.RawEventTime{Date: item.Start.Date, DateTime: item.Start.DateTime, TimeZone: item.Start.TimeZone}
	}
	if item.End != nil {
		raw.End = &calendar.RawEventTime{Date: item.End.Date, DateTime: item.End.DateTime, TimeZone: item.End.TimeZone}
	}
	if item.Organizer != nil {
		raw.Source = item.Organizer.Email
	}
	for _, a := range item.Attendees {
		if a.Email != "" {
			raw.Attendees = append(raw.Attendees, a.Email)
		}
	}
	return raw
}

// classify maps Google API status codes onto package errors.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrEventNotFound, err)
		}
	}
	return err
}
