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

// Package calendar normalizes calendar events from Google and sample data
// into a single shape, buckets them into days and lays out day, week and
// month grids.
package calendar

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultColor        = "#4285F4"
	DefaultCalendarName = "Calendar"
	UntitledEvent       = "Untitled Event"

	TypeDefault  = "default"
	TypeHoliday  = "holiday"
	TypeBirthday = "birthday"
	TypeAllDay   = "all-day"
)

// RawEventTime is the start or end of an event as delivered by Google:
// Date for all-day events, DateTime for timed ones.
type RawEventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// RawEvent is any event shape the service accepts before normalization.
type RawEvent struct {
	ID              string        `json:"id,omitempty"`
	Summary         string        `json:"summary,omitempty"`
	Title           string        `json:"title,omitempty"`
	Description     string        `json:"description,omitempty"`
	Location        string        `json:"location,omitempty"`
	Start           *RawEventTime `json:"start,omitempty"`
	End             *RawEventTime `json:"end,omitempty"`
	Date            string        `json:"date,omitempty"`
	IsAllDay        bool          `json:"isAllDay,omitempty"`
	AllDay          bool          `json:"allDay,omitempty"`
	Attendees       []string      `json:"attendees,omitempty"`
	Source          string        `json:"source,omitempty"`
	EventType       string        `json:"eventType,omitempty"`
	CalendarColor   string        `json:"calendarColor,omitempty"`
	CalendarSummary string        `json:"calendarSummary,omitempty"`
}

// When is the timing of a normalized event: either AllDay or Timed.
type When interface {
	// Bounds returns the inclusive start and end instants.
	Bounds() (start, end time.Time)
	isWhen()
}

// AllDay covers whole days from First to Last inclusive. Both are
// midnight in the display location.
type AllDay struct {
	First time.Time
	Last  time.Time
}

func (a AllDay) Bounds() (time.Time, time.Time) {
	y, m, d := a.Last.Date()
	return a.First, time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), a.Last.Location())
}

func (AllDay) isWhen() {}

// Timed runs from Start to End.
type Timed struct {
	Start time.Time
	End   time.Time
}

func (t Timed) Bounds() (time.Time, time.Time) { return t.Start, t.End }

func (Timed) isWhen() {}

// Event is a normalized calendar event.
type Event struct {
	ID           string
	Title        string
	When         When
	Type         string
	Color        string
	CalendarName string
	TimeZone     string
	Description  string
	Location     string
	Attendees    []string
}

// IsAllDay reports whether the event covers whole days.
func (e Event) IsAllDay() bool {
	_, ok := e.When.(AllDay)
	return ok
}

// Start returns the first instant of the event.
func (e Event) Start() time.Time {
	s, _ := e.When.Bounds()
	return s
}

// End returns the last instant of the event.
func (e Event) End() time.Time {
	_, end := e.When.Bounds()
	return end
}

type eventJSON struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Type         string    `json:"type"`
	Color        string    `json:"color"`
	IsAllDay     bool      `json:"isAllDay"`
	CalendarName string    `json:"calendarName"`
	TimeZone     string    `json:"timeZone"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Attendees    []string  `json:"attendees,omitempty"`
}

// MarshalJSON flattens When into start, end and isAllDay.
func (e Event) MarshalJSON() ([]byte, error) {
	start, end := e.When.Bounds()
	return json.Marshal(eventJSON{
		ID:           e.ID,
		Title:        e.Title,
		Start:        start,
		End:          end,
		Type:         e.Type,
		Color:        e.Color,
		IsAllDay:     e.IsAllDay(),
		CalendarName: e.CalendarName,
		TimeZone:     e.TimeZone,
		Description:  e.Description,
		Location:     e.Location,
		Attendees:    e.Attendees,
	})
}

// Normalize converts raw into an Event displayed in loc. It reports false
// when raw has no usable date or a date fails to parse; such events are
// meant to be skipped, not treated as errors.
func Normalize(raw RawEvent, loc *time.Location) (Event, bool) {
	if loc == nil {
		loc = time.Local
	}

	when, ok := parseWhen(raw, loc)
	if !ok {
		return Event{}, false
	}

	e := Event{
		ID:           raw.ID,
		Title:        firstNonEmpty(raw.Title, raw.Summary, UntitledEvent),
		When:         when,
		Color:        firstNonEmpty(raw.CalendarColor, DefaultColor),
		CalendarName: firstNonEmpty(raw.CalendarSummary, DefaultCalendarName),
		TimeZone:     loc.String(),
		Description:  raw.Description,
		Location:     raw.Location,
		Attendees:    raw.Attendees,
	}
	if raw.Start != nil && raw.Start.TimeZone != "" {
		e.TimeZone = raw.Start.TimeZone
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Type = displayType(raw, e.IsAllDay())
	return e, true
}

// NormalizeAll normalizes every event, dropping the ones that fail.
func NormalizeAll(raws []RawEvent, loc *time.Location) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if e, ok := Normalize(raw, loc); ok {
			events = append(events, e)
		}
	}
	return events
}

func parseWhen(raw RawEvent, loc *time.Location) (When, bool) {
	switch {
	case raw.Start != nil && raw.Start.DateTime != "":
		start, err := parseDateTime(raw.Start.DateTime, loc)
		if err != nil {
			return nil, false
		}
		end := start.Add(time.Hour)
		if raw.End != nil && raw.End.DateTime != "" {
			if end, err = parseDateTime(raw.End.DateTime, loc); err != nil {
				return nil, false
			}
		}
		if end.Before(start) {
			return nil, false
		}
		return Timed{Start: start, End: end}, true

	case raw.Start != nil && raw.Start.Date != "":
		first, err := time.ParseInLocation(time.DateOnly, raw.Start.Date, loc)
		if err != nil {
			return nil, false
		}
		last := first
		if raw.End != nil && raw.End.Date != "" {
			exclusive, err := time.ParseInLocation(time.DateOnly, raw.End.Date, loc)
			if err != nil {
				return nil, false
			}
			last = addDays(exclusive, -1)
		}
		if last.Before(first) {
			last = first
		}
		return AllDay{First: first, Last: last}, true

	case raw.Date != "":
		day, err := parseLooseDate(raw.Date, loc)
		if err != nil {
			return nil, false
		}
		return AllDay{First: day, Last: day}, true
	}
	return nil, false
}

func parseDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, loc)
}

// parseLooseDate accepts a bare date or a full timestamp and returns the
// calendar day it falls on in loc.
func parseLooseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := parseDateTime(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

func displayType(raw RawEvent, allDay bool) string {
	switch {
	case allDay:
		return TypeAllDay
	case strings.Contains(raw.Source, "#holiday"):
		return TypeHoliday
	case strings.Contains(raw.Source, "#contacts"), raw.EventType == "Birthday":
		return TypeBirthday
	default:
		return TypeDefault
	}
}

// DetectEventType guesses a coarse label for a Google event from its title.
func DetectEventType(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, "meeting", "sync", "standup"):
		return "Meeting"
	case strings.Contains(t, "birthday"):
		return "Birthday"
	case containsAny(t, "interview", "screening"):
		return "Interview"
	case containsAny(t, "party", "dinner", "lunch"):
		return "Social"
	default:
		return "Default"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}
