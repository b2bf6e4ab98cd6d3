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

package calendar

import (
	"fmt"
	"time"
)

const (
	// HourHeight is the pixel height of one hour in day and week views.
	HourHeight = 60
	// MinEventHeight keeps very short events clickable.
	MinEventHeight = 15
)

// Views supported by BuildGrid.
const (
	ViewDay   = "day"
	ViewWeek  = "week"
	ViewMonth = "month"
)

// Placement is the vertical position of a timed event within a day column.
type Placement struct {
	Top    int `json:"top"`
	Height int `json:"height"`
}

// PlacedEvent is an event as it appears in one grid cell.
type PlacedEvent struct {
	Event     Event      `json:"event"`
	Placement *Placement `json:"placement,omitempty"`
}

// DayCell is one day of a grid.
type DayCell struct {
	Date    string        `json:"date"`
	InRange bool          `json:"inRange"`
	IsToday bool          `json:"isToday"`
	Events  []PlacedEvent `json:"events"`
}

// Grid is a day, week or month layout.
type Grid struct {
	View  string    `json:"view"`
	Start string    `json:"start"`
	End   string    `json:"end"`
	Days  []DayCell `json:"days"`
}

// Place computes the pixel position of e within the column for day.
// All-day events have no placement.
func Place(e Event, day time.Time) *Placement {
	t, ok := e.When.(Timed)
	if !ok {
		return nil
	}
	dayStart := startOfDay(day)
	dayEnd := addDays(dayStart, 1)

	start, end := t.Start.In(dayStart.Location()), t.End.In(dayStart.Location())
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}

	minutes := func(d time.Duration) int { return int(d / time.Minute) }
	top := minutes(start.Sub(dayStart)) * HourHeight / 60
	height := minutes(end.Sub(start)) * HourHeight / 60
	if height < MinEventHeight {
		height = MinEventHeight
	}
	return &Placement{Top: top, Height: height}
}

// StartOfWeek returns the Sunday that begins t's week.
func StartOfWeek(t time.Time) time.Time {
	return addDays(startOfDay(t), -int(t.Weekday()))
}

// BuildGrid lays out events for the view containing date. Dates are
// interpreted in date's location.
func BuildGrid(view string, date time.Time, events []Event, opts SortOptions) (Grid, error) {
	var first, last, rangeFirst, rangeLast time.Time
	switch view {
	case ViewDay:
		first = startOfDay(date)
		last = first
		rangeFirst, rangeLast = first, last
	case ViewWeek:
		first = StartOfWeek(date)
		last = addDays(first, 6)
		rangeFirst, rangeLast = first, last
	case ViewMonth:
		y, m, _ := date.Date()
		rangeFirst = time.Date(y, m, 1, 0, 0, 0, 0, date.Location())
		rangeLast = addDays(time.Date(y, m+1, 1, 0, 0, 0, 0, date.Location()), -1)
		first = StartOfWeek(rangeFirst)
		last = addDays(StartOfWeek(rangeLast), 6)
	default:
		return Grid{}, fmt.Errorf("unknown calendar view %q", view)
	}

	today := startOfDay(opts.Now.In(date.Location()))
	g := Grid{View: view, Start: first.Format(time.DateOnly), End: last.Format(time.DateOnly)}
	for day := first; !day.After(last); day = addDays(day, 1) {
		cell := DayCell{
			Date:    day.Format(time.DateOnly),
			InRange: !day.Before(rangeFirst) && !day.After(rangeLast),
			IsToday: !opts.Now.IsZero() && day.Equal(today),
			Events:  []PlacedEvent{},
		}
		for _, e := range EventsForDay(day, events, opts) {
			cell.Events = append(cell.Events, PlacedEvent{Event: e, Placement: Place(e, day)})
		}
		g.Days = append(g.Days, cell)
	}
	return g, nil
}
