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
	"sort"
	"time"
)

// SortOptions adjusts the ordering of a day's events.
type SortOptions struct {
	// DemotePast moves events that ended before Now to the bottom.
	DemotePast bool
	Now        time.Time
}

// OnDay reports whether e occurs on the calendar day containing day.
func OnDay(e Event, day time.Time) bool {
	dayStart := startOfDay(day)
	dayEnd := addDays(dayStart, 1).Add(-time.Millisecond)

	switch w := e.When.(type) {
	case AllDay:
		first := startOfDay(w.First.In(dayStart.Location()))
		last := startOfDay(w.Last.In(dayStart.Location()))
		return !dayStart.Before(first) && !dayStart.After(last)
	case Timed:
		if startOfDay(w.Start.In(dayStart.Location())).Equal(dayStart) {
			return true
		}
		return w.Start.Before(dayEnd) && w.End.After(dayStart)
	}
	return false
}

// EventsForDay returns the events occurring on day: all-day events first,
// then timed events by start time.
func EventsForDay(day time.Time, events []Event, opts SortOptions) []Event {
	var out []Event
	for _, e := range events {
		if OnDay(e, day) {
			out = append(out, e)
		}
	}
	SortDay(out, opts)
	return out
}

// SortDay orders events in place for display within a single day.
func SortDay(events []Event, opts SortOptions) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if opts.DemotePast {
			pa, pb := a.End().Before(opts.Now), b.End().Before(opts.Now)
			if pa != pb {
				return pb
			}
		}
		if a.IsAllDay() != b.IsAllDay() {
			return a.IsAllDay()
		}
		return a.Start().Before(b.Start())
	})
}
