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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

// ErrNoEvents is returned by WriteICS when there is nothing to export.
var ErrNoEvents = errors.New("no events to export")

// WriteICS encodes events as an iCalendar stream. All-day events use DATE
// values with the exclusive end day iCalendar expects.
func WriteICS(w io.Writer, events []Event, now time.Time) error {
	if len(events) == 0 {
		return ErrNoEvents
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//SmartCal//EN")

	for _, e := range events {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, e.ID)
		ve.Props.SetText(ical.PropSummary, e.Title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

		switch t := e.When.(type) {
		case AllDay:
			ve.Props.SetDate(ical.PropDateTimeStart, t.First)
			ve.Props.SetDate(ical.PropDateTimeEnd, addDays(t.Last, 1))
		case Timed:
			ve.Props.SetDateTime(ical.PropDateTimeStart, t.Start)
			ve.Props.SetDateTime(ical.PropDateTimeEnd, t.End)
		}

		if e.Description != "" {
			ve.Props.SetText(ical.PropDescription, e.Description)
		}
		if e.Location != "" {
			ve.Props.SetText(ical.PropLocation, e.Location)
		}
		cal.Children = append(cal.Children, ve)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
