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

import "time"

const (
	NoLocation = "No location specified"

	displayDateLayout = "Monday, January 2, 2006"
	displayTimeLayout = "3:04 PM"
)

// Detail is the event detail view served for a single event.
type Detail struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
}

// NewDetail renders human-readable date and time strings for e.
func NewDetail(e Event) Detail {
	d := Detail{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    firstNonEmpty(e.Location, NoLocation),
		Attendees:   e.Attendees,
	}
	if d.Attendees == nil {
		d.Attendees = []string{}
	}
	switch w := e.When.(type) {
	case AllDay:
		d.Date = w.First.Format(time.DateOnly)
		d.Time = "All day"
	case Timed:
		d.Date = w.Start.Format(displayDateLayout)
		d.Time = w.Start.Format(displayTimeLayout) + " - " + w.End.Format(displayTimeLayout)
	}
	return d
}
