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

package models

import "time"

// LocalEvent is a nearby happening returned by the local events lookup.
type LocalEvent struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	Link        string   `json:"link,omitempty"`
	Source      string   `json:"source"`
	Distance    string   `json:"distance,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Attendees   *int     `json:"attendees,omitempty"`
}

// CommuteInfo holds human-readable travel estimates to an event.
type CommuteInfo struct {
	Distance        string   `json:"distance,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	TrafficDuration string   `json:"trafficDuration,omitempty"`
	TransitOptions  []string `json:"transitOptions"`
}

// ChatMessage is one turn of an event chat history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EventContext describes the event a chat conversation is about.
type EventContext struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Attendees   []string `json:"attendees"`
	Location    string   `json:"location,omitempty"`
}

// CalendarConnection is a stored OAuth credential bundle for one user and
// calendar provider.
type CalendarConnection struct {
	ID            int64
	UserID        string
	Provider      string
	ProviderEmail string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpiresWithin reports whether the access token expires before now+d.
func (c *CalendarConnection) ExpiresWithin(now time.Time, d time.Duration) bool {
	return c.ExpiresAt.Before(now.Add(d))
}
