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

// Package localevents finds public events near a location that relate to
// a calendar event, either through Google Places (plus Eventbrite) or a
// search-grounded LLM.
package localevents

import (
	"context"

	"github.com/smartcal/backend/internal/models"
)

// DefaultRadius is the search radius in meters.
const DefaultRadius = 5000

// Request describes what to look for.
type Request struct {
	EventType string `json:"eventType"`
	Location  string `json:"location,omitempty"`
	Date      string `json:"date,omitempty"`
	Radius    uint   `json:"radius,omitempty"`
}

// Finder looks up local events.
type Finder interface {
	Find(ctx context.Context, req Request) ([]models.LocalEvent, error)
}
