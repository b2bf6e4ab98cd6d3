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

import "slices"

// EventTypes is the closed set of event types the classifier may return.
var EventTypes = []string{
	"meeting", "presentation", "interview", "workshop", "conference",
	"client", "team", "1on1", "social", "holiday", "learning",
	"business", "health", "wellness",
}

// UserRoles is the closed set of roles the classifier may return.
var UserRoles = []string{
	"host", "presenter", "participant", "manager", "team_member",
	"client", "interviewer", "interviewee",
}

const (
	DefaultEventType = "meeting"
	DefaultUserRole  = "host"
)

// ClassificationResult is the normalized output of event classification.
type ClassificationResult struct {
	EventType  string  `json:"eventType"`
	UserRole   string  `json:"userRole"`
	Confidence float64 `json:"confidence"`
}

func IsEventType(s string) bool { return slices.Contains(EventTypes, s) }

func IsUserRole(s string) bool { return slices.Contains(UserRoles, s) }
