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

package classify

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/models"
)

// SalvageConfidence is reported when fields were recovered by pattern
// matching or replaced with defaults.
const SalvageConfidence = 0.5

var (
	eventTypePattern = regexp.MustCompile(`"eventType":\s*"([^"]+)"`)
	userRolePattern  = regexp.MustCompile(`"userRole":\s*"([^"]+)"`)

	errIncomplete = errors.New("classification missing required fields")
)

type rawClassification struct {
	EventType  string   `json:"eventType"`
	UserRole   string   `json:"userRole"`
	Confidence *float64 `json:"confidence"`
}

// Parse turns a raw model answer into a valid ClassificationResult. It
// tries, in order: the {...} span as JSON with all fields present, then
// pattern extraction of the fields, then defaults. The result always
// carries an allowed event type and role.
func Parse(content string) models.ClassificationResult {
	span, err := llm.ObjectSpan(content)
	if err != nil {
		return salvage(content)
	}
	r, err := parseStrict(span)
	if err != nil {
		return salvage(span)
	}
	return Normalize(r)
}

func parseStrict(span string) (models.ClassificationResult, error) {
	var raw rawClassification
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return models.ClassificationResult{}, err
	}
	if raw.EventType == "" || raw.UserRole == "" || raw.Confidence == nil {
		return models.ClassificationResult{}, errIncomplete
	}
	return models.ClassificationResult{
		EventType:  raw.EventType,
		UserRole:   raw.UserRole,
		Confidence: *raw.Confidence,
	}, nil
}

func salvage(content string) models.ClassificationResult {
	r := models.ClassificationResult{
		EventType:  models.DefaultEventType,
		UserRole:   models.DefaultUserRole,
		Confidence: SalvageConfidence,
	}
	if m := eventTypePattern.FindStringSubmatch(content); m != nil {
		r.EventType = m[1]
	}
	if m := userRolePattern.FindStringSubmatch(content); m != nil {
		r.UserRole = m[1]
	}
	return Normalize(r)
}

// Normalize lower-cases both fields, singularizes a plural event type,
// replaces values outside the allowed sets with defaults (capping
// confidence at 0.5) and clamps confidence to [0, 1]. It is idempotent.
func Normalize(r models.ClassificationResult) models.ClassificationResult {
	r.EventType = strings.ToLower(strings.TrimSpace(r.EventType))
	r.UserRole = strings.ToLower(strings.TrimSpace(r.UserRole))

	if strings.HasSuffix(r.EventType, "s") {
		if singular := strings.TrimSuffix(r.EventType, "s"); models.IsEventType(singular) {
			r.EventType = singular
		}
	}

	if !models.IsEventType(r.EventType) {
		r.EventType = models.DefaultEventType
		r.Confidence = min(r.Confidence, SalvageConfidence)
	}
	if !models.IsUserRole(r.UserRole) {
		r.UserRole = models.DefaultUserRole
		r.Confidence = min(r.Confidence, SalvageConfidence)
	}

	r.Confidence = max(0, min(1, r.Confidence))
	return r
}
