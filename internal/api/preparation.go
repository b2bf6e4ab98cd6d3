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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/smartcal/backend/internal/localevents"
	"github.com/smartcal/backend/internal/models"
)

const holidayType = "holiday"

// Preparation generates preparation materials for an event. Holiday
// preparations are enriched with local events and fitness preparations
// with commute estimates; neither enrichment can fail the request.
func (h *Handler) Preparation(w http.ResponseWriter, r *http.Request) {
	var in models.PreparationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	in.EventTitle = strings.TrimSpace(in.EventTitle)
	if in.EventTitle == "" {
		slog.Warn("preparation request without title")
		writeErrorDetails(w, http.StatusBadRequest, "Please provide Event Title",
			map[string][]string{"missingFields": {"Event Title"}})
		return
	}
	in.EventDescription = strings.TrimSpace(in.EventDescription)
	if in.Attendees == nil {
		in.Attendees = []string{}
	}
	if in.Location == "" {
		in.Location = h.defaultLocation
	}

	slog.Info("generating preparation",
		"title", in.EventTitle,
		"event_type", in.EventType,
		"user_role", in.UserRole,
	)

	prep, err := h.preparer.GeneratePreparation(r.Context(), in)
	if err != nil {
		slog.Error("preparation failed", "title", in.EventTitle, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if fitness, ok := prep.(*models.FitnessPreparation); ok {
		h.addCommute(r.Context(), fitness, in)
	}
	if strings.EqualFold(strings.TrimSpace(in.EventType), holidayType) {
		prep = h.addLocalEvents(r.Context(), prep, in)
	}

	writeJSON(w, http.StatusOK, prep)
}

func (h *Handler) addCommute(ctx context.Context, p *models.FitnessPreparation, in models.PreparationInput) {
	if h.commute == nil || p.LocationDetails == nil || p.LocationDetails.Address == "" {
		return
	}
	info, err := h.commute.Estimate(ctx, p.LocationDetails.Address, in.Location, in.EventDate, in.EventTime)
	if err != nil {
		slog.Warn("commute estimate failed, continuing without it",
			"address", p.LocationDetails.Address,
			"error", err,
		)
		return
	}
	p.LocationDetails.CommuteInfo = info
}

func (h *Handler) addLocalEvents(ctx context.Context, prep models.Preparation, in models.PreparationInput) models.Preparation {
	if h.holidayEvents == nil {
		return prep
	}
	events, err := h.holidayEvents.Find(ctx, localevents.Request{
		EventType: in.EventTitle,
		Location:  in.Location,
		Date:      in.EventDate,
	})
	if err != nil {
		slog.Warn("local events lookup failed, continuing without them",
			"title", in.EventTitle,
			"error", err,
		)
		return prep
	}

	holiday, ok := prep.(*models.HolidayPreparation)
	if !ok {
		holiday = &models.HolidayPreparation{
			PreparationOutput:    *prep.Base(),
			TraditionSuggestions: []string{},
		}
	}
	holiday.LocalEvents = events
	slog.Info("added local events to holiday preparation", "count", len(events))
	return holiday
}

type classifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ClassifyEvent infers the event type and user role for an event.
func (h *Handler) ClassifyEvent(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Event title is required")
		return
	}

	result, err := h.classifier.Classify(r.Context(), req.Title, req.Description)
	if err != nil {
		slog.Error("classification failed", "title", req.Title, "error", err)
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to classify event", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	Message      string               `json:"message"`
	EventContext *models.EventContext `json:"eventContext"`
	History      []models.ChatMessage `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat answers a question about an event.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Message == "" || req.EventContext == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	reply, err := h.chat.Reply(r.Context(), req.Message, *req.EventContext, req.History)
	if err != nil {
		slog.Error("chat failed", "user_id", userID(r), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}
