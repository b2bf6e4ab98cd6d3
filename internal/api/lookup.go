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
	"log/slog"
	"net/http"

	"github.com/smartcal/backend/internal/commute"
	"github.com/smartcal/backend/internal/localevents"
	"github.com/smartcal/backend/internal/models"
)

type commuteRequest struct {
	Destination string `json:"destination"`
	Origin      string `json:"origin"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Commute estimates travel to an event location.
func (h *Handler) Commute(w http.ResponseWriter, r *http.Request) {
	var req commuteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Destination == "" {
		writeError(w, http.StatusBadRequest, "Destination is required")
		return
	}
	if h.commute == nil {
		writeError(w, http.StatusInternalServerError, commute.ErrNotConfigured.Error())
		return
	}

	info, err := h.commute.Estimate(r.Context(), req.Destination, req.Origin, req.Date, req.Time)
	if err != nil {
		slog.Error("commute estimate failed", "destination", req.Destination, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type localEventsResponse struct {
	Events []models.LocalEvent `json:"events"`
}

// LocalEvents finds nearby venues and listings for an event type.
func (h *Handler) LocalEvents(w http.ResponseWriter, r *http.Request) {
	h.findEvents(w, r, h.localEvents, "Failed to fetch local events")
}

// PerplexityEvents asks a search-grounded model for nearby events.
func (h *Handler) PerplexityEvents(w http.ResponseWriter, r *http.Request) {
	h.findEvents(w, r, h.perplexity, "Failed to fetch events")
}

func (h *Handler) findEvents(w http.ResponseWriter, r *http.Request, finder localevents.Finder, fallback string) {
	var req localevents.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "Event type is required")
		return
	}
	if finder == nil {
		writeError(w, http.StatusInternalServerError, fallback)
		return
	}

	events, err := finder.Find(r.Context(), req)
	if err != nil {
		slog.Error("local events lookup failed", "event_type", req.EventType, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []models.LocalEvent{}
	}
	writeJSON(w, http.StatusOK, localEventsResponse{Events: events})
}
