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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/calendar"
	"github.com/smartcal/backend/internal/connection"
	"github.com/smartcal/backend/internal/google"
	"github.com/smartcal/backend/internal/session"
)

const (
	defaultLookback  = 6 // months
	defaultLookahead = 7 * 24 * time.Hour
	gridMargin       = 6 * 7 // days fetched either side of a grid date
)

type eventsResponse struct {
	Events []calendar.Event `json:"events"`
}

// tokenSource authenticates a calendar request, preferring the browser
// session cookie over a stored connection for X-User-ID.
func (h *Handler) tokenSource(r *http.Request) (oauth2.TokenSource, error) {
	if tok, err := session.AccessToken(r); err == nil {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok}), nil
	}
	if uid := userID(r); uid != "" && h.connections != nil {
		return h.connections.TokenSource(r.Context(), uid)
	}
	return nil, session.ErrNoSession
}

func isAuthError(err error) bool {
	return errors.Is(err, session.ErrNoSession) ||
		errors.Is(err, connection.ErrNotConnected) ||
		errors.Is(err, google.ErrUnauthorized)
}

// window reads timeMin/timeMax (RFC3339), defaulting to six months back
// through one week ahead.
func (h *Handler) window(r *http.Request) (time.Time, time.Time, error) {
	now := h.now()
	timeMin := now.AddDate(0, -defaultLookback, 0)
	timeMax := now.Add(defaultLookahead)

	q := r.URL.Query()
	if v := q.Get("timeMin"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		timeMin = t
	}
	if v := q.Get("timeMax"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		timeMax = t
	}
	return timeMin, timeMax, nil
}

func (h *Handler) fetchEvents(ctx context.Context, ts oauth2.TokenSource, timeMin, timeMax time.Time, loc *time.Location) ([]calendar.Event, error) {
	raws, err := h.calendar.ListEvents(ctx, ts, google.PrimaryCalendar, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	return calendar.NormalizeAll(raws, loc), nil
}

// CalendarEvents lists the caller's normalized calendar events.
func (h *Handler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	ts, err := h.tokenSource(r)
	if err != nil {
		h.calendarError(w, err)
		return
	}
	timeMin, timeMax, err := h.window(r)
	if err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid time range", err.Error())
		return
	}

	events, err := h.fetchEvents(r.Context(), ts, timeMin, timeMax, h.loc)
	if err != nil {
		h.calendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

// CalendarGrid lays out events for a day, week or month view.
func (h *Handler) CalendarGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc := h.loc
	if tz := q.Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeErrorDetails(w, http.StatusBadRequest, "Invalid time zone", err.Error())
			return
		}
		loc = l
	}

	date := h.now().In(loc)
	if v := q.Get("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, loc)
		if err != nil {
			writeErrorDetails(w, http.StatusBadRequest, "Invalid date", err.Error())
			return
		}
		date = d
	}

	view := q.Get("view")
	if view == "" {
		view = calendar.ViewMonth
	}
	switch view {
	case calendar.ViewDay, calendar.ViewWeek, calendar.ViewMonth:
	default:
		writeError(w, http.StatusBadRequest, "Invalid view")
		return
	}

	ts, err := h.tokenSource(r)
	if err != nil {
		h.calendarError(w, err)
		return
	}
	events, err := h.fetchEvents(r.Context(), ts, date.AddDate(0, 0, -gridMargin), date.AddDate(0, 0, gridMargin+1), loc)
	if err != nil {
		h.calendarError(w, err)
		return
	}

	grid, err := calendar.BuildGrid(view, date, events, calendar.SortOptions{
		DemotePast: q.Get("demotePast") == "true",
		Now:        h.now(),
	})
	if err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid view", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// CalendarICS exports the caller's events as an iCalendar file.
func (h *Handler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	ts, err := h.tokenSource(r)
	if err != nil {
		h.calendarError(w, err)
		return
	}
	timeMin, timeMax, err := h.window(r)
	if err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid time range", err.Error())
		return
	}
	events, err := h.fetchEvents(r.Context(), ts, timeMin, timeMax, h.loc)
	if err != nil {
		h.calendarError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, events, h.now()); err != nil {
		if errors.Is(err, calendar.ErrNoEvents) {
			writeError(w, http.StatusNotFound, "No events to export")
			return
		}
		slog.Error("ics export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="smartcal.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// EventDetail returns a single event with display strings.
func (h *Handler) EventDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "Event ID is required")
		return
	}

	ts, err := h.tokenSource(r)
	if err != nil {
		h.calendarError(w, err)
		return
	}

	raw, err := h.calendar.GetEvent(r.Context(), ts, google.PrimaryCalendar, id)
	if errors.Is(err, google.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		if isAuthError(err) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		slog.Error("failed to fetch event", "event_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}

	event, ok := calendar.Normalize(raw, h.loc)
	if !ok {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, calendar.NewDetail(event))
}

func (h *Handler) calendarError(w http.ResponseWriter, err error) {
	if isAuthError(err) {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	slog.Error("failed to fetch calendar events", "error", err)
	writeErrorDetails(w, http.StatusInternalServerError, "Failed to fetch calendar events", err.Error())
}
