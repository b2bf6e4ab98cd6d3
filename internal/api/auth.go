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
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smartcal/backend/internal/oauthstate"
	"github.com/smartcal/backend/internal/session"
)

var popupPage = template.Must(template.New("popup").Parse(`<html>
  <body>
    <script>
      window.opener.postMessage({{.}}, '*');
      window.close();
    </script>
  </body>
</html>
`))

type googleAuthRequest struct {
	AccessToken string `json:"access_token"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// GoogleAuth validates a browser-obtained access token and stores it in
// the session cookie.
func (h *Handler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "No access token provided")
		return
	}

	if err := h.calendar.ValidateToken(r.Context(), req.AccessToken); err != nil {
		slog.Warn("token validation failed", "error", err)
		writeErrorDetails(w, http.StatusUnauthorized, "Token validation failed", err.Error())
		return
	}

	if err := h.cookies.SetTokens(w, req.AccessToken); err != nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Authentication failed", err.Error())
		return
	}
	slog.Info("calendar session established")
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Authentication successful"})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearTokens(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type connectResponse struct {
	URL string `json:"url"`
}

// ConnectGoogle starts the calendar connection flow for X-User-ID and
// returns the consent URL.
func (h *Handler) ConnectGoogle(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.oauth == nil || !h.oauth.Configured() || h.states == nil || h.connections == nil {
		writeErrorDetails(w, http.StatusInternalServerError, "Invalid OAuth configuration", errUnavailable.Error())
		return
	}

	state, err := h.states.Issue(r.Context(), uid)
	if err != nil {
		slog.Error("failed to issue oauth state", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to initiate Google Calendar connection")
		return
	}

	h.cookies.SetState(w, state)
	writeJSON(w, http.StatusOK, connectResponse{URL: h.oauth.AuthCodeURL(state)})
}

// ConnectGoogleCallback completes the connection flow and answers with a
// page that reports the outcome to the opening window.
func (h *Handler) ConnectGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")

	if state == "" || state != session.State(r) || h.states == nil {
		slog.Warn("oauth callback with mismatched state")
		h.popup(w, "invalid_state", "")
		return
	}
	uid, err := h.states.Consume(r.Context(), state)
	if err != nil {
		if !errors.Is(err, oauthstate.ErrInvalidState) {
			slog.Error("failed to consume oauth state", "error", err)
		}
		h.popup(w, "invalid_state", "")
		return
	}

	if oauthErr := q.Get("error"); oauthErr != "" {
		slog.Warn("oauth provider returned error", "user_id", uid, "error", oauthErr)
		h.popup(w, "oauth_failed", firstNonEmpty(q.Get("error_description"), oauthErr))
		return
	}
	code := q.Get("code")
	if code == "" {
		h.popup(w, "no_code", "")
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("token exchange failed", "user_id", uid, "error", err)
		h.popup(w, "token_exchange_failed", "Failed to exchange authorization code. Please check server logs.")
		return
	}
	email, err := h.oauth.UserEmail(r.Context(), tok)
	if err != nil {
		slog.Error("failed to fetch user info", "user_id", uid, "error", err)
		h.popup(w, "user_info_failed", "")
		return
	}
	if err := h.connections.Connect(r.Context(), uid, email, tok); err != nil {
		slog.Error("failed to store connection", "user_id", uid, "error", err)
		h.popup(w, "token_storage_failed", "")
		return
	}

	h.cookies.ClearState(w)
	h.popup(w, "", "")
}

// popup renders the callback page; an empty code reports success.
func (h *Handler) popup(w http.ResponseWriter, code, description string) {
	msg := map[string]string{"type": "oauth_success"}
	if code != "" {
		msg = map[string]string{"type": "oauth_error", "error": code}
		if description != "" {
			msg["description"] = description
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := popupPage.Execute(w, msg); err != nil {
		slog.Error("failed to render callback page", "error", err)
	}
}

type connectionView struct {
	Provider      string    `json:"provider"`
	ProviderEmail string    `json:"provider_email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type connectionsResponse struct {
	Connections []connectionView `json:"connections"`
}

// CalendarConnections lists the providers X-User-ID has connected.
func (h *Handler) CalendarConnections(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.connections == nil {
		writeJSON(w, http.StatusOK, connectionsResponse{Connections: []connectionView{}})
		return
	}

	conns, err := h.connections.List(r.Context(), uid)
	if err != nil {
		slog.Error("failed to list connections", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch calendar connections")
		return
	}

	views := make([]connectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, connectionView{
			Provider:      c.Provider,
			ProviderEmail: c.ProviderEmail,
			CreatedAt:     c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, connectionsResponse{Connections: views})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
