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
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/smartcal/backend/internal/models"
	"github.com/smartcal/backend/internal/session"
)

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TestGoogleAuth verifies token validation and the session cookie.
func TestGoogleAuth(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		validErr error
		wantCode int
		wantMsg  string
	}{
		{"ok", `{"access_token":"ya29.tok"}`, nil, 200, "Authentication successful"},
		{"invalid json", `{"access_token":`, nil, 400, "Invalid JSON in request body"},
		{"missing token", `{}`, nil, 400, "No access token provided"},
		{"rejected token", `{"access_token":"bad"}`, errBoom, 401, "Token validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(HandlerConfig{Calendar: &fakeCalendar{validErr: tt.validErr}})
			rr := do(t, h, http.MethodPost, "/api/auth/google", tt.body)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if !strings.Contains(rr.Body.String(), tt.wantMsg) {
				t.Errorf("body %s does not mention %q", rr.Body, tt.wantMsg)
			}
			c := findCookie(rr.Result().Cookies(), session.TokenCookie)
			if (c != nil) != (tt.wantCode == 200) {
				t.Errorf("session cookie set = %v", c != nil)
			}
			if c != nil && !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		})
	}
}

// TestLogout verifies the session cookie is cleared.
func TestLogout(t *testing.T) {
	h := newTestHandler(HandlerConfig{})
	rr := do(t, h, http.MethodPost, "/api/auth/logout", "", withCookie(tokenCookie("t")))
	if strings.TrimSpace(rr.Body.String()) != `{"success":true}` {
		t.Errorf("body = %s", rr.Body)
	}
	c := findCookie(rr.Result().Cookies(), session.TokenCookie)
	if c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
}

// TestConnectGoogle verifies the consent URL and state cookie.
func TestConnectGoogle(t *testing.T) {
	states := newFakeStates()
	h := newTestHandler(HandlerConfig{OAuth: &fakeOAuth{}, States: states, Connections: newFakeConnections()})

	if rr := do(t, h, http.MethodGet, "/api/calendar/connect/google", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/api/calendar/connect/google", "", withUser("u1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rr.Code, rr.Body)
	}
	var resp struct {
		URL string `json:"url"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.URL != "https://accounts.example.com/auth?state=state-u1" {
		t.Errorf("url = %q", resp.URL)
	}
	c := findCookie(rr.Result().Cookies(), session.StateCookie)
	if c == nil || c.Value != "state-u1" {
		t.Errorf("state cookie = %+v", c)
	}

	unconfigured := newTestHandler(HandlerConfig{})
	rr = do(t, unconfigured, http.MethodGet, "/api/calendar/connect/google", "", withUser("u1"))
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "Invalid OAuth configuration") {
		t.Errorf("unconfigured: got %d %s", rr.Code, rr.Body)
	}
}

// TestConnectGoogleCallback verifies each outcome reported to the popup.
func TestConnectGoogleCallback(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		cookie string
		oauth  *fakeOAuth
		store  error
		want   string
	}{
		{"success", "state=state-u1&code=abc", "state-u1", &fakeOAuth{}, nil, `"type":"oauth_success"`},
		{"missing cookie", "state=state-u1&code=abc", "", &fakeOAuth{}, nil, `"error":"invalid_state"`},
		{"mismatched cookie", "state=state-u1&code=abc", "state-u2", &fakeOAuth{}, nil, `"error":"invalid_state"`},
		{"unknown state", "state=forged&code=abc", "forged", &fakeOAuth{}, nil, `"error":"invalid_state"`},
		{"provider error", "state=state-u1&error=access_denied", "state-u1", &fakeOAuth{}, nil, `"description":"access_denied"`},
		{"no code", "state=state-u1", "state-u1", &fakeOAuth{}, nil, `"error":"no_code"`},
		{"exchange failure", "state=state-u1&code=abc", "state-u1", &fakeOAuth{exchangeErr: errBoom}, nil, `"error":"token_exchange_failed"`},
		{"user info failure", "state=state-u1&code=abc", "state-u1", &fakeOAuth{emailErr: errBoom}, nil, `"error":"user_info_failed"`},
		{"storage failure", "state=state-u1&code=abc", "state-u1", &fakeOAuth{}, errBoom, `"error":"token_storage_failed"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := newFakeStates()
			states.Issue(context.Background(), "u1")
			conns := newFakeConnections()
			conns.err = tt.store
			h := newTestHandler(HandlerConfig{OAuth: tt.oauth, States: states, Connections: conns})

			var mutate []func(*http.Request)
			if tt.cookie != "" {
				mutate = append(mutate, withCookie(&http.Cookie{Name: session.StateCookie, Value: tt.cookie}))
			}
			rr := do(t, h, http.MethodGet, "/api/calendar/connect/google/callback?"+tt.query, "", mutate...)
			if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
				t.Fatalf("got %d %q", rr.Code, rr.Header().Get("Content-Type"))
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("body missing %s:\n%s", tt.want, rr.Body)
			}
			if tt.name == "success" {
				if tok := conns.connected["u1"]; tok == nil || tok.AccessToken != "at-abc" {
					t.Errorf("connection not stored: %+v", tok)
				}
			}
		})
	}
}

// TestConnectGoogleCallback_StateSingleUse verifies a state cannot be
// replayed.
func TestConnectGoogleCallback_StateSingleUse(t *testing.T) {
	states := newFakeStates()
	states.Issue(context.Background(), "u1")
	h := newTestHandler(HandlerConfig{OAuth: &fakeOAuth{}, States: states, Connections: newFakeConnections()})
	cookie := withCookie(&http.Cookie{Name: session.StateCookie, Value: "state-u1"})

	first := do(t, h, http.MethodGet, "/api/calendar/connect/google/callback?state=state-u1&code=abc", "", cookie)
	second := do(t, h, http.MethodGet, "/api/calendar/connect/google/callback?state=state-u1&code=abc", "", cookie)
	if !strings.Contains(first.Body.String(), "oauth_success") {
		t.Errorf("first callback failed:\n%s", first.Body)
	}
	if !strings.Contains(second.Body.String(), "invalid_state") {
		t.Errorf("replayed callback accepted:\n%s", second.Body)
	}
}

// TestCalendarConnections verifies the listing shape.
func TestCalendarConnections(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	conns := newFakeConnections()
	conns.list = []models.CalendarConnection{{
		Provider:      "google",
		ProviderEmail: "me@example.com",
		AccessToken:   "secret",
		CreatedAt:     created,
	}}
	h := newTestHandler(HandlerConfig{Connections: conns})

	if rr := do(t, h, http.MethodGet, "/api/calendar/connections", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/api/calendar/connections", "", withUser("u1"))
	want := `{"connections":[{"provider":"google","provider_email":"me@example.com","created_at":"2025-01-02T03:04:05Z"}]}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}

	none := newTestHandler(HandlerConfig{})
	rr = do(t, none, http.MethodGet, "/api/calendar/connections", "", withUser("u1"))
	if got := strings.TrimSpace(rr.Body.String()); got != `{"connections":[]}` {
		t.Errorf("body = %s", got)
	}
}
