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
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/calendar"
	"github.com/smartcal/backend/internal/connection"
	"github.com/smartcal/backend/internal/localevents"
	"github.com/smartcal/backend/internal/models"
	"github.com/smartcal/backend/internal/oauthstate"
)

type fakePreparer struct {
	mu   sync.Mutex
	prep models.Preparation
	err  error
	got  []models.PreparationInput
}

func (f *fakePreparer) GeneratePreparation(_ context.Context, in models.PreparationInput) (models.Preparation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, in)
	return f.prep, f.err
}

type fakeClassifier struct {
	result models.ClassificationResult
	err    error
}

func (f *fakeClassifier) Classify(context.Context, string, string) (models.ClassificationResult, error) {
	return f.result, f.err
}

type fakeCalendar struct {
	mu       sync.Mutex
	events   []calendar.RawEvent
	event    *calendar.RawEvent
	err      error
	validErr error
	tokens   []string
	windows  [][2]time.Time
}

func (f *fakeCalendar) record(ts oauth2.TokenSource) {
	tok, _ := ts.Token()
	f.tokens = append(f.tokens, tok.AccessToken)
}

func (f *fakeCalendar) ListEvents(_ context.Context, ts oauth2.TokenSource, _ string, timeMin, timeMax time.Time) ([]calendar.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ts)
	f.windows = append(f.windows, [2]time.Time{timeMin, timeMax})
	return f.events, f.err
}

func (f *fakeCalendar) GetEvent(_ context.Context, ts oauth2.TokenSource, _, _ string) (calendar.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ts)
	if f.err != nil {
		return calendar.RawEvent{}, f.err
	}
	return *f.event, nil
}

func (f *fakeCalendar) ValidateToken(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, accessToken)
	return f.validErr
}

type fakeOAuth struct {
	exchangeErr error
	emailErr    error
}

func (f *fakeOAuth) Configured() bool { return true }

func (f *fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeOAuth) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "at-" + code, RefreshToken: "rt"}, nil
}

func (f *fakeOAuth) UserEmail(context.Context, *oauth2.Token) (string, error) {
	return "me@example.com", f.emailErr
}

type fakeConnections struct {
	mu        sync.Mutex
	connected map[string]*oauth2.Token
	list      []models.CalendarConnection
	err       error
}

func newFakeConnections() *fakeConnections {
	return &fakeConnections{connected: make(map[string]*oauth2.Token)}
}

func (f *fakeConnections) Connect(_ context.Context, userID, _ string, tok *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.connected[userID] = tok
	return nil
}

func (f *fakeConnections) List(context.Context, string) ([]models.CalendarConnection, error) {
	return f.list, f.err
}

func (f *fakeConnections) TokenSource(_ context.Context, userID string) (oauth2.TokenSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.connected[userID]
	if !ok {
		return nil, connection.ErrNotConnected
	}
	return oauth2.StaticTokenSource(tok), nil
}

type fakeStates struct {
	mu     sync.Mutex
	states map[string]string
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[string]string)}
}

func (f *fakeStates) Issue(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := "state-" + userID
	f.states[state] = userID
	return state, nil
}

func (f *fakeStates) Consume(_ context.Context, state string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.states[state]
	if !ok {
		return "", oauthstate.ErrInvalidState
	}
	delete(f.states, state)
	return uid, nil
}

type fakeCommute struct {
	info *models.CommuteInfo
	err  error
}

func (f *fakeCommute) Estimate(context.Context, string, string, string, string) (*models.CommuteInfo, error) {
	return f.info, f.err
}

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Reply(context.Context, string, models.EventContext, []models.ChatMessage) (string, error) {
	return f.reply, f.err
}

type fakeFinder struct {
	mu     sync.Mutex
	events []models.LocalEvent
	err    error
	reqs   []localevents.Request
}

func (f *fakeFinder) Find(_ context.Context, req localevents.Request) ([]models.LocalEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.events, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

var errBoom = errors.New("boom")

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestHandler(cfg HandlerConfig) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	h := NewHandler(cfg)
	h.now = func() time.Time { return fixedNow }
	return h
}

func do(t *testing.T, h *Handler, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	NewRouter(h, []string{"http://localhost:3000"}).ServeHTTP(rr, req)
	return rr
}

func withUser(id string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(UserIDHeader, id) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}
