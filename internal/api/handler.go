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

// Package api serves the SmartCal JSON HTTP API: preparation, event
// classification, calendar views, Google Calendar connections, commute
// and local event lookups, and event chat.
//
// Requests are not authenticated here. The application user comes from the
// X-User-ID header, so the service must sit behind a gateway that sets the
// header for authenticated callers and strips it from everything else.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/calendar"
	"github.com/smartcal/backend/internal/localevents"
	"github.com/smartcal/backend/internal/models"
	"github.com/smartcal/backend/internal/session"
)

// UserIDHeader carries the application user as asserted by the fronting
// gateway. Its value is trusted as-is.
const UserIDHeader = "X-User-ID"

// Preparer generates preparation materials. *agent.Registry implements it.
type Preparer interface {
	GeneratePreparation(ctx context.Context, in models.PreparationInput) (models.Preparation, error)
}

// Classifier classifies an event title and description.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (models.ClassificationResult, error)
}

// CalendarAPI reads events from the calendar provider.
type CalendarAPI interface {
	ListEvents(ctx context.Context, ts oauth2.TokenSource, calendarID string, timeMin, timeMax time.Time) ([]calendar.RawEvent, error)
	GetEvent(ctx context.Context, ts oauth2.TokenSource, calendarID, eventID string) (calendar.RawEvent, error)
	ValidateToken(ctx context.Context, accessToken string) error
}

// OAuthFlow runs the provider authorization-code flow.
type OAuthFlow interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserEmail(ctx context.Context, tok *oauth2.Token) (string, error)
}

// Connections manages stored calendar connections.
type Connections interface {
	Connect(ctx context.Context, userID, email string, tok *oauth2.Token) error
	List(ctx context.Context, userID string) ([]models.CalendarConnection, error)
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

// StateStore issues and consumes OAuth state values.
type StateStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, state string) (string, error)
}

// CommuteEstimator computes travel estimates.
type CommuteEstimator interface {
	Estimate(ctx context.Context, destination, origin, date, timeRange string) (*models.CommuteInfo, error)
}

// Chatter answers questions about an event.
type Chatter interface {
	Reply(ctx context.Context, message string, event models.EventContext, history []models.ChatMessage) (string, error)
}

// Pinger is a dependency checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig holds the dependencies of the API. Optional dependencies
// may be nil; their endpoints then answer with an error.
type HandlerConfig struct {
	Preparer    Preparer
	Classifier  Classifier
	Calendar    CalendarAPI
	OAuth       OAuthFlow
	Connections Connections
	States      StateStore
	Commute     CommuteEstimator
	Chat        Chatter
	// LocalEvents serves /api/local-events.
	LocalEvents localevents.Finder
	// Perplexity serves /api/perplexity-events.
	Perplexity localevents.Finder
	// HolidayEvents enriches holiday preparations.
	HolidayEvents localevents.Finder
	// Health maps a dependency name to its check.
	Health map[string]Pinger

	SecureCookies   bool
	DefaultLocation string
	Location        *time.Location
}

// Handler serves the API endpoints.
type Handler struct {
	preparer      Preparer
	classifier    Classifier
	calendar      CalendarAPI
	oauth         OAuthFlow
	connections   Connections
	states        StateStore
	commute       CommuteEstimator
	chat          Chatter
	localEvents   localevents.Finder
	perplexity    localevents.Finder
	holidayEvents localevents.Finder
	health        map[string]Pinger

	cookies         session.Cookies
	defaultLocation string
	loc             *time.Location
	now             func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		preparer:        cfg.Preparer,
		classifier:      cfg.Classifier,
		calendar:        cfg.Calendar,
		oauth:           cfg.OAuth,
		connections:     cfg.Connections,
		states:          cfg.States,
		commute:         cfg.Commute,
		chat:            cfg.Chat,
		localEvents:     cfg.LocalEvents,
		perplexity:      cfg.Perplexity,
		holidayEvents:   cfg.HolidayEvents,
		health:          cfg.Health,
		cookies:         session.Cookies{Secure: cfg.SecureCookies},
		defaultLocation: cfg.DefaultLocation,
		loc:             cfg.Location,
		now:             time.Now,
	}
	if h.defaultLocation == "" {
		h.defaultLocation = models.DefaultLocation
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	return h
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorBody{Error: message})
}

func writeErrorDetails(w http.ResponseWriter, code int, message string, details any) {
	writeJSON(w, code, errorBody{Error: message, Details: details})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func userID(r *http.Request) string {
	return r.Header.Get(UserIDHeader)
}

var errUnavailable = errors.New("service not configured")

// Serve starts the API server on the given port. ready is closed once the
// listener is bound; done is closed after ctx is cancelled and in-flight
// requests have drained.
func Serve(ctx context.Context, port int, handler http.Handler, readTimeout, writeTimeout time.Duration) (ready, done <-chan struct{}, err error) {
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, nil, fmt.Errorf("bind api port %d: %w", port, err)
	}

	readyCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("api server shutdown error", "error", err)
		}
	}()

	go func() {
		slog.Info("api server listening", "port", port)
		close(readyCh)
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server error", "error", err)
		}
	}()

	return readyCh, doneCh, nil
}
