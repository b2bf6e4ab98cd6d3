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
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RequestIDHeader echoes the per-request ID.
const RequestIDHeader = "X-Request-ID"

// NewRouter wires every endpoint and wraps the router with CORS for the
// given origins.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/preparation", h.Preparation).Methods(http.MethodPost)
	api.HandleFunc("/classify-event", h.ClassifyEvent).Methods(http.MethodPost)
	api.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)

	api.HandleFunc("/calendar/events", h.CalendarEvents).Methods(http.MethodGet)
	api.HandleFunc("/calendar/events.ics", h.CalendarICS).Methods(http.MethodGet)
	api.HandleFunc("/calendar/grid", h.CalendarGrid).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", h.EventDetail).Methods(http.MethodGet)

	api.HandleFunc("/auth/google", h.GoogleAuth).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	api.HandleFunc("/calendar/connect/google", h.ConnectGoogle).Methods(http.MethodGet)
	api.HandleFunc("/calendar/connect/google/callback", h.ConnectGoogleCallback).Methods(http.MethodGet)
	api.HandleFunc("/calendar/connections", h.CalendarConnections).Methods(http.MethodGet)

	api.HandleFunc("/commute", h.Commute).Methods(http.MethodPost)
	api.HandleFunc("/local-events", h.LocalEvents).Methods(http.MethodPost)
	api.HandleFunc("/perplexity-events", h.PerplexityEvents).Methods(http.MethodPost)

	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", UserIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	}).Handler(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags each request with an ID and logs its outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("request handled",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// recoveryMiddleware turns panics into 500 responses.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "path", r.URL.Path, "panic", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
