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

// Package batch pre-generates preparation materials for a user's upcoming
// calendar events.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/agent"
	"github.com/smartcal/backend/internal/calendar"
	"github.com/smartcal/backend/internal/google"
	"github.com/smartcal/backend/internal/models"
)

const (
	// DefaultDays is the lookahead when a request does not set one.
	DefaultDays = 7
	// DefaultDelay separates model calls for consecutive events.
	DefaultDelay = 2 * time.Second
)

// TokenSources resolves a user's stored calendar credentials.
type TokenSources interface {
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

// Lister reads events from the calendar provider.
type Lister interface {
	ListEvents(ctx context.Context, ts oauth2.TokenSource, calendarID string, timeMin, timeMax time.Time) ([]calendar.RawEvent, error)
}

// Classifier infers event type and user role.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (models.ClassificationResult, error)
}

// ErrFallback marks an event whose materials fell back to the placeholder
// output.
var ErrFallback = errors.New("preparation fell back to placeholder")

// Preparer generates preparation materials. Types without an agent are
// reported as *agent.NotFoundError.
type Preparer interface {
	GeneratePreparation(ctx context.Context, in models.PreparationInput) (models.Preparation, error)
}

// Marker remembers prepared events across runs.
type Marker interface {
	MarkNew(ctx context.Context, userID, eventID string) (bool, error)
	Forget(ctx context.Context, userID, eventID string) error
}

// Request selects the events to prepare.
type Request struct {
	UserID string
	Days   int
	// Force prepares events even when they were prepared before.
	Force bool
}

// Result summarizes a run.
type Result struct {
	UserID   string
	Prepared int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

// Runner prepares upcoming events one at a time.
type Runner struct {
	tokens     TokenSources
	lister     Lister
	classifier Classifier
	preparer   Preparer
	marker     Marker
	sink       Sink
	loc        *time.Location
	defaultLoc string
	delay      time.Duration
	now        func() time.Time
}

// RunnerConfig holds the dependencies of a Runner. Marker is optional.
type RunnerConfig struct {
	Tokens          TokenSources
	Lister          Lister
	Classifier      Classifier
	Preparer        Preparer
	Marker          Marker
	Sink            Sink
	Location        *time.Location
	DefaultLocation string
	Delay           time.Duration
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	delay := cfg.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	defaultLoc := cfg.DefaultLocation
	if defaultLoc == "" {
		defaultLoc = models.DefaultLocation
	}
	return &Runner{
		tokens:     cfg.Tokens,
		lister:     cfg.Lister,
		classifier: cfg.Classifier,
		preparer:   cfg.Preparer,
		marker:     cfg.Marker,
		sink:       cfg.Sink,
		loc:        loc,
		defaultLoc: defaultLoc,
		delay:      delay,
		now:        time.Now,
	}
}

// Run prepares the user's events starting within the next req.Days days.
// Credential and listing failures abort the run; per-event failures are
// logged and counted.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := r.now()
	days := req.Days
	if days <= 0 {
		days = DefaultDays
	}

	ts, err := r.tokens.TokenSource(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials for %s: %w", req.UserID, err)
	}
	raws, err := r.lister.ListEvents(ctx, ts, google.PrimaryCalendar, start, start.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", req.UserID, err)
	}
	events := calendar.NormalizeAll(raws, r.loc)

	slog.Info("starting batch preparation",
		"user_id", req.UserID,
		"events", len(events),
		"days", days,
	)

	result := &Result{UserID: req.UserID}
	prepared := 0
	for _, ev := range events {
		if !r.claim(ctx, req, ev) {
			result.Skipped++
			continue
		}

		if prepared > 0 {
			select {
			case <-ctx.Done():
				r.release(ctx, req.UserID, ev.ID)
				return result, ctx.Err()
			case <-time.After(r.delay):
			}
		}
		prepared++

		if err := r.prepare(ctx, ev); err != nil {
			slog.Warn("batch: event preparation failed",
				"user_id", req.UserID,
				"event_id", ev.ID,
				"title", ev.Title,
				"error", err,
			)
			r.release(ctx, req.UserID, ev.ID)
			result.Failed++
			continue
		}
		result.Prepared++
	}

	result.Elapsed = r.now().Sub(start)
	slog.Info("batch preparation complete",
		"user_id", req.UserID,
		"prepared", result.Prepared,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// claim reports whether ev should be prepared in this run.
func (r *Runner) claim(ctx context.Context, req Request, ev calendar.Event) bool {
	if ev.ID == "" || r.marker == nil || req.Force {
		return true
	}
	isNew, err := r.marker.MarkNew(ctx, req.UserID, ev.ID)
	if err != nil {
		slog.Warn("prepared marker check failed", "event_id", ev.ID, "error", err)
		return true
	}
	return isNew
}

func (r *Runner) release(ctx context.Context, userID, eventID string) {
	if r.marker == nil || eventID == "" {
		return
	}
	if err := r.marker.Forget(context.WithoutCancel(ctx), userID, eventID); err != nil {
		slog.Warn("failed to clear prepared marker", "event_id", eventID, "error", err)
	}
}

func (r *Runner) prepare(ctx context.Context, ev calendar.Event) error {
	cls, err := r.classifier.Classify(ctx, ev.Title, ev.Description)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	in := Input(ev, cls, r.defaultLoc)
	prep, err := r.preparer.GeneratePreparation(ctx, in)
	var nf *agent.NotFoundError
	if errors.As(err, &nf) {
		slog.Debug("no agent for classified type, using default",
			"event_id", ev.ID,
			"event_type", nf.EventType,
		)
		in.EventType = agent.DefaultType
		prep, err = r.preparer.GeneratePreparation(ctx, in)
	}
	if err != nil {
		return fmt.Errorf("generate preparation: %w", err)
	}
	if agent.IsFallback(prep) {
		return ErrFallback
	}

	if err := r.sink.Write(ctx, Record{Event: ev, Classification: cls, Preparation: prep}); err != nil {
		return fmt.Errorf("write preparation: %w", err)
	}
	return nil
}

// Input builds the preparation request for a classified event. Events
// without a location get defaultLocation.
func Input(ev calendar.Event, cls models.ClassificationResult, defaultLocation string) models.PreparationInput {
	d := calendar.NewDetail(ev)
	in := models.PreparationInput{
		EventTitle:       ev.Title,
		EventDescription: strings.TrimSpace(ev.Description),
		EventDate:        d.Date,
		Attendees:        d.Attendees,
		EventType:        cls.EventType,
		UserRole:         cls.UserRole,
		Location:         ev.Location,
	}
	if !ev.IsAllDay() {
		in.EventTime = d.Time
	}
	if in.Location == "" {
		in.Location = defaultLocation
	}
	return in
}
