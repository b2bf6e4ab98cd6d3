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

package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smartcal/backend/internal/connection"
)

// UserLister lists the users with a stored calendar connection.
type UserLister interface {
	ListUserIDs(ctx context.Context, provider string) ([]string, error)
}

// Scheduler periodically runs a Runner for every connected user.
type Scheduler struct {
	runner   *Runner
	users    UserLister
	interval time.Duration
	days     int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SchedulerConfig holds the configuration for a Scheduler.
type SchedulerConfig struct {
	Runner   *Runner
	Users    UserLister
	Interval time.Duration
	Days     int
}

// NewScheduler creates a scheduler. Call Start to begin the loop.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		runner:   cfg.Runner,
		users:    cfg.Users,
		interval: cfg.Interval,
		days:     cfg.Days,
	}
}

// Start runs one pass per interval until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.RunOnce(loopCtx)
			}
		}
	}()

	slog.Info("batch preparation scheduler started", "interval", s.interval, "days", s.days)
}

// RunOnce prepares upcoming events for every connected user.
func (s *Scheduler) RunOnce(ctx context.Context) {
	users, err := s.users.ListUserIDs(ctx, connection.ProviderGoogle)
	if err != nil {
		slog.Error("failed to list connected users", "error", err)
		return
	}
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.runner.Run(ctx, Request{UserID: userID, Days: s.days}); err != nil {
			slog.Error("scheduled batch preparation failed",
				"user_id", userID,
				"error", err,
			)
		}
	}
}

// Stop shuts down the loop and waits for the current pass to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
