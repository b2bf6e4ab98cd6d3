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

package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/models"
)

// DefaultRenewBuffer is how close to expiry a token gets refreshed.
const DefaultRenewBuffer = 5 * time.Minute

// ErrNotConnected is returned when a user has no stored connection.
var ErrNotConnected = errors.New("calendar not connected")

// Repository is the persistence the Manager needs. *Store implements it.
type Repository interface {
	Upsert(ctx context.Context, c models.CalendarConnection) error
	Get(ctx context.Context, userID, provider string) (*models.CalendarConnection, error)
	ListByUser(ctx context.Context, userID string) ([]models.CalendarConnection, error)
	UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
}

// Refresher turns a stored token into a source that can refresh it.
// *google.OAuth implements it.
type Refresher interface {
	TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource
}

// Manager hands out valid tokens for stored connections.
type Manager struct {
	repo        Repository
	oauth       Refresher
	renewBuffer time.Duration
	now         func() time.Time
}

// ManagerConfig holds the configuration for the connection manager.
type ManagerConfig struct {
	Repo        Repository
	OAuth       Refresher
	RenewBuffer time.Duration
}

// NewManager creates a connection manager.
func NewManager(cfg ManagerConfig) *Manager {
	buffer := cfg.RenewBuffer
	if buffer <= 0 {
		buffer = DefaultRenewBuffer
	}
	return &Manager{
		repo:        cfg.Repo,
		oauth:       cfg.OAuth,
		renewBuffer: buffer,
		now:         time.Now,
	}
}

// Connect stores the token obtained from a completed OAuth flow.
func (m *Manager) Connect(ctx context.Context, userID, email string, tok *oauth2.Token) error {
	err := m.repo.Upsert(ctx, models.CalendarConnection{
		UserID:        userID,
		Provider:      ProviderGoogle,
		ProviderEmail: email,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		ExpiresAt:     tok.Expiry,
	})
	if err != nil {
		return fmt.Errorf("store connection: %w", err)
	}
	slog.Info("calendar connected", "user_id", userID, "provider", ProviderGoogle)
	return nil
}

// List returns the user's connections.
func (m *Manager) List(ctx context.Context, userID string) ([]models.CalendarConnection, error) {
	conns, err := m.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return conns, nil
}

// TokenSource returns a token source for the user's Google connection,
// refreshing and persisting the token first when it is about to expire.
func (m *Manager) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	conn, err := m.repo.Get(ctx, userID, ProviderGoogle)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}
	if conn == nil {
		return nil, ErrNotConnected
	}

	tok := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.ExpiresAt,
	}
	if !conn.ExpiresWithin(m.now(), m.renewBuffer) || conn.RefreshToken == "" {
		return oauth2.StaticTokenSource(tok), nil
	}

	slog.Info("refreshing calendar token",
		"user_id", userID,
		"expires_in", conn.ExpiresAt.Sub(m.now()).Round(time.Second),
	)

	// An empty access token forces the source to hit the token endpoint.
	fresh, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: conn.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = conn.RefreshToken
	}
	if err := m.repo.UpdateToken(ctx, conn.ID, fresh.AccessToken, fresh.RefreshToken, fresh.Expiry); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}
	return oauth2.StaticTokenSource(fresh), nil
}
