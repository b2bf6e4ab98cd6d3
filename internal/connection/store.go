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

// Package connection persists per-user calendar provider credentials in
// Postgres and hands out fresh OAuth tokens for them.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcal/backend/internal/models"
)

// ProviderGoogle identifies Google Calendar connections.
const ProviderGoogle = "google"

// Store provides CRUD operations for calendar connections in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a connection store backed by the given Postgres pool.
// It ensures the calendar_connections table exists on creation.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure connection schema: %w", err)
	}
	slog.Info("connection store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS calendar_connections (
			id             BIGSERIAL PRIMARY KEY,
			user_id        TEXT NOT NULL,
			provider       TEXT NOT NULL,
			provider_email TEXT DEFAULT '',
			access_token   TEXT NOT NULL,
			refresh_token  TEXT DEFAULT '',
			expires_at     TIMESTAMPTZ NOT NULL,
			created_at     TIMESTAMPTZ DEFAULT NOW(),
			updated_at     TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(user_id, provider)
		);
		CREATE INDEX IF NOT EXISTS idx_conns_user ON calendar_connections(user_id);
	`)
	return err
}

// Upsert inserts or replaces the connection keyed on (user_id, provider).
// An empty refresh token keeps the stored one.
func (s *Store) Upsert(ctx context.Context, c models.CalendarConnection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO calendar_connections
			(user_id, provider, provider_email, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			provider_email = EXCLUDED.provider_email,
			access_token   = EXCLUDED.access_token,
			refresh_token  = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), calendar_connections.refresh_token),
			expires_at     = EXCLUDED.expires_at,
			updated_at     = NOW()
	`, c.UserID, c.Provider, c.ProviderEmail, c.AccessToken, c.RefreshToken, c.ExpiresAt)
	return err
}

// Get retrieves the connection for a user and provider. It returns nil
// without error when none exists.
func (s *Store) Get(ctx context.Context, userID, provider string) (*models.CalendarConnection, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, provider, provider_email, access_token,
		       refresh_token, expires_at, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1 AND provider = $2
	`, userID, provider)
	return scanRecord(row)
}

// ListByUser returns every connection of a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.CalendarConnection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, provider, provider_email, access_token,
		       refresh_token, expires_at, created_at, updated_at
		FROM calendar_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListUserIDs returns every user with a connection to provider.
func (s *Store) ListUserIDs(ctx context.Context, provider string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM calendar_connections
		WHERE provider = $1
		ORDER BY user_id
	`, provider)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// UpdateToken stores a refreshed token.
func (s *Store) UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE calendar_connections
		SET access_token = $1, refresh_token = $2, expires_at = $3, updated_at = NOW()
		WHERE id = $4
	`, accessToken, refreshToken, expiresAt, id)
	return err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanRecord(row pgx.Row) (*models.CalendarConnection, error) {
	var c models.CalendarConnection
	err := row.Scan(
		&c.ID, &c.UserID, &c.Provider, &c.ProviderEmail, &c.AccessToken,
		&c.RefreshToken, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectRecords(rows pgx.Rows) ([]models.CalendarConnection, error) {
	var conns []models.CalendarConnection
	for rows.Next() {
		var c models.CalendarConnection
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Provider, &c.ProviderEmail, &c.AccessToken,
			&c.RefreshToken, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
