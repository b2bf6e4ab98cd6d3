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

// Package oauthstate issues single-use OAuth state values backed by Redis,
// binding each authorization round trip to the user that started it.
package oauthstate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long an issued state stays valid.
	DefaultTTL = 10 * time.Minute

	// keyPrefix namespaces state keys in Redis.
	keyPrefix = "smartcal:oauth-state:"
)

// ErrInvalidState is returned for unknown, expired or reused states.
var ErrInvalidState = errors.New("invalid oauth state")

// Store tracks outstanding OAuth states.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a state store backed by Redis.
func NewStore(rdb *redis.Client) *Store {
	return &Store{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// Issue generates a random state for userID.
func (s *Store) Issue(ctx context.Context, userID string) (string, error) {
	state := generateState()

	// SET NX so a colliding state never overwrites another user's.
	set, err := s.rdb.SetNX(ctx, keyPrefix+state, userID, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("oauth state SETNX: %w", err)
	}
	if !set {
		return "", fmt.Errorf("oauth state collision")
	}
	return state, nil
}

// Consume validates state and returns the user it was issued for. A state
// can be consumed once.
func (s *Store) Consume(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrInvalidState
	}
	userID, err := s.rdb.GetDel(ctx, keyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("oauth state GETDEL: %w", err)
	}
	return userID, nil
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
