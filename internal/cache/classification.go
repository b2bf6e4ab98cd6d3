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

// Package cache keeps classification results in Redis so repeated
// lookups for the same event skip the model call. It also records which
// events the batch runner has prepared.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartcal/backend/internal/models"
)

const (
	// DefaultTTL is how long a classification is reused.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "smartcal:classify:"
)

// Classifications is a Redis-backed classification cache.
type Classifications struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClassifications creates a cache with the given TTL (DefaultTTL if zero).
func NewClassifications(rdb *redis.Client, ttl time.Duration) *Classifications {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Classifications{rdb: rdb, ttl: ttl}
}

// Get returns the cached result, or nil on a miss.
func (c *Classifications) Get(ctx context.Context, title, description string) (*models.ClassificationResult, error) {
	data, err := c.rdb.Get(ctx, key(title, description)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache GET: %w", err)
	}
	var r models.ClassificationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode cached classification: %w", err)
	}
	return &r, nil
}

// Set stores a result.
func (c *Classifications) Set(ctx context.Context, title, description string, r models.ClassificationResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode classification: %w", err)
	}
	if err := c.rdb.Set(ctx, key(title, description), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache SET: %w", err)
	}
	return nil
}

func key(title, description string) string {
	sum := sha256.Sum256([]byte(title + "\n" + description))
	return keyPrefix + hex.EncodeToString(sum[:])
}
