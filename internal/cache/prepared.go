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

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPreparedTTL is how long a batch-prepared event is remembered.
	DefaultPreparedTTL = 7 * 24 * time.Hour

	preparedPrefix = "smartcal:prepared:"
)

// Prepared remembers which events the batch runner has already prepared.
type Prepared struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPrepared creates a marker set with the given TTL (DefaultPreparedTTL
// if zero).
func NewPrepared(rdb *redis.Client, ttl time.Duration) *Prepared {
	if ttl == 0 {
		ttl = DefaultPreparedTTL
	}
	return &Prepared{rdb: rdb, ttl: ttl}
}

// MarkNew records the event and reports whether it was not already marked.
func (p *Prepared) MarkNew(ctx context.Context, userID, eventID string) (bool, error) {
	set, err := p.rdb.SetNX(ctx, preparedKey(userID, eventID), 1, p.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("prepared SETNX: %w", err)
	}
	return set, nil
}

// Forget removes a mark so the event is retried on the next run.
func (p *Prepared) Forget(ctx context.Context, userID, eventID string) error {
	if err := p.rdb.Del(ctx, preparedKey(userID, eventID)).Err(); err != nil {
		return fmt.Errorf("prepared DEL: %w", err)
	}
	return nil
}

func preparedKey(userID, eventID string) string {
	return preparedPrefix + userID + ":" + eventID
}
