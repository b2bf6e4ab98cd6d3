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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/smartcal/backend/internal/models"
)

func newTestCache(t *testing.T) (*Classifications, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewClassifications(rdb, time.Hour), mr
}

// TestClassifications_RoundTrip verifies set, get and miss behaviour.
func TestClassifications_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "Standup", "")
	if err != nil || got != nil {
		t.Fatalf("miss = %v, %v; want nil, nil", got, err)
	}

	want := models.ClassificationResult{EventType: "team", UserRole: "manager", Confidence: 0.9}
	if err := c.Set(ctx, "Standup", "", want); err != nil {
		t.Fatal(err)
	}
	got, err = c.Get(ctx, "Standup", "")
	if err != nil || got == nil || *got != want {
		t.Fatalf("Get = %+v, %v; want %+v", got, err, want)
	}

	if got, _ := c.Get(ctx, "Standup", "different description"); got != nil {
		t.Error("different description should miss")
	}
}

// TestClassifications_Expiry verifies entries expire after the TTL.
func TestClassifications_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "Lunch", "", models.ClassificationResult{EventType: "social", UserRole: "host", Confidence: 1}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Hour)
	if got, _ := c.Get(ctx, "Lunch", ""); got != nil {
		t.Errorf("expected expiry, got %+v", got)
	}
}

// TestPrepared verifies marks are per user and can be forgotten.
func TestPrepared(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	p := NewPrepared(rdb, 0)
	ctx := context.Background()

	steps := []struct {
		user, event string
		want        bool
	}{
		{"u1", "ev1", true},
		{"u1", "ev1", false},
		{"u2", "ev1", true},
	}
	for i, s := range steps {
		got, err := p.MarkNew(ctx, s.user, s.event)
		if err != nil || got != s.want {
			t.Errorf("step %d: MarkNew = %v, %v; want %v", i, got, err, s.want)
		}
	}

	if ttl := mr.TTL(preparedPrefix + "u1:ev1"); ttl != DefaultPreparedTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultPreparedTTL)
	}
	if err := p.Forget(ctx, "u1", "ev1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.MarkNew(ctx, "u1", "ev1"); !got {
		t.Error("forgotten event should be new again")
	}
}
