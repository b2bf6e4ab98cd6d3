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
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/smartcal/backend/internal/models"
)

type fakeRepo struct {
	mu      sync.Mutex
	conns   map[string]models.CalendarConnection
	updates []models.CalendarConnection
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{conns: make(map[string]models.CalendarConnection)}
}

func (r *fakeRepo) Upsert(_ context.Context, c models.CalendarConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = int64(len(r.conns) + 1)
	r.conns[c.UserID+"/"+c.Provider] = c
	return nil
}

func (r *fakeRepo) Get(_ context.Context, userID, provider string) (*models.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[userID+"/"+provider]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]models.CalendarConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CalendarConnection
	for _, c := range r.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateToken(_ context.Context, id int64, access, refresh string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, models.CalendarConnection{ID: id, AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt})
	return nil
}

type tokenFunc func() (*oauth2.Token, error)

func (f tokenFunc) Token() (*oauth2.Token, error) { return f() }

type fakeRefresher struct {
	mu    sync.Mutex
	seen  []*oauth2.Token
	token *oauth2.Token
	err   error
}

func (f *fakeRefresher) TokenSource(_ context.Context, tok *oauth2.Token) oauth2.TokenSource {
	f.mu.Lock()
	f.seen = append(f.seen, tok)
	f.mu.Unlock()
	return tokenFunc(func() (*oauth2.Token, error) { return f.token, f.err })
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(repo *fakeRepo, ref *fakeRefresher) *Manager {
	m := NewManager(ManagerConfig{Repo: repo, OAuth: ref})
	m.now = func() time.Time { return now }
	return m
}

// TestTokenSource_NotConnected verifies the missing-connection error.
func TestTokenSource_NotConnected(t *testing.T) {
	m := newTestManager(newFakeRepo(), &fakeRefresher{})
	if _, err := m.TokenSource(context.Background(), "u1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

// TestTokenSource_Valid verifies fresh tokens are used as stored.
func TestTokenSource_Valid(t *testing.T) {
	repo := newFakeRepo()
	ref := &fakeRefresher{}
	m := newTestManager(repo, ref)
	repo.Upsert(context.Background(), models.CalendarConnection{
		UserID: "u1", Provider: ProviderGoogle, AccessToken: "at", RefreshToken: "rt",
		ExpiresAt: now.Add(time.Hour),
	})

	ts, err := m.TokenSource(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := ts.Token()
	if tok.AccessToken != "at" {
		t.Errorf("access token = %q, want at", tok.AccessToken)
	}
	if len(ref.seen) != 0 || len(repo.updates) != 0 {
		t.Error("valid token should not be refreshed")
	}
}

// TestTokenSource_Refresh verifies near-expiry tokens are refreshed and
// persisted, keeping the old refresh token when none is returned.
func TestTokenSource_Refresh(t *testing.T) {
	repo := newFakeRepo()
	ref := &fakeRefresher{token: &oauth2.Token{AccessToken: "new", Expiry: now.Add(time.Hour)}}
	m := newTestManager(repo, ref)
	repo.Upsert(context.Background(), models.CalendarConnection{
		UserID: "u1", Provider: ProviderGoogle, AccessToken: "old", RefreshToken: "rt",
		ExpiresAt: now.Add(2 * time.Minute),
	})

	ts, err := m.TokenSource(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := ts.Token()
	if tok.AccessToken != "new" {
		t.Errorf("access token = %q, want new", tok.AccessToken)
	}
	if len(ref.seen) != 1 || ref.seen[0].RefreshToken != "rt" || ref.seen[0].AccessToken != "" {
		t.Errorf("unexpected refresh input %+v", ref.seen)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(repo.updates))
	}
	u := repo.updates[0]
	if u.AccessToken != "new" || u.RefreshToken != "rt" || !u.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("unexpected persisted token %+v", u)
	}
}

// TestTokenSource_RefreshError verifies refresh failures surface.
func TestTokenSource_RefreshError(t *testing.T) {
	repo := newFakeRepo()
	boom := errors.New("invalid_grant")
	m := newTestManager(repo, &fakeRefresher{err: boom})
	repo.Upsert(context.Background(), models.CalendarConnection{
		UserID: "u1", Provider: ProviderGoogle, AccessToken: "old", RefreshToken: "rt",
		ExpiresAt: now.Add(-time.Minute),
	})

	if _, err := m.TokenSource(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want invalid_grant", err)
	}
	if len(repo.updates) != 0 {
		t.Error("failed refresh should not persist")
	}
}

// TestConnectAndList verifies stored connections are listed.
func TestConnectAndList(t *testing.T) {
	repo := newFakeRepo()
	m := newTestManager(repo, &fakeRefresher{})
	tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: now.Add(time.Hour)}
	if err := m.Connect(context.Background(), "u1", "me@example.com", tok); err != nil {
		t.Fatal(err)
	}

	conns, err := m.List(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 || conns[0].Provider != ProviderGoogle || conns[0].ProviderEmail != "me@example.com" {
		t.Errorf("unexpected connections %+v", conns)
	}
}

// TestNewManager_DefaultBuffer verifies the renewal buffer default.
func TestNewManager_DefaultBuffer(t *testing.T) {
	if m := NewManager(ManagerConfig{}); m.renewBuffer != DefaultRenewBuffer {
		t.Errorf("renewBuffer = %v, want %v", m.renewBuffer, DefaultRenewBuffer)
	}
}
