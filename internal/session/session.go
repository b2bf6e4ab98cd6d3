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

// Package session reads and writes the cookies that carry a browser's
// calendar access token and its pending OAuth state.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const (
	// TokenCookie holds the calendar access token as base64url JSON.
	TokenCookie = "calendar_tokens"
	// StateCookie holds the pending OAuth state.
	StateCookie = "oauth_state"

	tokenMaxAge = 7 * 24 * time.Hour
	stateMaxAge = 10 * time.Minute
)

// ErrNoSession is returned when the request carries no usable token.
var ErrNoSession = errors.New("no calendar session")

type tokens struct {
	AccessToken string `json:"access_token"`
}

// Cookies writes session cookies with a fixed Secure flag.
type Cookies struct {
	Secure bool
}

// SetTokens stores the access token in the browser.
func (c Cookies) SetTokens(w http.ResponseWriter, accessToken string) error {
	value, err := json.Marshal(tokens{AccessToken: accessToken})
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(TokenCookie, base64.RawURLEncoding.EncodeToString(value), tokenMaxAge))
	return nil
}

// ClearTokens removes the access token cookie.
func (c Cookies) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(TokenCookie, "", -1))
}

// SetState stores a pending OAuth state.
func (c Cookies) SetState(w http.ResponseWriter, state string) {
	http.SetCookie(w, c.cookie(StateCookie, state, stateMaxAge))
}

// ClearState removes the OAuth state cookie.
func (c Cookies) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(StateCookie, "", -1))
}

func (c Cookies) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	age := int(maxAge.Seconds())
	if maxAge < 0 {
		age = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// AccessToken returns the access token carried by r.
func AccessToken(r *http.Request) (string, error) {
	ck, err := r.Cookie(TokenCookie)
	if err != nil {
		return "", ErrNoSession
	}
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return "", ErrNoSession
	}
	var t tokens
	if err := json.Unmarshal(raw, &t); err != nil || t.AccessToken == "" {
		return "", ErrNoSession
	}
	return t.AccessToken, nil
}

// State returns the pending OAuth state carried by r, or "".
func State(r *http.Request) string {
	ck, err := r.Cookie(StateCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}
