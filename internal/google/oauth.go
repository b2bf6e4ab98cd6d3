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

package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleendpoint "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Scopes requested when connecting a calendar.
var Scopes = []string{
	gcal.CalendarReadonlyScope,
	gcal.CalendarEventsReadonlyScope,
	googleoauth.OpenIDScope,
	googleoauth.UserinfoProfileScope,
	googleoauth.UserinfoEmailScope,
}

// OAuthConfig configures the OAuth client.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint defaults to Google's OAuth endpoint.
	Endpoint oauth2.Endpoint
	// UserinfoEndpoint overrides the userinfo API base URL; used by tests.
	UserinfoEndpoint string
}

// OAuth runs the authorization-code flow against Google.
type OAuth struct {
	cfg              *oauth2.Config
	userinfoEndpoint string
}

// NewOAuth creates a Google OAuth client.
func NewOAuth(c OAuthConfig) *OAuth {
	endpoint := c.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = googleendpoint.Endpoint
	}
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		userinfoEndpoint: c.UserinfoEndpoint,
	}
}

// Configured reports whether client credentials are present.
func (o *OAuth) Configured() bool {
	return o.cfg.ClientID != "" && o.cfg.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// consent makes Google issue a refresh token on every connect.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// TokenSource returns a source that refreshes tok when it expires.
func (o *OAuth) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return o.cfg.TokenSource(ctx, tok)
}

// UserEmail returns the email address of the account that owns tok.
func (o *OAuth) UserEmail(ctx context.Context, tok *oauth2.Token) (string, error) {
	opts := []option.ClientOption{option.WithHTTPClient(o.cfg.Client(ctx, tok))}
	if o.userinfoEndpoint != "" {
		opts = append(opts, option.WithEndpoint(o.userinfoEndpoint))
	}
	svc, err := googleoauth.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}
	return info.Email, nil
}
