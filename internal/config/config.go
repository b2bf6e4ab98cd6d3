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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Local events finders.
const (
	FinderPerplexity = "perplexity"
	FinderPlaces     = "places"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	SecureCookies  bool
}

// GoogleConfig holds Google OAuth and API settings.
type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	CalendarEndpoint string
	MapsAPIKey       string
	MapsBaseURL      string
}

// OpenRouterConfig holds settings for the OpenAI-compatible gateway used
// for preparation, chat and local event lookups.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
}

// ClassifierConfig holds settings for the optional fast classifier
// provider. Without an API key classification goes through OpenRouter.
type ClassifierConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	FallbackModel string
	CacheTTL      time.Duration
}

// ModelsConfig names the models used per feature.
type ModelsConfig struct {
	Preparation string
	Chat        string
	Perplexity  string
}

// LocalEventsConfig selects and configures the local events finder.
type LocalEventsConfig struct {
	Finder          string
	EventbriteToken string
	EventbriteURL   string
}

// BatchConfig controls background preparation of upcoming events. A zero
// Interval disables it.
type BatchConfig struct {
	Interval  time.Duration
	Days      int
	OutputDir string
}

// Config holds all configuration for the backend.
type Config struct {
	Server      ServerConfig
	DatabaseURL string
	RedisURL    string
	Google      GoogleConfig
	OpenRouter  OpenRouterConfig
	Classifier  ClassifierConfig
	Models      ModelsConfig
	LocalEvents LocalEventsConfig
	Batch       BatchConfig

	DefaultLocation  string
	Location         *time.Location
	LogLevel         string
	TokenRenewBuffer time.Duration
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Server struct {
		Port           int      `yaml:"port"`
		ReadTimeout    string   `yaml:"read_timeout"`
		WriteTimeout   string   `yaml:"write_timeout"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		SecureCookies  *bool    `yaml:"secure_cookies"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Google struct {
		ClientID         string `yaml:"client_id"`
		ClientSecret     string `yaml:"client_secret"`
		RedirectURL      string `yaml:"redirect_url"`
		CalendarEndpoint string `yaml:"calendar_endpoint"`
		MapsAPIKey       string `yaml:"maps_api_key"`
	} `yaml:"google"`
	OpenRouter struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Referer string `yaml:"referer"`
		Title   string `yaml:"title"`
		Timeout string `yaml:"timeout"`
	} `yaml:"openrouter"`
	Classifier struct {
		APIKey        string `yaml:"api_key"`
		BaseURL       string `yaml:"base_url"`
		Model         string `yaml:"model"`
		FallbackModel string `yaml:"fallback_model"`
		CacheTTL      string `yaml:"cache_ttl"`
	} `yaml:"classifier"`
	Models struct {
		Preparation string `yaml:"preparation"`
		Chat        string `yaml:"chat"`
		Perplexity  string `yaml:"perplexity"`
	} `yaml:"models"`
	LocalEvents struct {
		Finder          string `yaml:"finder"`
		EventbriteToken string `yaml:"eventbrite_token"`
		DefaultLocation string `yaml:"default_location"`
	} `yaml:"local_events"`
	Batch struct {
		Interval  string `yaml:"interval"`
		Days      int    `yaml:"days"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"batch"`
	Timezone string `yaml:"timezone"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables. A missing config file is not an error.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	default:
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           envOrDefaultInt("PORT", orInt(raw.Server.Port, 8080)),
			AllowedOrigins: raw.Server.AllowedOrigins,
			SecureCookies:  envOrDefaultBool("SECURE_COOKIES", raw.Server.SecureCookies != nil && *raw.Server.SecureCookies),
		},
		DatabaseURL: firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		RedisURL:    firstNonEmpty(raw.Redis.URL, os.Getenv("REDIS_URL")),
		Google: GoogleConfig{
			ClientID:         firstNonEmpty(raw.Google.ClientID, os.Getenv("GOOGLE_CLIENT_ID")),
			ClientSecret:     firstNonEmpty(raw.Google.ClientSecret, os.Getenv("GOOGLE_CLIENT_SECRET")),
			RedirectURL:      firstNonEmpty(raw.Google.RedirectURL, os.Getenv("GOOGLE_REDIRECT_URI")),
			CalendarEndpoint: firstNonEmpty(raw.Google.CalendarEndpoint, os.Getenv("GOOGLE_CALENDAR_ENDPOINT")),
			MapsAPIKey:       firstNonEmpty(raw.Google.MapsAPIKey, os.Getenv("GOOGLE_MAPS_API_KEY"), os.Getenv("GOOGLE_PLACES_API_KEY")),
			MapsBaseURL:      os.Getenv("GOOGLE_MAPS_BASE_URL"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  firstNonEmpty(raw.OpenRouter.APIKey, os.Getenv("OPENROUTER_API_KEY"), os.Getenv("OPENAI_API_KEY")),
			BaseURL: firstNonEmpty(raw.OpenRouter.BaseURL, envOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")),
			Referer: firstNonEmpty(raw.OpenRouter.Referer, envOrDefault("APP_URL", "https://smartcal.app")),
			Title:   firstNonEmpty(raw.OpenRouter.Title, "SmartCal"),
		},
		Classifier: ClassifierConfig{
			APIKey:        firstNonEmpty(raw.Classifier.APIKey, os.Getenv("GROQ_API_KEY")),
			BaseURL:       firstNonEmpty(raw.Classifier.BaseURL, envOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")),
			Model:         firstNonEmpty(raw.Classifier.Model, envOrDefault("CLASSIFIER_MODEL", "llama-3.1-8b-instant")),
			FallbackModel: firstNonEmpty(raw.Classifier.FallbackModel, envOrDefault("CLASSIFIER_FALLBACK_MODEL", "mistralai/mistral-7b-instruct")),
		},
		Models: ModelsConfig{
			Preparation: firstNonEmpty(raw.Models.Preparation, envOrDefault("PREPARATION_MODEL", "openai/gpt-4-turbo")),
			Chat:        firstNonEmpty(raw.Models.Chat, envOrDefault("CHAT_MODEL", "anthropic/claude-3-opus-20240229")),
			Perplexity:  firstNonEmpty(raw.Models.Perplexity, envOrDefault("PERPLEXITY_MODEL", "perplexity/sonar")),
		},
		LocalEvents: LocalEventsConfig{
			Finder:          strings.ToLower(firstNonEmpty(raw.LocalEvents.Finder, envOrDefault("LOCAL_EVENTS_FINDER", FinderPerplexity))),
			EventbriteToken: firstNonEmpty(raw.LocalEvents.EventbriteToken, os.Getenv("EVENTBRITE_API_KEY")),
			EventbriteURL:   os.Getenv("EVENTBRITE_BASE_URL"),
		},
		Batch: BatchConfig{
			Days:      envOrDefaultInt("BATCH_DAYS", orInt(raw.Batch.Days, 7)),
			OutputDir: firstNonEmpty(raw.Batch.OutputDir, envOrDefault("BATCH_OUTPUT_DIR", "preparations")),
		},
		DefaultLocation: firstNonEmpty(raw.LocalEvents.DefaultLocation, envOrDefault("DEFAULT_LOCATION", "San Francisco, CA")),
		LogLevel:        firstNonEmpty(raw.LogLevel, envOrDefault("LOG_LEVEL", "info")),
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}

	durations := []struct {
		dst      *time.Duration
		raw, env string
		fallback time.Duration
	}{
		{&cfg.Server.ReadTimeout, raw.Server.ReadTimeout, "READ_TIMEOUT", 15 * time.Second},
		{&cfg.Server.WriteTimeout, raw.Server.WriteTimeout, "WRITE_TIMEOUT", 90 * time.Second},
		{&cfg.OpenRouter.Timeout, raw.OpenRouter.Timeout, "LLM_TIMEOUT", 60 * time.Second},
		{&cfg.Classifier.CacheTTL, raw.Classifier.CacheTTL, "CLASSIFY_CACHE_TTL", 24 * time.Hour},
		{&cfg.TokenRenewBuffer, "", "TOKEN_RENEW_BUFFER", 5 * time.Minute},
		{&cfg.Batch.Interval, raw.Batch.Interval, "BATCH_INTERVAL", 0},
	}
	for _, d := range durations {
		if d.raw == "" {
			*d.dst = envOrDefaultDuration(d.env, d.fallback)
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", strings.ToLower(d.env), err)
		}
		*d.dst = parsed
	}

	tz := firstNonEmpty(raw.Timezone, os.Getenv("TIMEZONE"))
	cfg.Location = time.Local
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("openrouter API key not configured: set OPENROUTER_API_KEY or openrouter.api_key")
	}
	switch c.LocalEvents.Finder {
	case FinderPerplexity, FinderPlaces:
	default:
		return fmt.Errorf("unknown local events finder %q", c.LocalEvents.Finder)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
