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

// SmartCal backend
//
// Entry point for the HTTP service. It:
//  1. Loads configuration from config.yaml, .env and the environment
//  2. Connects to PostgreSQL (calendar connections) and Redis (OAuth state,
//     classification cache) when configured
//  3. Builds the model clients, classifier and preparation agent registry
//  4. Wires Google Calendar, Maps and local event lookups
//  5. Optionally prepares connected users' upcoming events in the background
//  6. Serves the JSON API and shuts down gracefully on SIGTERM/SIGINT
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/smartcal/backend/internal/agent"
	"github.com/smartcal/backend/internal/api"
	"github.com/smartcal/backend/internal/batch"
	"github.com/smartcal/backend/internal/cache"
	"github.com/smartcal/backend/internal/chat"
	"github.com/smartcal/backend/internal/classify"
	"github.com/smartcal/backend/internal/commute"
	"github.com/smartcal/backend/internal/config"
	"github.com/smartcal/backend/internal/connection"
	"github.com/smartcal/backend/internal/google"
	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/localevents"
	"github.com/smartcal/backend/internal/logging"
	"github.com/smartcal/backend/internal/oauthstate"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logging.Init(os.Stdout, logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	slog.Info("starting SmartCal backend")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"local_events_finder", cfg.LocalEvents.Finder,
		"database", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"timezone", cfg.Location.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := make(map[string]api.Pinger)

	// --- Google ---
	oauth := google.NewOAuth(google.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	if !oauth.Configured() {
		slog.Warn("google OAuth credentials missing, calendar connections disabled")
	}
	gcal := google.NewCalendar(google.CalendarConfig{Endpoint: cfg.Google.CalendarEndpoint})

	// --- Connect to PostgreSQL ---
	var (
		connections api.Connections
		connStore   *connection.Store
	)
	if cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create Postgres pool", "error", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		if err := pgPool.Ping(ctx); err != nil {
			slog.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to PostgreSQL")

		store, err := connection.NewStore(ctx, pgPool)
		if err != nil {
			slog.Error("failed to initialise connection store", "error", err)
			os.Exit(1)
		}
		connections = connection.NewManager(connection.ManagerConfig{
			Repo:        store,
			OAuth:       oauth,
			RenewBuffer: cfg.TokenRenewBuffer,
		})
		connStore = store
		health["postgres"] = store
	} else {
		slog.Warn("DATABASE_URL not set, stored calendar connections disabled")
	}

	// --- Connect to Redis ---
	var (
		states   api.StateStore
		clsCache classify.Cache
		marker   batch.Marker
	)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		stateStore := oauthstate.NewStore(rdb)
		if err := stateStore.Ping(ctx); err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Info("connected to Redis")

		states = stateStore
		clsCache = cache.NewClassifications(rdb, cfg.Classifier.CacheTTL)
		marker = cache.NewPrepared(rdb, 0)
		health["redis"] = stateStore
	} else {
		slog.Warn("REDIS_URL not set, OAuth connect flow and classification cache disabled")
	}

	// --- Model Clients ---
	openRouter := llm.NewClient(llm.Config{
		BaseURL: cfg.OpenRouter.BaseURL,
		APIKey:  cfg.OpenRouter.APIKey,
		Referer: cfg.OpenRouter.Referer,
		Title:   cfg.OpenRouter.Title,
		Timeout: cfg.OpenRouter.Timeout,
	})

	var primary *classify.Provider
	if cfg.Classifier.APIKey != "" {
		primary = &classify.Provider{
			Name: "groq",
			LLM: llm.NewClient(llm.Config{
				BaseURL: cfg.Classifier.BaseURL,
				APIKey:  cfg.Classifier.APIKey,
				Timeout: cfg.OpenRouter.Timeout,
			}),
			Model: cfg.Classifier.Model,
		}
	}
	classifier := classify.New(classify.Config{
		Primary:  primary,
		Fallback: classify.Provider{Name: "openrouter", LLM: openRouter, Model: cfg.Classifier.FallbackModel},
		Cache:    clsCache,
	})
	slog.Info("classifier ready", "provider", classifier.ProviderName())

	registry := agent.NewDefaultRegistry(agent.NewGenerator(agent.GeneratorConfig{
		LLM:   openRouter,
		Model: cfg.Models.Preparation,
	}))
	slog.Info("preparation agents registered", "types", registry.Types())

	// --- Commute and Local Events ---
	estimator, err := commute.New(commute.Config{
		APIKey:   cfg.Google.MapsAPIKey,
		BaseURL:  cfg.Google.MapsBaseURL,
		Location: cfg.Location,
	})
	if err != nil {
		slog.Error("failed to create commute estimator", "error", err)
		os.Exit(1)
	}

	var eventbrite *localevents.Eventbrite
	if cfg.LocalEvents.EventbriteToken != "" {
		eventbrite = localevents.NewEventbrite(nil, cfg.LocalEvents.EventbriteURL, cfg.LocalEvents.EventbriteToken)
	}
	places, err := localevents.NewPlaces(localevents.PlacesConfig{
		APIKey:     cfg.Google.MapsAPIKey,
		BaseURL:    cfg.Google.MapsBaseURL,
		Eventbrite: eventbrite,
	})
	if err != nil {
		slog.Error("failed to create places finder", "error", err)
		os.Exit(1)
	}
	perplexity := localevents.NewPerplexity(openRouter, cfg.Models.Perplexity)

	var holidayEvents localevents.Finder = perplexity
	if cfg.LocalEvents.Finder == config.FinderPlaces {
		holidayEvents = places
	}

	// --- Background Preparation ---
	var scheduler *batch.Scheduler
	if cfg.Batch.Interval > 0 && connStore != nil {
		sink, err := batch.NewDirSink(cfg.Batch.OutputDir)
		if err != nil {
			slog.Error("failed to prepare batch output", "error", err)
			os.Exit(1)
		}
		scheduler = batch.NewScheduler(batch.SchedulerConfig{
			Runner: batch.NewRunner(batch.RunnerConfig{
				Tokens:          connections,
				Lister:          gcal,
				Classifier:      classifier,
				Preparer:        registry,
				Marker:          marker,
				Sink:            sink,
				Location:        cfg.Location,
				DefaultLocation: cfg.DefaultLocation,
			}),
			Users:    connStore,
			Interval: cfg.Batch.Interval,
			Days:     cfg.Batch.Days,
		})
		scheduler.Start(ctx)
	}

	// --- API ---
	handler := api.NewHandler(api.HandlerConfig{
		Preparer:        registry,
		Classifier:      classifier,
		Calendar:        gcal,
		OAuth:           oauth,
		Connections:     connections,
		States:          states,
		Commute:         estimator,
		Chat:            chat.NewService(openRouter, cfg.Models.Chat),
		LocalEvents:     places,
		Perplexity:      perplexity,
		HolidayEvents:   holidayEvents,
		Health:          health,
		SecureCookies:   cfg.Server.SecureCookies,
		DefaultLocation: cfg.DefaultLocation,
		Location:        cfg.Location,
	})
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	ready, done, err := api.Serve(ctx, cfg.Server.Port, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	if err != nil {
		slog.Error("failed to start api server", "error", err)
		os.Exit(1)
	}
	<-ready

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	slog.Info("received shutdown signal", "signal", sig)
	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}
	<-done

	slog.Info("SmartCal backend stopped")
}
