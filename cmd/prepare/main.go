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

// SmartCal prepare
//
// Command line tool that pre-generates preparation materials for a user's
// upcoming events using their stored Google Calendar connection.
//
// Usage:
//
//	go run ./cmd/prepare upcoming --user <id> [--days 7] [--out dir] [--force]
//	go run ./cmd/prepare classify --title "Weekly sync" [--description ...]
//	go run ./cmd/prepare types
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/smartcal/backend/internal/agent"
	"github.com/smartcal/backend/internal/batch"
	"github.com/smartcal/backend/internal/cache"
	"github.com/smartcal/backend/internal/classify"
	"github.com/smartcal/backend/internal/config"
	"github.com/smartcal/backend/internal/connection"
	"github.com/smartcal/backend/internal/google"
	"github.com/smartcal/backend/internal/llm"
	"github.com/smartcal/backend/internal/logging"
)

func main() {
	_ = godotenv.Load()

	// Logs go to stderr so JSON output on stdout stays clean.
	logging.Init(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	app := &cli.App{
		Name:  "prepare",
		Usage: "Generate SmartCal event preparations from the command line.",
		Commands: []*cli.Command{
			upcomingCommand(),
			classifyCommand(),
			typesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("prepare failed", "error", err)
		os.Exit(1)
	}
}

func upcomingCommand() *cli.Command {
	return &cli.Command{
		Name:  "upcoming",
		Usage: "Prepare every event in the user's upcoming calendar window.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "Application user ID with a stored Google connection."},
			&cli.IntFlag{Name: "days", Value: batch.DefaultDays, Usage: "How many days ahead to look."},
			&cli.StringFlag{Name: "out", Usage: "Write one JSON file per event to this directory instead of stdout."},
			&cli.BoolFlag{Name: "force", Usage: "Prepare events again even if they were prepared before."},
			&cli.DurationFlag{Name: "delay", Value: batch.DefaultDelay, Usage: "Pause between events."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel))
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to read stored calendar connections")
			}

			pgPool, err := pgxpool.New(c.Context, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("create Postgres pool: %w", err)
			}
			defer pgPool.Close()
			store, err := connection.NewStore(c.Context, pgPool)
			if err != nil {
				return fmt.Errorf("initialise connection store: %w", err)
			}

			oauth := google.NewOAuth(google.OAuthConfig{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.RedirectURL,
			})
			manager := connection.NewManager(connection.ManagerConfig{
				Repo:        store,
				OAuth:       oauth,
				RenewBuffer: cfg.TokenRenewBuffer,
			})

			var (
				clsCache classify.Cache
				marker   batch.Marker
			)
			if cfg.RedisURL != "" {
				opt, err := redis.ParseURL(cfg.RedisURL)
				if err != nil {
					return fmt.Errorf("invalid REDIS_URL: %w", err)
				}
				rdb := redis.NewClient(opt)
				defer rdb.Close()
				clsCache = cache.NewClassifications(rdb, cfg.Classifier.CacheTTL)
				marker = cache.NewPrepared(rdb, 0)
			}

			var sink batch.Sink = batch.NewWriterSink(os.Stdout)
			if dir := c.String("out"); dir != "" {
				ds, err := batch.NewDirSink(dir)
				if err != nil {
					return err
				}
				sink = ds
			}

			openRouter := newOpenRouter(cfg)
			runner := batch.NewRunner(batch.RunnerConfig{
				Tokens:          manager,
				Lister:          google.NewCalendar(google.CalendarConfig{Endpoint: cfg.Google.CalendarEndpoint}),
				Classifier:      newClassifier(cfg, openRouter, clsCache),
				Preparer:        newRegistry(cfg, openRouter),
				Marker:          marker,
				Sink:            sink,
				Location:        cfg.Location,
				DefaultLocation: cfg.DefaultLocation,
				Delay:           c.Duration("delay"),
			})

			result, err := runner.Run(c.Context, batch.Request{
				UserID: c.String("user"),
				Days:   c.Int("days"),
				Force:  c.Bool("force"),
			})
			if err != nil {
				return err
			}

			slog.Info("batch summary",
				"user_id", result.UserID,
				"prepared", result.Prepared,
				"skipped", result.Skipped,
				"failed", result.Failed,
				"elapsed", result.Elapsed,
			)
			if result.Failed > 0 && result.Prepared == 0 {
				return fmt.Errorf("all %d events failed", result.Failed)
			}
			return nil
		},
	}
}

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Classify a single event title and print the result.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "description"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			classifier := newClassifier(cfg, newOpenRouter(cfg), nil)
			result, err := classifier.Classify(c.Context, c.String("title"), c.String("description"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func typesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the event types with a dedicated preparation agent.",
		Action: func(c *cli.Context) error {
			registry := agent.NewDefaultRegistry(agent.NewGenerator(agent.GeneratorConfig{}))
			fmt.Println(strings.Join(registry.Types(), "\n"))
			return nil
		},
	}
}

func newOpenRouter(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		BaseURL: cfg.OpenRouter.BaseURL,
		APIKey:  cfg.OpenRouter.APIKey,
		Referer: cfg.OpenRouter.Referer,
		Title:   cfg.OpenRouter.Title,
		Timeout: cfg.OpenRouter.Timeout,
	})
}

func newClassifier(cfg *config.Config, fallback llm.Completer, c classify.Cache) *classify.Classifier {
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
	return classify.New(classify.Config{
		Primary:  primary,
		Fallback: classify.Provider{Name: "openrouter", LLM: fallback, Model: cfg.Classifier.FallbackModel},
		Cache:    c,
	})
}

func newRegistry(cfg *config.Config, completer llm.Completer) *agent.Registry {
	return agent.NewDefaultRegistry(agent.NewGenerator(agent.GeneratorConfig{
		LLM:   completer,
		Model: cfg.Models.Preparation,
	}))
}
