// Loopfeed - Short Video and Photo Social Feed Backend
// Copyright 2026 Loopfeed contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/loopfeedapp/loopfeed

// Command server runs the Loopfeed backend: the feed composer and
// hydrator behind the HTTP API, the interaction pipeline, and the
// in-process signal bus with its subscribers, all under a suture
// supervision tree.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loopfeedapp/loopfeed/internal/api"
	"github.com/loopfeedapp/loopfeed/internal/config"
	"github.com/loopfeedapp/loopfeed/internal/database"
	"github.com/loopfeedapp/loopfeed/internal/eventbus"
	"github.com/loopfeedapp/loopfeed/internal/feed"
	"github.com/loopfeedapp/loopfeed/internal/hydrate"
	"github.com/loopfeedapp/loopfeed/internal/interactions"
	"github.com/loopfeedapp/loopfeed/internal/logging"
	"github.com/loopfeedapp/loopfeed/internal/signals"
	"github.com/loopfeedapp/loopfeed/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Path).
		Msg("loopfeed starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Err(err).Msg("database close failed")
		}
	}()

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(ctx); err != nil {
			return err
		}
	}

	bus := eventbus.New(cfg.EventBus.BufferSize, logging.Logger())
	defer bus.Close()

	sub, err := bus.Subscribe(signals.SubscriberName)
	if err != nil {
		return err
	}

	handler := api.NewHandler(
		feed.NewComposer(db, &cfg.Feed),
		hydrate.New(db),
		interactions.New(db, bus),
		db,
	)
	server := api.NewServer(&cfg.Server, api.NewRouter(&cfg.API, handler))

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddMessagingService(signals.New(db, sub))
	tree.AddAPIService(server)

	logging.Info().Str("addr", server.Addr()).Msg("supervision tree starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("loopfeed stopped")
	return nil
}
