// Copyright 2025-2026 The DiscordChatter Authors

// Command discordchatter wraps a Bedrock dedicated server process and
// bridges its chat with a Discord channel. Player chat, join and leave
// events flow to Discord; channel messages flow back in-game. The wrapper
// stdin doubles as the server console, with the `dc` command reserved for
// bridge administration.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mau.fi/util/exerrors"

	"github.com/mcbridge/discordchatter/pkg/bridge"
	"github.com/mcbridge/discordchatter/pkg/host/bedrock"
	"github.com/mcbridge/discordchatter/pkg/platform"
	"github.com/mcbridge/discordchatter/pkg/platform/discord"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

type environment struct {
	ConfigDir     string `env:"DC_CONFIG_DIR" envDefault:"config"`
	LogLevel      string `env:"DC_LOG_LEVEL" envDefault:"info"`
	AdminAddr     string `env:"DC_ADMIN_ADDR" envDefault:":29400"`
	ServerCommand string `env:"DC_SERVER_COMMAND" envDefault:"./bedrock_server"`
}

func main() {
	// A .env next to the binary is optional; real env vars win.
	_ = godotenv.Load()
	cfg := exerrors.Must(env.ParseAs[environment]())

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid DC_LOG_LEVEL %q: %v\n", cfg.LogLevel, err)
		os.Exit(2)
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.StampMilli,
	}).Level(level).With().Timestamp().Logger()
	log.Info().
		Str("version", Tag).
		Str("commit", Commit).
		Str("built_at", BuildTime).
		Msg("Starting discordchatter")

	store := bridge.NewConfigStore(cfg.ConfigDir, log)
	wrapper := bedrock.New(strings.Fields(cfg.ServerCommand), log)
	dial := func(token string) platform.Client {
		return discord.New(token, log)
	}
	b := bridge.New(store, wrapper, dial, log)
	wrapper.RegisterCommand("dc", b.HandleCommand)

	if cfg.AdminAddr != "" {
		server := &http.Server{
			Addr:         cfg.AdminAddr,
			Handler:      b.AdminHandler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.AdminAddr).Msg("Starting bridge admin API")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("Bridge admin API error")
			}
		}()
	}

	if err := wrapper.Start(); err != nil {
		log.Error().Err(err).Str("command", cfg.ServerCommand).Msg("Failed to start the server process")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Stringer("signal", sig).Msg("Shutting down, stopping the server")
		wrapper.Stop()
		sig = <-sigCh
		log.Warn().Stringer("signal", sig).Msg("Forced exit")
		os.Exit(1)
	}()

	if err := b.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Bridge terminated")
		os.Exit(1)
	}
	log.Info().Msg("Goodbye")
}
