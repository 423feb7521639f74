// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"time"

	"github.com/mcbridge/discordchatter/pkg/bridge/discordfmt"
	"github.com/mcbridge/discordchatter/pkg/platform"
)

// handleDiscordMessage relays one incoming channel message into the game.
// Messages from other channels and from bots (including this bot's own
// relayed posts) are ignored; the bot check is what breaks relay loops.
func (b *Bridge) handleDiscordMessage(msg platform.Message) {
	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	if msg.ChannelID != cfg.ChanID {
		return
	}
	if msg.AuthorBot {
		return
	}

	text := discordfmt.Sanitize(msg.Content)

	if cfg.PostDiscordMessagesToConsole {
		b.log.Info().Msg(discordfmt.ConsoleLine(discordfmt.Timestamp(time.Now()), msg.AuthorName, text))
	}

	if !b.serverAlive {
		b.log.Debug().Msg("Server not accepting commands yet, dropping Discord message")
		return
	}
	if err := b.host.Broadcast(discordfmt.Broadcast(msg.AuthorName, text)); err != nil {
		b.log.Error().Err(err).Msg("Failed to broadcast Discord message in game")
		return
	}
	relayedToGame.Inc()
}
