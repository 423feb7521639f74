// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"github.com/mcbridge/discordchatter/pkg/bridge/gamefmt"
	"github.com/mcbridge/discordchatter/pkg/host"
)

// handleGameEvent dispatches one game-side event.
func (b *Bridge) handleGameEvent(ev any) {
	switch ev := ev.(type) {
	case host.ChatEvent:
		b.handleGameChat(ev)
	case host.SessionConnectEvent:
		b.handleSessionConnect(ev)
	case host.SessionDisconnectEvent:
		b.handleSessionDisconnect(ev)
	case host.ServerOpenEvent:
		b.serverAlive = true
		b.log.Info().Msg("Game server is ready")
	case host.ServerCloseEvent:
		b.handleServerClose()
	default:
		b.log.Debug().Type("event", ev).Msg("Unhandled game event")
	}
}

func (b *Bridge) handleGameChat(ev host.ChatEvent) {
	b.sendToDiscord(gamefmt.Chat(ev.Sender, ev.Text), false)
}

func (b *Bridge) handleSessionConnect(ev host.SessionConnectEvent) {
	b.registry.Record(ev.Handle, ev.Username)

	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	if !cfg.EnableJoinLeaveMessages {
		return
	}
	if ev.Username == "" {
		b.log.Debug().Str("handle", string(ev.Handle)).Msg("Join without resolved username, not announcing")
		return
	}
	b.sendToDiscord(gamefmt.Announce(ev.Username, gamefmt.JoinedSuffix), true)
}

func (b *Bridge) handleSessionDisconnect(ev host.SessionDisconnectEvent) {
	username := b.registry.Resolve(ev.Handle)

	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	if !cfg.EnableJoinLeaveMessages {
		return
	}
	if username == Unknown || username == "" {
		b.log.Debug().Str("handle", string(ev.Handle)).Msg("Leave without recorded username, not announcing")
		return
	}
	b.sendToDiscord(gamefmt.Announce(username, gamefmt.LeftSuffix), true)
}

// handleServerClose announces the shutdown (synchronously, before the
// session goes away) and tears the client down. The loop keeps running
// until the host event channel closes with the process.
func (b *Bridge) handleServerClose() {
	b.serverAlive = false
	b.log.Info().Msg("Game server is shutting down")

	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
	} else if cfg.EnableServerStartStopMessages {
		b.sendToDiscordSync(gamefmt.Chat(gamefmt.ServerUser, gamefmt.ServerStopping), true)
	}
	b.teardown()
}
