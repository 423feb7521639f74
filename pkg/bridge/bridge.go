// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mcbridge/discordchatter/pkg/bridge/gamefmt"
	"github.com/mcbridge/discordchatter/pkg/host"
	"github.com/mcbridge/discordchatter/pkg/platform"
)

// State is the bridge connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DialFunc creates an unopened platform client for a credential. The bridge
// calls it on every (re)connect so that a token changed via `dc config`
// takes effect on the next Reload.
type DialFunc func(token string) platform.Client

// Internal loop events. Platform callbacks and cross-goroutine requests are
// funneled through one channel so that all bridge state is touched from a
// single goroutine; the registry and config store need no locking.
//
// Platform events carry the connection generation of the session that
// produced them. A session torn down by Reload may still have events queued
// on the loop; their stale generation lets the loop discard them instead of
// acting on the new session's behalf.
type (
	readyEvent   struct{ gen uint64 }
	messageEvent struct {
		gen uint64
		msg platform.Message
	}
	commandEvent struct {
		inv  host.Invoker
		args []string
	}
	reloadEvent  struct{ reply chan error }
	barrierEvent struct{ fn func() }
)

// Bridge relays chat between the game server and a Discord channel and
// announces session lifecycle events. It owns its platform client
// exclusively; connect, reconnect and teardown all go through its methods.
type Bridge struct {
	log   zerolog.Logger
	store *ConfigStore
	host  host.Host
	dial  DialFunc

	client      platform.Client
	gen         uint64
	state       State
	serverAlive bool
	registry    *IdentityRegistry
	commands    *CommandProcessor

	loopCh chan any
	fatal  chan error
}

// New creates a bridge. The client is not dialed until Run.
func New(store *ConfigStore, h host.Host, dial DialFunc, log zerolog.Logger) *Bridge {
	initMetrics()
	b := &Bridge{
		log:      log.With().Str("component", "bridge").Logger(),
		store:    store,
		host:     h,
		dial:     dial,
		state:    StateDisconnected,
		registry: NewIdentityRegistry(),
		loopCh:   make(chan any, 16),
		fatal:    make(chan error, 1),
	}
	b.commands = newCommandProcessor(b, store, h, log)
	return b
}

// State returns the connection state. Only meaningful from within the event
// loop; external callers should treat it as advisory.
func (b *Bridge) State() State {
	return b.state
}

// HandleCommand is the host.CommandFunc for the `dc` verb. The invocation
// is posted onto the event loop so command handling is serialized with
// everything else.
func (b *Bridge) HandleCommand(inv host.Invoker, args []string) {
	b.post(commandEvent{inv: inv, args: args})
}

// RequestReload asks the event loop to perform a Reload and waits for the
// outcome. Used by callers outside the loop, such as the admin API.
func (b *Bridge) RequestReload(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case b.loopCh <- reloadEvent{reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run connects the bridge and processes events until the host's event
// channel closes, the context is cancelled, or an unexpected fault
// surfaces. The returned error is nil for a normal shutdown.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.start(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			b.teardown()
			return nil
		case ev, ok := <-b.host.Events():
			if !ok {
				b.teardown()
				b.log.Info().Msg("Host event stream closed, bridge stopping")
				return nil
			}
			b.handleGameEvent(ev)
		case ev := <-b.loopCh:
			b.handleLoopEvent(ctx, ev)
		case err := <-b.fatal:
			b.teardown()
			return err
		}
	}
}

// start performs one login attempt. A disabled bridge stays disconnected
// without any network action. A rejected credential is an operator mistake:
// it is logged with guidance and the bridge stays down. Anything else is
// re-raised to the caller.
func (b *Bridge) start(ctx context.Context) error {
	cfg, err := b.store.Bridge()
	if err != nil {
		return err
	}
	if !cfg.BotEnabled {
		b.state = StateDisconnected
		b.log.Info().Msg("Bot is disabled, not connecting")
		return nil
	}

	b.state = StateConnecting
	b.gen++
	gen := b.gen
	client := b.dial(cfg.Token)
	client.OnReady(func() { b.post(readyEvent{gen: gen}) })
	client.OnMessage(func(msg platform.Message) { b.post(messageEvent{gen: gen, msg: msg}) })

	b.log.Info().Msg("Logging in to Discord")
	if err := client.Open(ctx); err != nil {
		b.state = StateDisconnected
		if Classify(err) == ClassConfiguration {
			b.log.Error().Err(err).Msg(guidance(ClassConfiguration, err))
			return nil
		}
		return fmt.Errorf("discord login failed: %w", err)
	}
	b.client = client
	return nil
}

// reload tears the current session down and runs a fresh login. Teardown
// completes before the new attempt begins so two sessions never race on the
// same credential.
func (b *Bridge) reload(ctx context.Context) error {
	cfg, err := b.store.Bridge()
	if err != nil {
		return err
	}
	if !cfg.BotEnabled {
		return ErrBotDisabled
	}
	b.log.Info().Msg("Reloading Discord connection")
	b.teardown()
	return b.start(ctx)
}

// teardown closes the owned client, if any. The underlying session requires
// an explicit close before the process can exit.
func (b *Bridge) teardown() {
	if b.client != nil {
		if err := b.client.Close(); err != nil {
			b.log.Warn().Err(err).Msg("Error closing Discord session")
		}
		b.client = nil
	}
	// Invalidate any events the closed session still has queued.
	b.gen++
	b.state = StateDisconnected
}

func (b *Bridge) handleLoopEvent(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case readyEvent:
		if ev.gen != b.gen {
			b.log.Debug().Uint64("gen", ev.gen).Msg("Dropping ready event from a closed session")
			return
		}
		b.handleReady()
	case messageEvent:
		if ev.gen != b.gen {
			b.log.Debug().Uint64("gen", ev.gen).Msg("Dropping message from a closed session")
			return
		}
		b.handleDiscordMessage(ev.msg)
	case commandEvent:
		b.commands.handle(ctx, ev.inv, ev.args)
	case reloadEvent:
		ev.reply <- b.reload(ctx)
	case barrierEvent:
		ev.fn()
	}
}

// handleReady completes the Connecting state: announce the server start if
// configured and publish the configured presence.
func (b *Bridge) handleReady() {
	b.state = StateConnected
	b.log.Info().Msg("Bridge connected")

	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	if cfg.EnableServerStartStopMessages {
		b.sendToDiscord(gamefmt.Chat(gamefmt.ServerUser, gamefmt.ServerStarted), true)
	}
	b.applyPresence()
}

func (b *Bridge) applyPresence() {
	cfg, err := b.store.Presence()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read presence config")
		return
	}
	if b.client == nil {
		return
	}
	err = b.client.SetPresence(platform.Presence{
		Status:       cfg.Status,
		ActivityType: cfg.ActivityType,
		ActivityName: cfg.ActivityName,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("Failed to set Discord presence")
	}
}

// sendToDiscord relays text to the configured channel. The send runs off
// the event loop; failures are classified and only unexpected ones are
// fatal.
func (b *Bridge) sendToDiscord(text string, announcement bool) {
	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	client, channelID, ok := b.sendable(cfg)
	if !ok {
		return
	}
	go func() {
		b.deliverToDiscord(client, channelID, text, announcement)
	}()
}

// sendToDiscordSync is sendToDiscord without the goroutine, for the
// shutdown path where the message must be delivered before teardown.
func (b *Bridge) sendToDiscordSync(text string, announcement bool) {
	cfg, err := b.store.Bridge()
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to read bridge config")
		return
	}
	client, channelID, ok := b.sendable(cfg)
	if !ok {
		return
	}
	b.deliverToDiscord(client, channelID, text, announcement)
}

func (b *Bridge) sendable(cfg BridgeConfig) (platform.Client, string, bool) {
	if !cfg.BotEnabled {
		return nil, "", false
	}
	if !cfg.Operational() || b.client == nil {
		b.log.Debug().Msg("Bridge not operational, dropping Discord-bound message")
		return nil, "", false
	}
	return b.client, cfg.ChanID, true
}

func (b *Bridge) deliverToDiscord(client platform.Client, channelID, text string, announcement bool) {
	if err := client.Send(channelID, text); err != nil {
		b.reportSendFailure(err)
		return
	}
	if announcement {
		announcementsSent.Inc()
	} else {
		relayedToDiscord.Inc()
	}
}

// reportSendFailure applies the asymmetric failure policy: the three
// anticipated operator-mistake classes are logged and swallowed, anything
// else is raised as a fatal fault.
func (b *Bridge) reportSendFailure(err error) {
	class := Classify(err)
	if class == ClassUnexpected {
		b.log.Error().Err(err).Msg("Unexpected Discord send failure")
		b.raiseFatal(err)
		return
	}
	countDroppedSend(class)
	b.log.Error().Err(err).Str("class", class.String()).Msg(guidance(class, err))
}

func (b *Bridge) raiseFatal(err error) {
	select {
	case b.fatal <- err:
	default:
	}
}

// post hands an event to the loop without blocking the caller. Dropping is
// acceptable: delivery is best-effort and the callers (platform callbacks,
// command dispatch) must never deadlock against a stopped loop.
func (b *Bridge) post(ev any) {
	select {
	case b.loopCh <- ev:
	default:
		b.log.Warn().Msg("Event loop backlogged, dropping event")
	}
}
