// Copyright 2025-2026 The DiscordChatter Authors

// Package host defines the boundary between the bridge and the game-server
// runtime. The bridge consumes lifecycle and chat events from a Host and
// sends text back through its broadcast primitives; it never reaches into
// the server itself.
package host

// SessionHandle is an opaque identifier for one live game connection. It is
// valid only between the connect and disconnect events for that connection
// and is owned by the game-server runtime.
type SessionHandle string

// ChatEvent is a chat message sent by a connected player.
type ChatEvent struct {
	Sender string
	Text   string
}

// SessionConnectEvent fires when a player connection completes. Username may
// be empty if the server could not resolve an identity for the connection.
type SessionConnectEvent struct {
	Handle   SessionHandle
	Username string
}

// SessionDisconnectEvent fires when a player connection ends. It carries no
// username; the bridge resolves one from its identity registry.
type SessionDisconnectEvent struct {
	Handle SessionHandle
}

// ServerOpenEvent fires once the server has completed startup and is ready
// to accept commands.
type ServerOpenEvent struct{}

// ServerCloseEvent fires when the server begins shutting down.
type ServerCloseEvent struct{}

// Invoker identifies who issued a registered command. Console is true for
// the operator console; otherwise Player holds the in-game player name.
type Invoker struct {
	Console bool
	Player  string
}

// CommandFunc handles one invocation of a registered command verb.
type CommandFunc func(inv Invoker, args []string)

// Host is the game-server runtime as seen by the bridge.
type Host interface {
	// Events delivers game-side events as ChatEvent, SessionConnectEvent,
	// SessionDisconnectEvent, ServerOpenEvent and ServerCloseEvent values.
	// The channel is closed when the server process has exited.
	Events() <-chan any
	// Broadcast sends text to all connected players.
	Broadcast(text string) error
	// Tell sends text to a single named player.
	Tell(player, text string) error
	// RegisterCommand installs a handler for a command verb. Must be called
	// before the host starts delivering events.
	RegisterCommand(verb string, fn CommandFunc)
}
