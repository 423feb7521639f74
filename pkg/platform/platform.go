// Copyright 2025-2026 The DiscordChatter Authors

// Package platform defines the boundary between the bridge and the chat
// platform client. Implementations wrap a concrete client library and
// translate its failures into the closed set of sentinel errors below so
// the bridge never has to inspect library-specific error shapes.
package platform

import (
	"context"
	"errors"
)

// Sentinel errors implementations wrap platform failures with. The bridge
// classifies outbound-send and login failures by errors.Is against these.
var (
	// ErrBadCredentials marks a rejected or invalid login credential.
	ErrBadCredentials = errors.New("platform rejected the credential")
	// ErrPermissionDenied marks a send rejected for insufficient privilege.
	ErrPermissionDenied = errors.New("platform denied permission")
	// ErrChannelUnavailable marks a destination channel that could not be
	// resolved, typically a misconfigured channel identifier.
	ErrChannelUnavailable = errors.New("platform channel unavailable")
	// ErrTimeout marks a request that timed out on the network.
	ErrTimeout = errors.New("platform request timed out")
)

// Message is an incoming channel message.
type Message struct {
	ChannelID  string
	AuthorID   string
	AuthorName string
	AuthorBot  bool
	Content    string
}

// Presence is the platform-visible presence of the bot account.
type Presence struct {
	Status       string
	ActivityType string
	ActivityName string
}

// Client is a single bot connection to the chat platform. Callbacks must be
// installed before Open; they may be invoked from the client's own
// goroutines.
type Client interface {
	OnReady(fn func())
	OnMessage(fn func(Message))
	// Open logs in and starts the connection. A credential rejection is
	// reported wrapped in ErrBadCredentials.
	Open(ctx context.Context) error
	// Send posts text to a channel.
	Send(channelID, text string) error
	SetPresence(p Presence) error
	// Close tears the connection down. It returns only after the client has
	// released its resources, so a caller may reconnect immediately after.
	Close() error
}
