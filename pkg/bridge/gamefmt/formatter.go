// Copyright 2025-2026 The DiscordChatter Authors

// Package gamefmt frames game-side text for the Discord channel.
package gamefmt

// Lifecycle announcement text.
const (
	JoinedSuffix   = "has joined the server!"
	LeftSuffix     = "has left the server!"
	ServerStarted  = "Server Started!"
	ServerStopping = "Server Shutting Down!"
	ServerUser     = "Server"
)

// Chat frames an ordinary chat message as `[username] message`.
func Chat(username, message string) string {
	return "[" + username + "] " + message
}

// Announce frames a lifecycle announcement as `username suffix`, e.g.
// `Steve has joined the server!`.
func Announce(username, suffix string) string {
	return username + " " + suffix
}
