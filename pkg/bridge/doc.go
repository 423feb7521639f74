// Copyright 2025-2026 The DiscordChatter Authors

// Package bridge relays chat between a Minecraft Bedrock server and a
// Discord channel and announces session lifecycle events (join, leave,
// server start/stop) as they happen.
//
// # Core Types
//
// [Bridge] owns the Discord client connection and runs the single event
// loop every game event, platform event and command invocation is handled
// on. Because nothing else touches bridge state, [IdentityRegistry] and
// [ConfigStore] need no locking.
//
// [IdentityRegistry] maps live session handles to usernames so that
// disconnect events, which arrive without a username, can still be
// attributed in leave announcements.
//
// [ConfigStore] holds the two durable settings documents (bridge and
// presence). Reads go back to disk every time, so `dc config` edits take
// effect without a restart; a Reload is only needed for connection
// settings.
//
// [CommandProcessor] parses the `dc` operator command surface into a small
// tagged AST and dispatches it. Replies go to the invoker only: the process
// log for the console, a single-player message for an in-game invoker.
//
// # Failure Policy
//
// Outbound sends are best-effort. Rejected credentials, unresolvable
// channels, permission refusals and timeouts are operator-fixable and are
// logged with guidance; the message is dropped. Anything else is raised as
// a fatal fault, because silently masking unknown failures in a message
// relay means silent message loss.
//
// # Sub-packages
//
//   - discordfmt converts Discord text for the game: emote sanitization,
//     broadcast framing, console echo lines.
//   - gamefmt frames game chat and lifecycle announcements for Discord.
package bridge
