// Copyright 2025-2026 The DiscordChatter Authors

// Package discordfmt converts Discord message text into game-ready text:
// emote markup sanitization, the in-game broadcast frame, and the console
// echo line.
package discordfmt

import (
	"regexp"
	"time"
)

// emoteTagRe matches Discord's inline emote markup: <:name:id> for static
// emotes and <a:name:id> for animated ones.
var emoteTagRe = regexp.MustCompile(`<a?:([A-Za-z0-9_]+):[0-9]+>`)

// Sanitize rewrites Discord emote markup into plain :name: tokens. Each
// pass replaces every occurrence of one matched tag, then the text is
// rescanned; the loop ends when a scan finds no markup, so the transform
// reaches a fixed point after at most one pass per distinct tag.
func Sanitize(text string) string {
	for {
		m := emoteTagRe.FindStringSubmatch(text)
		if m == nil {
			return text
		}
		tagRe := regexp.MustCompile(regexp.QuoteMeta(m[0]))
		text = tagRe.ReplaceAllString(text, ":"+m[1]+":")
	}
}

// Broadcast frames a Discord message for the in-game chat stream. The §2
// prefix colors the line green; the frame itself stays plain so logs and
// clients without color support still read `<[DISCORD] name> message`.
func Broadcast(username, message string) string {
	return "§2<[DISCORD] " + username + "> " + message
}

// ConsoleLine is the server-console echo of a relayed Discord message.
func ConsoleLine(timestamp, username, message string) string {
	return "[" + timestamp + " CHAT] <[DISCORD] " + username + "> " + message
}

// Timestamp renders an instant as zero-padded local time, YYYY-MM-DD HH:MM:SS.
func Timestamp(now time.Time) string {
	return now.Format("2006-01-02 15:04:05")
}
