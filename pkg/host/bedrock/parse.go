// Copyright 2025-2026 The DiscordChatter Authors

package bedrock

import (
	"regexp"
	"strings"

	"github.com/mcbridge/discordchatter/pkg/host"
)

// Bedrock dedicated server log lines. The connect/disconnect lines carry the
// player name and XUID; the XUID doubles as the session handle because it is
// stable for the lifetime of the connection.
var (
	connectRe    = regexp.MustCompile(`Player connected: ([^,]+), xuid: ([0-9]+)`)
	disconnectRe = regexp.MustCompile(`Player disconnected: [^,]+, xuid: ([0-9]+)`)
	chatRe       = regexp.MustCompile(`INFO[^\]]*\]:? <([^>]+)> (.+)$`)
	startedRe    = regexp.MustCompile(`Server started`)
	stoppingRe   = regexp.MustCompile(`Server stop requested`)
)

// parseLogLine turns one server log line into a host event. The second
// return is false for lines the bridge does not care about.
//
// Chat lines have the shape `[... INFO] <name> message`. Text broadcast by
// the bridge itself goes out via the `say` command, which the server logs
// with a bracketed `[Server]` origin instead of `<name>`, so relayed
// messages never match chatRe and cannot loop back to Discord.
func parseLogLine(line string) (any, bool) {
	line = strings.TrimRight(line, "\r\n")
	if m := connectRe.FindStringSubmatch(line); m != nil {
		return host.SessionConnectEvent{
			Handle:   host.SessionHandle(m[2]),
			Username: strings.TrimSpace(m[1]),
		}, true
	}
	if m := disconnectRe.FindStringSubmatch(line); m != nil {
		return host.SessionDisconnectEvent{Handle: host.SessionHandle(m[1])}, true
	}
	if m := chatRe.FindStringSubmatch(line); m != nil {
		return host.ChatEvent{Sender: m[1], Text: m[2]}, true
	}
	if startedRe.MatchString(line) {
		return host.ServerOpenEvent{}, true
	}
	if stoppingRe.MatchString(line) {
		return host.ServerCloseEvent{}, true
	}
	return nil, false
}
