// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"context"
	"errors"
	"net"

	"github.com/mcbridge/discordchatter/pkg/platform"
)

// ErrBotDisabled is returned by Reload when the bridge is disabled in
// configuration. It is a normal condition to report to the invoker, not a
// fault.
var ErrBotDisabled = errors.New("the Discord bot is disabled (see `dc config BotEnabled true`)")

// SendErrorClass is the closed classification of outbound failures.
type SendErrorClass int

const (
	// ClassConfiguration covers operator mistakes: rejected credentials and
	// unresolvable channel identifiers. Reported, never fatal.
	ClassConfiguration SendErrorClass = iota
	// ClassTransientNetwork covers timeouts. The message is dropped, no
	// retry is scheduled.
	ClassTransientNetwork
	// ClassProtocolPermission covers sends rejected for insufficient
	// privilege.
	ClassProtocolPermission
	// ClassUnexpected covers everything else. Unexpected faults propagate to
	// the host process; masking them risks silent message loss.
	ClassUnexpected
)

func (c SendErrorClass) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassTransientNetwork:
		return "transient_network"
	case ClassProtocolPermission:
		return "protocol_permission"
	default:
		return "unexpected"
	}
}

// Classify buckets an outbound-send or login error into the closed class
// set using the platform sentinel errors.
func Classify(err error) SendErrorClass {
	switch {
	case errors.Is(err, platform.ErrBadCredentials),
		errors.Is(err, platform.ErrChannelUnavailable):
		return ClassConfiguration
	case errors.Is(err, platform.ErrPermissionDenied):
		return ClassProtocolPermission
	case errors.Is(err, platform.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return ClassTransientNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransientNetwork
	}
	return ClassUnexpected
}

// guidance returns operator-actionable advice for non-fatal send failures.
func guidance(class SendErrorClass, err error) string {
	switch class {
	case ClassProtocolPermission:
		return "Ensure the bot is in your server and has send permissions in the relevant channel!"
	case ClassConfiguration:
		if errors.Is(err, platform.ErrBadCredentials) {
			return "You have provided an invalid token! Please run `dc config token <token>` in the console."
		}
		return "The configured channel could not be found. Check it with `dc config chanID <id>`."
	case ClassTransientNetwork:
		return "The request timed out; the message was dropped."
	default:
		return ""
	}
}
