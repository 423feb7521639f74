// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mcbridge/discordchatter/pkg/platform"
)

func TestClassify_BadCredentials(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: 401", platform.ErrBadCredentials)
	if got := Classify(err); got != ClassConfiguration {
		t.Errorf("got %v, want ClassConfiguration", got)
	}
}

func TestClassify_ChannelUnavailable(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: 10003", platform.ErrChannelUnavailable)
	if got := Classify(err); got != ClassConfiguration {
		t.Errorf("got %v, want ClassConfiguration", got)
	}
}

func TestClassify_PermissionDenied(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: 50013", platform.ErrPermissionDenied)
	if got := Classify(err); got != ClassProtocolPermission {
		t.Errorf("got %v, want ClassProtocolPermission", got)
	}
}

func TestClassify_Timeout(t *testing.T) {
	t.Parallel()
	if got := Classify(fmt.Errorf("send: %w", platform.ErrTimeout)); got != ClassTransientNetwork {
		t.Errorf("sentinel timeout: got %v", got)
	}
	if got := Classify(context.DeadlineExceeded); got != ClassTransientNetwork {
		t.Errorf("deadline exceeded: got %v", got)
	}
}

func TestClassify_UnknownIsUnexpected(t *testing.T) {
	t.Parallel()
	if got := Classify(errors.New("boom")); got != ClassUnexpected {
		t.Errorf("got %v, want ClassUnexpected", got)
	}
}

func TestGuidance_MentionsTokenCommandForBadCredentials(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("%w: rejected", platform.ErrBadCredentials)
	msg := guidance(Classify(err), err)
	if !strings.Contains(msg, "dc config token") {
		t.Errorf("got %q, want token guidance", msg)
	}
}
