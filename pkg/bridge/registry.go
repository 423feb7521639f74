// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import "github.com/mcbridge/discordchatter/pkg/host"

// Unknown is returned by Resolve for handles with no recorded identity.
const Unknown = "Unknown"

// IdentityRegistry maps live session handles to the username observed at
// session start, so that disconnect events, which arrive without a
// username, can still be attributed. All access happens on the bridge
// event loop, so no locking is needed.
type IdentityRegistry struct {
	names map[host.SessionHandle]string
}

// NewIdentityRegistry returns an empty registry.
func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{names: make(map[host.SessionHandle]string)}
}

// Record inserts or overwrites the username for a handle. Username may be
// empty if the server could not resolve an identity.
func (r *IdentityRegistry) Record(handle host.SessionHandle, username string) {
	r.names[handle] = username
}

// Resolve returns the username recorded for a handle and removes the
// entry. A disconnect event consumes the identity exactly once; a second
// resolve of the same handle returns Unknown.
func (r *IdentityRegistry) Resolve(handle host.SessionHandle) string {
	name, ok := r.names[handle]
	if !ok {
		return Unknown
	}
	delete(r.names, handle)
	return name
}
