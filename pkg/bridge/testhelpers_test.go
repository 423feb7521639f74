// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcbridge/discordchatter/pkg/host"
	"github.com/mcbridge/discordchatter/pkg/platform"
)

// fakeClient is an in-memory platform.Client that records sends.
type fakeClient struct {
	dialer *fakeDialer

	mu        sync.Mutex
	onReady   func()
	onMessage func(platform.Message)
	openErr   error
	sendErr   error
	opened    int
	closed    int
	attempts  int
	sent      []string
	presence  *platform.Presence

	sentCh chan string
}

func (c *fakeClient) OnReady(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

func (c *fakeClient) OnMessage(fn func(platform.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

func (c *fakeClient) Open(_ context.Context) error {
	if c.openErr != nil {
		return c.openErr
	}
	c.mu.Lock()
	c.opened++
	c.mu.Unlock()
	if c.dialer != nil {
		c.dialer.noteOpen(c)
	}
	return nil
}

func (c *fakeClient) Send(channelID, text string) error {
	c.mu.Lock()
	c.attempts++
	err := c.sendErr
	if err == nil {
		c.sent = append(c.sent, text)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.sentCh <- text
	return nil
}

func (c *fakeClient) SetPresence(p platform.Presence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presence = &p
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeClient) sendAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *fakeClient) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fireReady simulates the platform ready signal.
func (c *fakeClient) fireReady() {
	c.mu.Lock()
	fn := c.onReady
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// fakeDialer hands out fakeClients and checks that every earlier client
// was closed before a new one opens (the reload serialization contract).
type fakeDialer struct {
	mu             sync.Mutex
	openErr        error
	sendErr        error
	clients        []*fakeClient
	tokens         []string
	overlapViolated bool
}

func (d *fakeDialer) dial(token string) platform.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := &fakeClient{
		dialer:  d,
		openErr: d.openErr,
		sendErr: d.sendErr,
		sentCh:  make(chan string, 16),
	}
	d.clients = append(d.clients, c)
	d.tokens = append(d.tokens, token)
	return c
}

func (d *fakeDialer) noteOpen(opening *fakeClient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.clients {
		if c == opening {
			continue
		}
		c.mu.Lock()
		if c.opened > 0 && c.closed == 0 {
			d.overlapViolated = true
		}
		c.mu.Unlock()
	}
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

func (d *fakeDialer) client(i int) *fakeClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[i]
}

// fakeHost is an in-memory host.Host.
type fakeHost struct {
	events    chan any
	closeOnce sync.Once

	mu         sync.Mutex
	broadcasts []string
	tells      map[string][]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		events: make(chan any, 16),
		tells:  make(map[string][]string),
	}
}

func (h *fakeHost) Events() <-chan any { return h.events }

func (h *fakeHost) Broadcast(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, text)
	return nil
}

func (h *fakeHost) Tell(player, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tells[player] = append(h.tells[player], text)
	return nil
}

func (h *fakeHost) RegisterCommand(string, host.CommandFunc) {}

func (h *fakeHost) close() {
	h.closeOnce.Do(func() { close(h.events) })
}

func (h *fakeHost) broadcastCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.broadcasts)
}

func (h *fakeHost) lastBroadcast() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.broadcasts) == 0 {
		return ""
	}
	return h.broadcasts[len(h.broadcasts)-1]
}

func (h *fakeHost) tellsFor(player string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.tells[player]...)
}

// operationalStore returns a store whose bridge document has a token and
// channel configured.
func operationalStore(t *testing.T) *ConfigStore {
	t.Helper()
	s := newTestStore(t)
	if err := s.Set("token", "test-token"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("chanID", "chan-1"); err != nil {
		t.Fatal(err)
	}
	return s
}

// startBridge runs the bridge loop in the background and returns the Run
// error channel. The host event channel is closed during cleanup so the
// loop always terminates.
func startBridge(t *testing.T, s *ConfigStore, h *fakeHost, d *fakeDialer) (*Bridge, <-chan error) {
	t.Helper()
	b := New(s, h, d.dial, zerolog.Nop())
	errCh := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		errCh <- b.Run(context.Background())
		close(stopped)
	}()
	t.Cleanup(func() {
		h.close()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Error("bridge loop did not stop")
		}
	})
	return b, errCh
}

// barrier posts a marker onto the loop and waits for it, guaranteeing all
// previously posted loop events have been handled.
func barrier(t *testing.T, b *Bridge) {
	t.Helper()
	done := make(chan struct{})
	select {
	case b.loopCh <- barrierEvent{fn: func() { close(done) }}:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not accept barrier")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not reach barrier")
	}
}

// onLoop runs fn on the event loop and waits for it.
func onLoop(t *testing.T, b *Bridge, fn func()) {
	t.Helper()
	done := make(chan struct{})
	b.loopCh <- barrierEvent{fn: func() {
		fn()
		close(done)
	}}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not run function")
	}
}

// waitSent receives one sent message from the client with a timeout.
func waitSent(t *testing.T, c *fakeClient) string {
	t.Helper()
	select {
	case text := <-c.sentCh:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("no message was sent to Discord")
		return ""
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
