// Copyright 2025-2026 The DiscordChatter Authors

// Package discord implements platform.Client on top of discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mcbridge/discordchatter/pkg/platform"
)

// Client is a single Discord bot session. The bridge delivers sends on
// goroutines while Close runs on its event loop, so access to the session
// handle is serialized through sessMu.
type Client struct {
	log   zerolog.Logger
	token string

	sessMu    sync.Mutex
	sess      *discordgo.Session
	onReady   func()
	onMessage func(platform.Message)
}

var _ platform.Client = (*Client)(nil)

// New creates a client for the given bot token. The session is not opened
// until Open is called.
func New(token string, log zerolog.Logger) *Client {
	return &Client{
		log:   log.With().Str("component", "discord").Logger(),
		token: token,
	}
}

func (c *Client) OnReady(fn func()) {
	c.onReady = fn
}

func (c *Client) OnMessage(fn func(platform.Message)) {
	c.onMessage = fn
}

// Open implements platform.Client. Credential rejections are wrapped in
// platform.ErrBadCredentials; other failures are returned as-is for the
// bridge to treat as unexpected.
func (c *Client) Open(_ context.Context) error {
	sess, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return fmt.Errorf("%w: %v", platform.ErrBadCredentials, err)
	}
	sess.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	sess.AddHandler(func(_ *discordgo.Session, _ *discordgo.Ready) {
		c.log.Info().Str("username", sess.State.User.Username).Msg("Logged in to Discord")
		if c.onReady != nil {
			c.onReady()
		}
	})
	sess.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if c.onMessage == nil || m.Author == nil {
			return
		}
		c.onMessage(platform.Message{
			ChannelID:  m.ChannelID,
			AuthorID:   m.Author.ID,
			AuthorName: m.Author.Username,
			AuthorBot:  m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID),
			Content:    m.Content,
		})
	})

	if err := sess.Open(); err != nil {
		return classifyOpen(err)
	}
	c.sessMu.Lock()
	c.sess = sess
	c.sessMu.Unlock()
	return nil
}

// session snapshots the current session handle. A send that snapshots
// before a concurrent Close completes against the old session, which
// discordgo tolerates; it just fails the REST call.
func (c *Client) session() *discordgo.Session {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.sess
}

// Send implements platform.Client.
func (c *Client) Send(channelID, text string) error {
	sess := c.session()
	if sess == nil {
		return fmt.Errorf("%w: session is not open", platform.ErrChannelUnavailable)
	}
	if _, err := sess.ChannelMessageSend(channelID, text); err != nil {
		return classifySend(err)
	}
	return nil
}

// SetPresence implements platform.Client.
func (c *Client) SetPresence(p platform.Presence) error {
	sess := c.session()
	if sess == nil {
		return errors.New("session is not open")
	}
	return sess.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: p.Status,
		Activities: []*discordgo.Activity{{
			Name: p.ActivityName,
			Type: activityType(p.ActivityType),
		}},
	})
}

// Close implements platform.Client. discordgo's Close returns only after
// the websocket and its goroutines are gone, which is what lets the bridge
// reconnect on the same credential without racing the old session.
func (c *Client) Close() error {
	c.sessMu.Lock()
	sess := c.sess
	c.sess = nil
	c.sessMu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}

// activityType maps a configured activity type to the Discord wire value.
// Unknown values fall back to listening, the plugin's historical default.
func activityType(name string) discordgo.ActivityType {
	switch name {
	case "playing":
		return discordgo.ActivityTypeGame
	case "streaming":
		return discordgo.ActivityTypeStreaming
	case "listening":
		return discordgo.ActivityTypeListening
	case "watching":
		return discordgo.ActivityTypeWatching
	case "competing":
		return discordgo.ActivityTypeCompeting
	default:
		return discordgo.ActivityTypeListening
	}
}

// classifyOpen wraps login failures. An authentication-failed websocket
// close (code 4004) or an HTTP 401 both mean the token was rejected.
func classifyOpen(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code == 4004 {
		return fmt.Errorf("%w: %v", platform.ErrBadCredentials, err)
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", platform.ErrBadCredentials, err)
	}
	if errors.Is(err, discordgo.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", platform.ErrBadCredentials, err)
	}
	return err
}

// classifySend wraps send failures into the platform sentinel set.
func classifySend(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			switch restErr.Message.Code {
			case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
				return fmt.Errorf("%w: %v", platform.ErrPermissionDenied, err)
			case discordgo.ErrCodeUnknownChannel:
				return fmt.Errorf("%w: %v", platform.ErrChannelUnavailable, err)
			}
		}
		if restErr.Response != nil {
			switch restErr.Response.StatusCode {
			case http.StatusForbidden:
				return fmt.Errorf("%w: %v", platform.ErrPermissionDenied, err)
			case http.StatusNotFound:
				return fmt.Errorf("%w: %v", platform.ErrChannelUnavailable, err)
			}
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", platform.ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", platform.ErrTimeout, err)
	}
	return err
}
