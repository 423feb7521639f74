// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	relayedToDiscord  prometheus.Counter
	relayedToGame     prometheus.Counter
	announcementsSent prometheus.Counter
	droppedSends      *prometheus.CounterVec
)

// initMetrics registers the bridge metrics (idempotent).
func initMetrics() {
	metricsOnce.Do(func() {
		relayedToDiscord = promauto.NewCounter(prometheus.CounterOpts{
			Name: "dc_relayed_to_discord_total",
			Help: "Chat messages and announcements relayed from the game to Discord",
		})
		relayedToGame = promauto.NewCounter(prometheus.CounterOpts{
			Name: "dc_relayed_to_game_total",
			Help: "Channel messages relayed from Discord into the game",
		})
		announcementsSent = promauto.NewCounter(prometheus.CounterOpts{
			Name: "dc_announcements_total",
			Help: "Lifecycle announcements (join/leave/start/stop) sent to Discord",
		})
		droppedSends = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dc_dropped_sends_total",
			Help: "Outbound sends dropped after a classified non-fatal failure",
		}, []string{"class"})
	})
}

func countDroppedSend(class SendErrorClass) {
	if droppedSends != nil {
		droppedSends.WithLabelValues(class.String()).Inc()
	}
}
