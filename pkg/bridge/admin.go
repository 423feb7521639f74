// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminHandler serves the bridge admin API: POST /api/reload triggers a
// live reconnect, GET /metrics exposes the Prometheus registry.
func (b *Bridge) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/reload", b.handleAdminReload)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (b *Bridge) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b.log.Info().Str("remote_addr", r.RemoteAddr).Msg("Reload requested via admin API")

	err := b.RequestReload(r.Context())
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, ErrBotDisabled):
		w.WriteHeader(http.StatusConflict)
		b.writeJSON(w, map[string]string{"error": "bot disabled"})
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
		b.writeJSON(w, map[string]string{"error": err.Error()})
	default:
		b.writeJSON(w, map[string]string{"status": "reloaded"})
	}
}

func (b *Bridge) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.log.Warn().Err(err).Msg("Failed to write admin response")
	}
}
