// Copyright 2025-2026 The DiscordChatter Authors

package bridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// unset is the placeholder value for credentials that have not been
// configured yet.
const unset = "null"

// BridgeConfig is the durable bridge settings record.
type BridgeConfig struct {
	Token                         string `yaml:"token"`
	ChanID                        string `yaml:"chanID"`
	BotEnabled                    bool   `yaml:"BotEnabled"`
	PostDiscordMessagesToConsole  bool   `yaml:"PostDiscordMessagesToConsole"`
	EnableJoinLeaveMessages       bool   `yaml:"EnableJoinLeaveMessages"`
	EnableServerStartStopMessages bool   `yaml:"EnableServerStartStopMessages"`
}

// Operational reports whether the bridge has both a token and a channel
// configured. Without both, outbound sends to Discord are suppressed.
func (c BridgeConfig) Operational() bool {
	return c.Token != "" && c.Token != unset && c.ChanID != "" && c.ChanID != unset
}

// DefaultBridgeConfig is the record materialized on first run.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Token:                         unset,
		ChanID:                        unset,
		BotEnabled:                    true,
		PostDiscordMessagesToConsole:  true,
		EnableJoinLeaveMessages:       true,
		EnableServerStartStopMessages: true,
	}
}

// PresenceConfig is the durable platform-presence record.
type PresenceConfig struct {
	Status       string `yaml:"status"`
	ActivityType string `yaml:"activityType"`
	ActivityName string `yaml:"activityName"`
}

// DefaultPresenceConfig is the presence record materialized on first run.
func DefaultPresenceConfig() PresenceConfig {
	return PresenceConfig{
		Status:       "online",
		ActivityType: "listening",
		ActivityName: "Listening for chatter!",
	}
}

var (
	validStatuses      = []string{"online", "idle", "invisible", "dnd"}
	validActivityTypes = []string{"playing", "streaming", "listening", "watching", "competing"}
)

// ConfigStore reads and writes the durable configuration documents. Every
// read goes back to disk so that command-driven edits and external edits
// are both observed by the next access; there is no cache to invalidate.
type ConfigStore struct {
	dir string
	log zerolog.Logger
}

// NewConfigStore creates a store rooted at dir. The documents are created
// with defaults on first read or write.
func NewConfigStore(dir string, log zerolog.Logger) *ConfigStore {
	return &ConfigStore{
		dir: dir,
		log: log.With().Str("component", "config").Logger(),
	}
}

func (s *ConfigStore) bridgePath() string   { return filepath.Join(s.dir, "bridge.yaml") }
func (s *ConfigStore) presencePath() string { return filepath.Join(s.dir, "presence.yaml") }

// Bridge returns the current bridge settings, materializing the default
// record if the document does not exist yet.
func (s *ConfigStore) Bridge() (BridgeConfig, error) {
	cfg := DefaultBridgeConfig()
	if err := s.read(s.bridgePath(), &cfg); err != nil {
		return BridgeConfig{}, err
	}
	return cfg, nil
}

// Presence returns the current presence settings, materializing the
// default record if the document does not exist yet. Missing fields fall
// back to their defaults.
func (s *ConfigStore) Presence() (PresenceConfig, error) {
	cfg := DefaultPresenceConfig()
	if err := s.read(s.presencePath(), &cfg); err != nil {
		return PresenceConfig{}, err
	}
	def := DefaultPresenceConfig()
	if cfg.Status == "" {
		cfg.Status = def.Status
	}
	if cfg.ActivityType == "" {
		cfg.ActivityType = def.ActivityType
	}
	return cfg, nil
}

// read unmarshals the document at path into out, writing out's current
// (default) contents to disk first if the document is absent.
func (s *ConfigStore) read(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info().Str("path", path).Msg("Creating config document with defaults")
		if err := s.write(path, out); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (s *ConfigStore) write(path string, doc any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	// 0600: the bridge document holds the bot token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Get returns the string rendering of one config key. The second return is
// false for unknown keys.
func (s *ConfigStore) Get(key string) (string, bool) {
	switch key {
	case "token", "chanID", "BotEnabled", "PostDiscordMessagesToConsole",
		"EnableJoinLeaveMessages", "EnableServerStartStopMessages":
		cfg, err := s.Bridge()
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to read bridge config")
			return "", false
		}
		switch key {
		case "token":
			return cfg.Token, true
		case "chanID":
			return cfg.ChanID, true
		case "BotEnabled":
			return strconv.FormatBool(cfg.BotEnabled), true
		case "PostDiscordMessagesToConsole":
			return strconv.FormatBool(cfg.PostDiscordMessagesToConsole), true
		case "EnableJoinLeaveMessages":
			return strconv.FormatBool(cfg.EnableJoinLeaveMessages), true
		default:
			return strconv.FormatBool(cfg.EnableServerStartStopMessages), true
		}
	case "status", "activityType", "activityName":
		cfg, err := s.Presence()
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to read presence config")
			return "", false
		}
		switch key {
		case "status":
			return cfg.Status, true
		case "activityType":
			return cfg.ActivityType, true
		default:
			return cfg.ActivityName, true
		}
	}
	return "", false
}

// Set validates value against key's accepted domain and persists the full
// record on success. Unknown keys and out-of-domain values are rejected
// without touching the stored document.
func (s *ConfigStore) Set(key, value string) error {
	switch key {
	case "token", "chanID", "BotEnabled", "PostDiscordMessagesToConsole",
		"EnableJoinLeaveMessages", "EnableServerStartStopMessages":
		cfg, err := s.Bridge()
		if err != nil {
			return err
		}
		switch key {
		case "token":
			cfg.Token = value
		case "chanID":
			cfg.ChanID = stripChannelMention(value)
		case "BotEnabled":
			cfg.BotEnabled, err = parseBool(key, value)
		case "PostDiscordMessagesToConsole":
			cfg.PostDiscordMessagesToConsole, err = parseBool(key, value)
		case "EnableJoinLeaveMessages":
			cfg.EnableJoinLeaveMessages, err = parseBool(key, value)
		case "EnableServerStartStopMessages":
			cfg.EnableServerStartStopMessages, err = parseBool(key, value)
		}
		if err != nil {
			return err
		}
		return s.write(s.bridgePath(), &cfg)
	case "status", "activityType", "activityName":
		cfg, err := s.Presence()
		if err != nil {
			return err
		}
		switch key {
		case "status":
			if !member(validStatuses, value) {
				return fmt.Errorf("invalid value %q for status: must be one of %s", value, strings.Join(validStatuses, ", "))
			}
			cfg.Status = value
		case "activityType":
			if !member(validActivityTypes, value) {
				return fmt.Errorf("invalid value %q for activityType: must be one of %s", value, strings.Join(validActivityTypes, ", "))
			}
			cfg.ActivityType = value
		case "activityName":
			cfg.ActivityName = value
		}
		return s.write(s.presencePath(), &cfg)
	}
	return fmt.Errorf("unknown config key %q", key)
}

// parseBool accepts only the literal tokens true and false.
func parseBool(key, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q for %s: must be true or false", value, key)
}

// stripChannelMention unwraps a Discord channel mention (`<#123>`) so the
// raw channel ID is stored.
func stripChannelMention(value string) string {
	if strings.HasPrefix(value, "<#") && strings.HasSuffix(value, ">") {
		return strings.TrimSuffix(strings.TrimPrefix(value, "<#"), ">")
	}
	return value
}

func member(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
