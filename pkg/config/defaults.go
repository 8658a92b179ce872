// Package config provides configuration types and defaults for autochat
// Centralized management of all constants and default values

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gliderlab/autochat/gateway/channels/discord"
	"github.com/gliderlab/autochat/pkg/filter"
	"github.com/gliderlab/autochat/pkg/llm"
	"github.com/gliderlab/autochat/pkg/messages"
)

// ===== Files =====

const (
	// DefaultConfigFile is read when --config is not given
	DefaultConfigFile = "autochat.yaml"

	// DefaultEnvFile holds secrets in KEY=VALUE form
	DefaultEnvFile = ".env"
)

// ===== Modes =====

const (
	ModeReply     = "reply"
	ModeBroadcast = "broadcast"
)

// ===== State backends =====

const (
	StateMemory = "memory"
	StateBadger = "badger"
)

// ===== Timing =====

const (
	DefaultReadDelay    = 10 * time.Second
	DefaultReplyDelay   = 5 * time.Second
	DefaultSendInterval = 60 * time.Second
)

// ===== Paths =====

// DefaultStateDir returns where the badger state lives (<binary-dir>/data
// unless AUTOCHAT_DATA_DIR is set)
func DefaultStateDir() string {
	if d := os.Getenv("AUTOCHAT_DATA_DIR"); d != "" {
		return d
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(os.TempDir(), "autochat")
	}
	return filepath.Join(filepath.Dir(exe), "data")
}

// DefaultBotConfig returns the configuration used when no file is present
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		Mode:           ModeReply,
		UseAI:          true,
		ReadDelay:      Duration(DefaultReadDelay),
		ReplyDelay:     Duration(DefaultReplyDelay),
		SendInterval:   Duration(DefaultSendInterval),
		MaxReplyLength: filter.DefaultMaxLength,
		MessagesFile:   messages.DefaultFile,
		Discord: DiscordConfig{
			BaseURL: discord.DefaultBaseURL,
			Timeout: Duration(discord.DefaultTimeout),
		},
		AI: AIConfig{
			Provider: string(llm.ProviderGoogle),
			Timeout:  Duration(llm.DefaultTimeout),
		},
		State: StateConfig{
			Backend: StateMemory,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
