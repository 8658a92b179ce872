// Package config provides configuration types for autochat
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gliderlab/autochat/gateway/channels/types"
	"github.com/gliderlab/autochat/pkg/llm"
)

// BotConfig holds all configurable bot parameters
type BotConfig struct {
	Mode           string   `yaml:"mode"`             // "reply" or "broadcast"
	ChannelID      string   `yaml:"channel_id"`       // Discord channel snowflake
	UseAI          bool     `yaml:"use_ai"`           // reply mode: AI or canned replies
	ReadDelay      Duration `yaml:"read_delay"`       // wait between polls
	ReplyDelay     Duration `yaml:"reply_delay"`      // wait before posting a reply
	SendInterval   Duration `yaml:"send_interval"`    // broadcast period
	MaxReplyLength int      `yaml:"max_reply_length"` // trim length (default: 200)
	MessagesFile   string   `yaml:"messages_file"`    // canned message pool

	Discord DiscordConfig `yaml:"discord"`
	AI      AIConfig      `yaml:"ai"`
	State   StateConfig   `yaml:"state"`
	Log     LogConfig     `yaml:"log"`
}

// DiscordConfig holds REST client settings
type DiscordConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Timeout    Duration `yaml:"timeout"`
	FetchLimit int      `yaml:"fetch_limit"` // ?limit= on message fetches, 0 = server default
}

// AIConfig selects and tunes the reply model
type AIConfig struct {
	Provider string   `yaml:"provider"` // "google", "genai", "openai"
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"base_url"`
	Timeout  Duration `yaml:"timeout"`
}

// StateConfig selects where the last-seen marker is kept
type StateConfig struct {
	Backend string `yaml:"backend"` // "memory" or "badger"
	Dir     string `yaml:"dir"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load reads a YAML config over the defaults. A missing DefaultConfigFile is
// not an error; any other missing path is.
func Load(path string) (*BotConfig, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigFile {
			return DefaultBotConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(raw []byte) (*BotConfig, error) {
	cfg := DefaultBotConfig()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings needed by the selected mode
func (c *BotConfig) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeReply, ModeBroadcast:
	default:
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeReply, ModeBroadcast, c.Mode))
	}
	if c.ChannelID == "" {
		errs = append(errs, errors.New("channel_id is required"))
	} else if !types.ValidID(c.ChannelID) {
		errs = append(errs, fmt.Errorf("channel_id must be numeric, got %q", c.ChannelID))
	}
	if c.ReadDelay < 0 {
		errs = append(errs, errors.New("read_delay must not be negative"))
	}
	if c.ReplyDelay < 0 {
		errs = append(errs, errors.New("reply_delay must not be negative"))
	}
	if c.Mode == ModeBroadcast && c.SendInterval <= 0 {
		errs = append(errs, errors.New("send_interval must be positive"))
	}
	if c.Discord.FetchLimit < 0 || c.Discord.FetchLimit > 100 {
		errs = append(errs, errors.New("discord.fetch_limit must be between 0 and 100"))
	}
	if c.MaxReplyLength <= 0 {
		errs = append(errs, errors.New("max_reply_length must be positive"))
	}
	if _, err := llm.ParseProviderType(c.AI.Provider); err != nil {
		errs = append(errs, fmt.Errorf("ai.provider: %w", err))
	}
	switch c.State.Backend {
	case StateMemory, StateBadger:
	default:
		errs = append(errs, fmt.Errorf("state.backend must be %q or %q, got %q", StateMemory, StateBadger, c.State.Backend))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// NeedsAI reports whether the configured mode calls the model
func (c *BotConfig) NeedsAI() bool {
	return c.Mode == ModeReply && c.UseAI
}

// LLMConfig builds the provider settings, picking the key that matches the
// provider.
func (c *BotConfig) LLMConfig(s Secrets) llm.Config {
	t, _ := llm.ParseProviderType(c.AI.Provider)
	key := s.GoogleAPIKey
	if t == llm.ProviderOpenAI {
		key = s.OpenAIAPIKey
	}
	return llm.Config{
		Type:    t,
		APIKey:  key,
		BaseURL: c.AI.BaseURL,
		Model:   c.AI.Model,
		Timeout: c.AI.Timeout.Std(),
	}
}

// StateDir returns the badger directory
func (c *BotConfig) StateDir() string {
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return DefaultStateDir()
}
