package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gliderlab/autochat/pkg/llm"
)

// Environment variable names
const (
	EnvDiscordToken = "DISCORD_TOKEN"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// ErrMissingToken is returned when no Discord token is configured
var ErrMissingToken = errors.New(EnvDiscordToken + " is not set")

// Secrets are credentials read from the environment, never from YAML
type Secrets struct {
	DiscordToken string
	GoogleAPIKey string
	OpenAIAPIKey string
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReadSecrets reads credentials from the environment
func ReadSecrets() Secrets {
	return Secrets{
		DiscordToken: strings.TrimSpace(os.Getenv(EnvDiscordToken)),
		GoogleAPIKey: strings.TrimSpace(os.Getenv(EnvGoogleAPIKey)),
		OpenAIAPIKey: strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)),
	}
}

// Require checks that the credentials cfg needs are present
func (s Secrets) Require(cfg *BotConfig) error {
	if s.DiscordToken == "" {
		return ErrMissingToken
	}
	if !cfg.NeedsAI() {
		return nil
	}
	t, err := llm.ParseProviderType(cfg.AI.Provider)
	if err != nil {
		return err
	}
	switch {
	case t == llm.ProviderOpenAI && s.OpenAIAPIKey == "":
		return fmt.Errorf("%s: %w", EnvOpenAIAPIKey, llm.ErrMissingAPIKey)
	case t != llm.ProviderOpenAI && s.GoogleAPIKey == "":
		return fmt.Errorf("%s: %w", EnvGoogleAPIKey, llm.ErrMissingAPIKey)
	}
	return nil
}
