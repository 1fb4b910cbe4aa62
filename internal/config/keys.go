// Package config provides API key management utilities.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured for a provider.
var ErrNoAPIKey = errors.New("no API key configured")

// Provider names an external service that needs a key.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderTavily     Provider = "tavily"
)

// EnvVar returns the environment variable consulted for the provider's key.
func (p Provider) EnvVar() string {
	switch p {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderElevenLabs:
		return "ELEVENLABS_API_KEY"
	case ProviderTavily:
		return "TAVILY_API_KEY"
	default:
		return ""
	}
}

func (p Provider) configured(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	switch p {
	case ProviderAnthropic:
		return cfg.Anthropic.APIKey
	case ProviderElevenLabs:
		return cfg.ElevenLabs.APIKey
	case ProviderTavily:
		return cfg.Search.APIKey
	default:
		return ""
	}
}

// GetAPIKey returns the Anthropic API key from the configuration.
// It checks in order: environment variable, config file.
func GetAPIKey(cfg *Config) (string, error) {
	return GetProviderKey(cfg, ProviderAnthropic)
}

// GetProviderKey returns the key for p from the environment or the config file.
func GetProviderKey(cfg *Config, p Provider) (string, error) {
	if env := p.EnvVar(); env != "" {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	if key := os.ExpandEnv(p.configured(cfg)); key != "" && !strings.HasPrefix(key, "${") {
		return key, nil
	}

	return "", fmt.Errorf("%s: %w", p, ErrNoAPIKey)
}

// ValidateAPIKey performs basic validation on an Anthropic API key.
// It checks format but does not verify the key with Anthropic's API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}

	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}

	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
// Shows the first 7 characters and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource returns where the provider's key was sourced from.
func GetAPIKeySource(cfg *Config, p Provider) KeySource {
	if env := p.EnvVar(); env != "" && os.Getenv(env) != "" {
		return KeySourceEnv
	}

	if key := os.ExpandEnv(p.configured(cfg)); key != "" && !strings.HasPrefix(key, "${") {
		return KeySourceConfig
	}

	return KeySourceNone
}
