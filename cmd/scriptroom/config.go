package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/scriptroom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Scriptroom configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/scriptroom/config.yaml
Project-specific overrides can be placed in .scriptroom.yaml`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// configKey binds a dot-notation key to a Config field.
type configKey struct {
	name   string
	secret bool
	get    func(c *config.Config) string
	set    func(c *config.Config, v string) error
}

var configKeys = []configKey{
	{name: "anthropic.api_key", secret: true,
		get: func(c *config.Config) string { return c.Anthropic.APIKey },
		set: func(c *config.Config, v string) error { c.Anthropic.APIKey = v; return nil }},
	{name: "anthropic.model",
		get: func(c *config.Config) string { return c.Anthropic.Model },
		set: func(c *config.Config, v string) error { c.Anthropic.Model = v; return nil }},
	{name: "anthropic.base_url",
		get: func(c *config.Config) string { return c.Anthropic.BaseURL },
		set: func(c *config.Config, v string) error { c.Anthropic.BaseURL = v; return nil }},
	{name: "anthropic.max_tokens",
		get: func(c *config.Config) string { return strconv.FormatInt(c.Anthropic.MaxTokens, 10) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			c.Anthropic.MaxTokens = n
			return err
		}},
	{name: "anthropic.use_bedrock",
		get: func(c *config.Config) string { return strconv.FormatBool(c.Anthropic.UseBedrock) },
		set: func(c *config.Config, v string) (err error) { c.Anthropic.UseBedrock, err = strconv.ParseBool(v); return }},
	{name: "anthropic.aws_region",
		get: func(c *config.Config) string { return c.Anthropic.AWSRegion },
		set: func(c *config.Config, v string) error { c.Anthropic.AWSRegion = v; return nil }},
	{name: "anthropic.aws_profile",
		get: func(c *config.Config) string { return c.Anthropic.AWSProfile },
		set: func(c *config.Config, v string) error { c.Anthropic.AWSProfile = v; return nil }},

	{name: "elevenlabs.api_key", secret: true,
		get: func(c *config.Config) string { return c.ElevenLabs.APIKey },
		set: func(c *config.Config, v string) error { c.ElevenLabs.APIKey = v; return nil }},
	{name: "elevenlabs.voice_id",
		get: func(c *config.Config) string { return c.ElevenLabs.VoiceID },
		set: func(c *config.Config, v string) error { c.ElevenLabs.VoiceID = v; return nil }},
	{name: "elevenlabs.model",
		get: func(c *config.Config) string { return c.ElevenLabs.Model },
		set: func(c *config.Config, v string) error { c.ElevenLabs.Model = v; return nil }},
	{name: "elevenlabs.output_dir",
		get: func(c *config.Config) string { return c.ElevenLabs.OutputDir },
		set: func(c *config.Config, v string) error { c.ElevenLabs.OutputDir = v; return nil }},
	{name: "elevenlabs.public_url",
		get: func(c *config.Config) string { return c.ElevenLabs.PublicURL },
		set: func(c *config.Config, v string) error { c.ElevenLabs.PublicURL = v; return nil }},
	{name: "elevenlabs.timeout",
		get: func(c *config.Config) string { return c.ElevenLabs.Timeout.String() },
		set: func(c *config.Config, v string) (err error) { c.ElevenLabs.Timeout, err = time.ParseDuration(v); return }},

	{name: "search.api_key", secret: true,
		get: func(c *config.Config) string { return c.Search.APIKey },
		set: func(c *config.Config, v string) error { c.Search.APIKey = v; return nil }},
	{name: "search.timeout",
		get: func(c *config.Config) string { return c.Search.Timeout.String() },
		set: func(c *config.Config, v string) (err error) { c.Search.Timeout, err = time.ParseDuration(v); return }},

	{name: "engine.step_budget",
		get: func(c *config.Config) string { return strconv.Itoa(c.Engine.StepBudget) },
		set: func(c *config.Config, v string) (err error) { c.Engine.StepBudget, err = strconv.Atoi(v); return }},
	{name: "engine.memory_turns",
		get: func(c *config.Config) string { return strconv.Itoa(c.Engine.MemoryTurns) },
		set: func(c *config.Config, v string) (err error) { c.Engine.MemoryTurns, err = strconv.Atoi(v); return }},
	{name: "engine.recent_events",
		get: func(c *config.Config) string { return strconv.Itoa(c.Engine.RecentEvents) },
		set: func(c *config.Config, v string) (err error) { c.Engine.RecentEvents, err = strconv.Atoi(v); return }},
	{name: "engine.pace_delay",
		get: func(c *config.Config) string { return c.Engine.PaceDelay.String() },
		set: func(c *config.Config, v string) (err error) { c.Engine.PaceDelay, err = time.ParseDuration(v); return }},

	{name: "envelope.words_per_minute",
		get: func(c *config.Config) string { return formatFloat(c.Envelope.WordsPerMinute) },
		set: func(c *config.Config, v string) (err error) {
			c.Envelope.WordsPerMinute, err = strconv.ParseFloat(v, 64)
			return
		}},
	{name: "envelope.lower_tolerance",
		get: func(c *config.Config) string { return formatFloat(c.Envelope.Lower) },
		set: func(c *config.Config, v string) (err error) { c.Envelope.Lower, err = strconv.ParseFloat(v, 64); return }},
	{name: "envelope.upper_tolerance",
		get: func(c *config.Config) string { return formatFloat(c.Envelope.Upper) },
		set: func(c *config.Config, v string) (err error) { c.Envelope.Upper, err = strconv.ParseFloat(v, 64); return }},

	{name: "roles.file",
		get: func(c *config.Config) string { return c.Roles.File },
		set: func(c *config.Config, v string) error { c.Roles.File = v; return nil }},

	{name: "logging.format",
		get: func(c *config.Config) string { return c.Logging.Format },
		set: func(c *config.Config, v string) error { c.Logging.Format = v; return nil }},
	{name: "logging.debug",
		get: func(c *config.Config) string { return strconv.FormatBool(c.Logging.Debug) },
		set: func(c *config.Config, v string) (err error) { c.Logging.Debug, err = strconv.ParseBool(v); return }},
	{name: "logging.file",
		get: func(c *config.Config) string { return c.Logging.File },
		set: func(c *config.Config, v string) error { c.Logging.File = v; return nil }},

	{name: "state.db_path",
		get: func(c *config.Config) string { return c.State.DBPath },
		set: func(c *config.Config, v string) error { c.State.DBPath = v; return nil }},
	{name: "state.signals_dir",
		get: func(c *config.Config) string { return c.State.SignalsDir },
		set: func(c *config.Config, v string) error { c.State.SignalsDir = v; return nil }},
	{name: "state.retain_days",
		get: func(c *config.Config) string { return strconv.Itoa(c.State.RetainDays) },
		set: func(c *config.Config, v string) (err error) { c.State.RetainDays, err = strconv.Atoi(v); return }},
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func lookupConfigKey(key string) (configKey, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, k := range configKeys {
		if k.name == key {
			return k, true
		}
	}
	return configKey{}, false
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	for _, k := range configKeys {
		v, _ := getConfigValue(cfg, k.name)
		fmt.Printf("%s: %s\n", k.name, v)
	}
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	k, _ := lookupConfigKey(key)
	if k.secret {
		value = config.MaskAPIKey(value)
	}
	fmt.Printf("Set %s = %s\n", k.name, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
// Secrets are masked.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	k, ok := lookupConfigKey(key)
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	v := k.get(cfg)
	if k.secret {
		return config.MaskAPIKey(v), nil
	}
	if v == "" {
		return "(not set)", nil
	}
	return v, nil
}

// setConfigValue sets a configuration value by dot-notation key and
// validates the result.
func setConfigValue(cfg *config.Config, key, value string) error {
	k, ok := lookupConfigKey(key)
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err := k.set(cfg, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", k.name, err)
	}
	return cfg.Validate()
}
