// Package config handles configuration loading and management for Scriptroom.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/scriptroom/internal/gates"
	"github.com/ShayCichocki/scriptroom/internal/telemetry"
)

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Config holds all configuration for Scriptroom.
type Config struct {
	Anthropic  AnthropicConfig      `mapstructure:"anthropic"`
	ElevenLabs ElevenLabsConfig     `mapstructure:"elevenlabs"`
	Search     SearchConfig         `mapstructure:"search"`
	Engine     EngineConfig         `mapstructure:"engine"`
	Envelope   gates.EnvelopePolicy `mapstructure:"envelope"`
	Roles      RolesConfig          `mapstructure:"roles"`
	Logging    telemetry.LogConfig  `mapstructure:"logging"`
	State      StateConfig          `mapstructure:"state"`
}

// AnthropicConfig holds reasoning backend settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	MaxTokens  int64  `mapstructure:"max_tokens"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// ElevenLabsConfig holds speech synthesis settings.
type ElevenLabsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	VoiceID string `mapstructure:"voice_id"`
	// OutputDir receives the synthesized audio files.
	OutputDir string `mapstructure:"output_dir"`
	// PublicURL, when set, prefixes audio file names instead of file:// URLs.
	PublicURL string        `mapstructure:"public_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SearchConfig holds web research settings.
type SearchConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EngineConfig tunes the orchestration loop.
type EngineConfig struct {
	// StepBudget caps reasoning calls per session. Only a reset restores it.
	StepBudget int `mapstructure:"step_budget"`
	// MemoryTurns is how many turns each worker remembers.
	MemoryTurns int `mapstructure:"memory_turns"`
	// RecentEvents is how many log events are shown to a worker.
	RecentEvents int `mapstructure:"recent_events"`
	// PaceDelay separates consecutive worker invocations.
	PaceDelay time.Duration `mapstructure:"pace_delay"`
}

// RolesConfig points at an optional role profile override file.
type RolesConfig struct {
	File string `mapstructure:"file"`
}

// StateConfig holds persistence settings.
type StateConfig struct {
	DBPath     string `mapstructure:"db_path"`
	SignalsDir string `mapstructure:"signals_dir"`
	// RetainDays purges finished sessions older than this on startup; 0 keeps all.
	RetainDays int `mapstructure:"retain_days"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, ELEVENLABS_API_KEY, TAVILY_API_KEY)
// 2. Project config (.scriptroom.yaml in current directory or parent)
// 3. User config (~/.config/scriptroom/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)
	return decode(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return decode(v)
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("elevenlabs.api_key", "ELEVENLABS_API_KEY")
	_ = v.BindEnv("search.api_key", "TAVILY_API_KEY")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.ElevenLabs.APIKey = expandEnv(cfg.ElevenLabs.APIKey)
	cfg.Search.APIKey = expandEnv(cfg.Search.APIKey)
	cfg.ElevenLabs.OutputDir = expandEnv(cfg.ElevenLabs.OutputDir)
	cfg.State.DBPath = expandEnv(cfg.State.DBPath)
	cfg.State.SignalsDir = expandEnv(cfg.State.SignalsDir)
	cfg.Roles.File = expandEnv(cfg.Roles.File)
	cfg.Logging.File = expandEnv(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.StepBudget <= 0 {
		return fmt.Errorf("engine.step_budget must be positive, got %d", c.Engine.StepBudget)
	}
	if c.Engine.MemoryTurns <= 0 {
		return fmt.Errorf("engine.memory_turns must be positive, got %d", c.Engine.MemoryTurns)
	}
	if c.Engine.PaceDelay < 0 {
		return fmt.Errorf("engine.pace_delay must not be negative, got %s", c.Engine.PaceDelay)
	}
	if c.Envelope.WordsPerMinute <= 0 {
		return fmt.Errorf("envelope.words_per_minute must be positive, got %g", c.Envelope.WordsPerMinute)
	}
	if c.Envelope.Lower <= 0 || c.Envelope.Lower > 1 || c.Envelope.Upper < 1 {
		return fmt.Errorf("envelope tolerances must satisfy 0 < lower <= 1 <= upper, got %g/%g",
			c.Envelope.Lower, c.Envelope.Upper)
	}
	return nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.base_url", cfg.Anthropic.BaseURL)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("elevenlabs.api_key", cfg.ElevenLabs.APIKey)
	v.Set("elevenlabs.base_url", cfg.ElevenLabs.BaseURL)
	v.Set("elevenlabs.model", cfg.ElevenLabs.Model)
	v.Set("elevenlabs.voice_id", cfg.ElevenLabs.VoiceID)
	v.Set("elevenlabs.output_dir", cfg.ElevenLabs.OutputDir)
	v.Set("elevenlabs.public_url", cfg.ElevenLabs.PublicURL)
	v.Set("elevenlabs.timeout", cfg.ElevenLabs.Timeout.String())
	v.Set("search.api_key", cfg.Search.APIKey)
	v.Set("search.base_url", cfg.Search.BaseURL)
	v.Set("search.timeout", cfg.Search.Timeout.String())
	v.Set("engine.step_budget", cfg.Engine.StepBudget)
	v.Set("engine.memory_turns", cfg.Engine.MemoryTurns)
	v.Set("engine.recent_events", cfg.Engine.RecentEvents)
	v.Set("engine.pace_delay", cfg.Engine.PaceDelay.String())
	v.Set("envelope.words_per_minute", cfg.Envelope.WordsPerMinute)
	v.Set("envelope.lower_tolerance", cfg.Envelope.Lower)
	v.Set("envelope.upper_tolerance", cfg.Envelope.Upper)
	v.Set("roles.file", cfg.Roles.File)
	v.Set("logging.format", cfg.Logging.Format)
	v.Set("logging.debug", cfg.Logging.Debug)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("state.db_path", cfg.State.DBPath)
	v.Set("state.signals_dir", cfg.State.SignalsDir)
	v.Set("state.retain_days", cfg.State.RetainDays)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.max_tokens", d.Anthropic.MaxTokens)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("elevenlabs.api_key", "")
	v.SetDefault("elevenlabs.base_url", "")
	v.SetDefault("elevenlabs.model", "")
	v.SetDefault("elevenlabs.voice_id", d.ElevenLabs.VoiceID)
	v.SetDefault("elevenlabs.output_dir", d.ElevenLabs.OutputDir)
	v.SetDefault("elevenlabs.public_url", "")
	v.SetDefault("elevenlabs.timeout", d.ElevenLabs.Timeout.String())

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.timeout", d.Search.Timeout.String())

	v.SetDefault("engine.step_budget", d.Engine.StepBudget)
	v.SetDefault("engine.memory_turns", d.Engine.MemoryTurns)
	v.SetDefault("engine.recent_events", d.Engine.RecentEvents)
	v.SetDefault("engine.pace_delay", d.Engine.PaceDelay.String())

	v.SetDefault("envelope.words_per_minute", d.Envelope.WordsPerMinute)
	v.SetDefault("envelope.lower_tolerance", d.Envelope.Lower)
	v.SetDefault("envelope.upper_tolerance", d.Envelope.Upper)

	v.SetDefault("roles.file", "")

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.file", "")

	v.SetDefault("state.db_path", "")
	v.SetDefault("state.signals_dir", "")
	v.SetDefault("state.retain_days", 0)
}

// getUserConfigDir returns the XDG config directory for Scriptroom.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "scriptroom")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "scriptroom")
	}
	return filepath.Join(home, ".config", "scriptroom")
}

// findProjectConfig searches for .scriptroom.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".scriptroom.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     DefaultModel,
			MaxTokens: 4096,
		},
		ElevenLabs: ElevenLabsConfig{
			// "Rachel", the stock narration voice.
			VoiceID:   "21m00Tcm4TlvDq8ikWAM",
			OutputDir: "audio",
			Timeout:   2 * time.Minute,
		},
		Search: SearchConfig{
			Timeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			StepBudget:   30,
			MemoryTurns:  10,
			RecentEvents: 12,
			PaceDelay:    300 * time.Millisecond,
		},
		Envelope: gates.DefaultEnvelopePolicy(),
		Logging: telemetry.LogConfig{
			Format: "auto",
		},
	}
}
