package main

import (
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/scriptroom/internal/config"
)

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	tests := []struct {
		key  string
		want string
	}{
		{"engine.step_budget", "30"},
		{"ENGINE.PACE_DELAY", "300ms"},
		{"envelope.words_per_minute", "150"},
		{"envelope.lower_tolerance", "0.93"},
		{"anthropic.api_key", "sk-ant-...mnop"},
		{"elevenlabs.api_key", "(not set)"},
		{"roles.file", "(not set)"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := getConfigValue(cfg, tt.key)
			if err != nil {
				t.Fatalf("getConfigValue(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("getConfigValue(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if _, err := getConfigValue(cfg, "tui.refresh_rate"); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "engine.step_budget", "12"); err != nil {
		t.Fatalf("set step_budget: %v", err)
	}
	if cfg.Engine.StepBudget != 12 {
		t.Errorf("StepBudget = %d, want 12", cfg.Engine.StepBudget)
	}

	if err := setConfigValue(cfg, "elevenlabs.timeout", "90s"); err != nil {
		t.Fatalf("set timeout: %v", err)
	}
	if cfg.ElevenLabs.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.ElevenLabs.Timeout)
	}

	if err := setConfigValue(cfg, "anthropic.use_bedrock", "true"); err != nil || !cfg.Anthropic.UseBedrock {
		t.Errorf("use_bedrock not set: %v", err)
	}
}

func TestSetConfigValue_Invalid(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"engine.step_budget", "many", "invalid value for engine.step_budget"},
		{"engine.step_budget", "0", "step_budget"},
		{"envelope.upper_tolerance", "0.9", "tolerances"},
		{"engine.pace_delay", "soon", "invalid value for engine.pace_delay"},
		{"nope.key", "1", "unknown configuration key"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := setConfigValue(config.Default(), tt.key, tt.value)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("setConfigValue() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigKeysCoverDisplay(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range configKeys {
		if seen[k.name] {
			t.Errorf("duplicate key %s", k.name)
		}
		seen[k.name] = true
		if k.get == nil || k.set == nil {
			t.Errorf("key %s is missing an accessor", k.name)
		}
	}
}
