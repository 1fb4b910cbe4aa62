package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/scriptroom/internal/api"
	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/config"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/internal/research"
	"github.com/ShayCichocki/scriptroom/internal/roles"
	"github.com/ShayCichocki/scriptroom/internal/session"
	"github.com/ShayCichocki/scriptroom/internal/telemetry"
	"github.com/ShayCichocki/scriptroom/internal/voice"
)

// createClient creates the Anthropic client for credential, falling back to
// the configured key when credential is empty.
func createClient(cfg *config.Config, credential string) (*api.Client, error) {
	key := credential
	if key == "" && !cfg.Anthropic.UseBedrock {
		var err error
		key, err = config.GetAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w (set %s or anthropic.api_key)", err, config.ProviderAnthropic.EnvVar())
		}
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        key,
		BaseURL:       cfg.Anthropic.BaseURL,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

// createSearcher returns the web search adapter, or nil when no key is set.
func createSearcher(cfg *config.Config) research.Searcher {
	key, err := config.GetProviderKey(cfg, config.ProviderTavily)
	if err != nil {
		return nil
	}
	return &research.Tavily{
		APIKey:         key,
		BaseURL:        cfg.Search.BaseURL,
		RequestTimeout: cfg.Search.Timeout,
	}
}

// createSynthesizer returns the speech adapter, or nil when no key is set.
func createSynthesizer(cfg *config.Config) voice.Synthesizer {
	key, err := config.GetProviderKey(cfg, config.ProviderElevenLabs)
	if err != nil {
		return nil
	}
	return &voice.ElevenLabs{
		APIKey:         key,
		BaseURL:        cfg.ElevenLabs.BaseURL,
		Model:          cfg.ElevenLabs.Model,
		OutputDir:      cfg.ElevenLabs.OutputDir,
		PublicURL:      cfg.ElevenLabs.PublicURL,
		RequestTimeout: cfg.ElevenLabs.Timeout,
	}
}

// sessionFactory builds orchestrators from the configuration. Sessions
// without their own credential share client.
func sessionFactory(ctx context.Context, cfg *config.Config, client *api.Client, set *roles.Set, metrics *telemetry.Metrics) session.Factory {
	searcher := createSearcher(cfg)
	synth := createSynthesizer(cfg)

	return func(id, credential string) (*orchestrator.Orchestrator, error) {
		c := client
		if credential != "" || c == nil {
			var err error
			if c, err = createClient(cfg, credential); err != nil {
				return nil, err
			}
		}

		opts := []orchestrator.Option{
			orchestrator.WithSessionID(id),
			orchestrator.WithBus(bus.New(bus.WithLogContext(ctx))),
			orchestrator.WithRoles(set),
			orchestrator.WithStepBudget(cfg.Engine.StepBudget),
			orchestrator.WithMemoryTurns(cfg.Engine.MemoryTurns),
			orchestrator.WithRecentEvents(cfg.Engine.RecentEvents),
			orchestrator.WithPaceDelay(cfg.Engine.PaceDelay),
			orchestrator.WithEnvelopePolicy(cfg.Envelope),
			orchestrator.WithMetrics(metrics),
		}
		if searcher != nil {
			opts = append(opts, orchestrator.WithSearcher(searcher))
		}
		if synth != nil {
			opts = append(opts, orchestrator.WithSynthesizer(synth, cfg.ElevenLabs.VoiceID))
		}
		return orchestrator.New(api.NewBackend(c), opts...)
	}
}
