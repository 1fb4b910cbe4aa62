package orchestrator

import (
	"time"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/gates"
	"github.com/ShayCichocki/scriptroom/internal/research"
	"github.com/ShayCichocki/scriptroom/internal/roles"
	"github.com/ShayCichocki/scriptroom/internal/telemetry"
	"github.com/ShayCichocki/scriptroom/internal/voice"
)

const (
	// DefaultPaceDelay separates a delegated turn from the coordinator follow-up.
	DefaultPaceDelay = 300 * time.Millisecond
	// DefaultRecentEvents is how many log events each worker sees.
	DefaultRecentEvents = 12
)

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	sessionID    string
	bus          *bus.Bus
	roles        *roles.Set
	searcher     research.Searcher
	synthesizer  voice.Synthesizer
	voiceID      string
	stepBudget   int
	memoryTurns  int
	recentEvents int
	paceDelay    time.Duration
	policy       gates.EnvelopePolicy
	metrics      *telemetry.Metrics
}

func defaultOptions() orchestratorOptions {
	return orchestratorOptions{
		stepBudget:   DefaultStepBudget,
		recentEvents: DefaultRecentEvents,
		paceDelay:    DefaultPaceDelay,
		policy:       gates.DefaultEnvelopePolicy(),
	}
}

// WithSessionID labels log lines with the session identifier.
func WithSessionID(id string) Option {
	return func(o *orchestratorOptions) { o.sessionID = id }
}

// WithBus uses an existing bus, typically one observers are already
// subscribed to.
func WithBus(b *bus.Bus) Option {
	return func(o *orchestratorOptions) { o.bus = b }
}

// WithRoles sets the role profiles. Defaults to roles.Default().
func WithRoles(s *roles.Set) Option {
	return func(o *orchestratorOptions) { o.roles = s }
}

// WithSearcher sets the web research backend.
func WithSearcher(s research.Searcher) Option {
	return func(o *orchestratorOptions) { o.searcher = s }
}

// WithSynthesizer sets the speech synthesis backend and the voice to use.
func WithSynthesizer(s voice.Synthesizer, voiceID string) Option {
	return func(o *orchestratorOptions) {
		o.synthesizer = s
		o.voiceID = voiceID
	}
}

// WithStepBudget caps the reasoning calls of a session.
func WithStepBudget(n int) Option {
	return func(o *orchestratorOptions) { o.stepBudget = n }
}

// WithMemoryTurns sets how many turns each worker remembers.
func WithMemoryTurns(n int) Option {
	return func(o *orchestratorOptions) { o.memoryTurns = n }
}

// WithRecentEvents sets how many log events each worker sees.
func WithRecentEvents(n int) Option {
	return func(o *orchestratorOptions) {
		if n > 0 {
			o.recentEvents = n
		}
	}
}

// WithPaceDelay sets the delay before a coordinator follow-up. Zero disables it.
func WithPaceDelay(d time.Duration) Option {
	return func(o *orchestratorOptions) {
		if d >= 0 {
			o.paceDelay = d
		}
	}
}

// WithEnvelopePolicy sets the word-count envelope policy.
func WithEnvelopePolicy(p gates.EnvelopePolicy) Option {
	return func(o *orchestratorOptions) { o.policy = p }
}

// WithMetrics sets the engine counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *orchestratorOptions) { o.metrics = m }
}
