package gates

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestEnvelopeFor(t *testing.T) {
	tests := []struct {
		name    string
		minutes float64
		want    Envelope
	}{
		{name: "one minute", minutes: 1, want: Envelope{Min: 139, Max: 180}},
		{name: "two minutes", minutes: 2, want: Envelope{Min: 279, Max: 360}},
		{name: "ninety seconds", minutes: 1.5, want: Envelope{Min: 209, Max: 270}},
		{name: "thirty seconds", minutes: 0.5, want: Envelope{Min: 69, Max: 90}},
		{name: "ten minutes", minutes: 10, want: Envelope{Min: 1395, Max: 1800}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EnvelopeFor(tc.minutes))
		})
	}
}

func TestEnvelopePolicy_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("envelope follows floor/ceil formula and is non-empty", prop.ForAll(
		func(minutes float64) bool {
			env := EnvelopeFor(minutes)
			nominal := 150 * minutes
			wantMin := int(math.Floor(0.93*nominal + epsilon))
			wantMax := int(math.Ceil(1.20*nominal - epsilon))
			return env.Min == wantMin && env.Max == wantMax && env.Min < env.Max
		},
		gen.Float64Range(0.2, 120),
	))

	properties.TestingRun(t)
}

func TestEnvelopePolicy_CustomTolerance(t *testing.T) {
	policy := EnvelopePolicy{WordsPerMinute: 100, Lower: 0.9, Upper: 1.1}
	assert.Equal(t, Envelope{Min: 90, Max: 110}, policy.For(1))

	// Zero fields fall back to defaults.
	assert.Equal(t, EnvelopeFor(1), EnvelopePolicy{}.For(1))
}

func TestEstimateMinutes(t *testing.T) {
	policy := DefaultEnvelopePolicy()
	assert.Equal(t, 1.0, policy.EstimateMinutes(150))
	assert.Equal(t, 0.5, policy.EstimateMinutes(75))
	assert.Equal(t, 1.3, policy.EstimateMinutes(200))
	assert.Equal(t, 0.0, policy.EstimateMinutes(0))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{name: "minutes", text: "make it a 1 minute video for teenagers, fun tone", want: 1, wantOK: true},
		{name: "hyphenated minutes", text: "a 3-minute explainer", want: 3, wantOK: true},
		{name: "seconds", text: "a 90 second short", want: 1.5, wantOK: true},
		{name: "abbreviated seconds", text: "45 secs please", want: 0.75, wantOK: true},
		{name: "abbreviated minutes", text: "keep it to 2 min", want: 2, wantOK: true},
		{name: "decimal minutes", text: "around 2.5 mins", want: 2.5, wantOK: true},
		{name: "earliest wins", text: "30 seconds, or maybe 2 minutes", want: 0.5, wantOK: true},
		{name: "earliest wins minutes first", text: "2 minutes, not 30 seconds", want: 2, wantOK: true},
		{name: "no duration", text: "something fun about bridges", wantOK: false},
		{name: "number without unit", text: "top 5 facts", wantOK: false},
		{name: "unit word prefix is not a unit", text: "3 sections and 2 more", wantOK: false},
		{name: "zero ignored", text: "0 minutes", wantOK: false},
		{name: "zero does not hide a later match", text: "0 seconds of intro then 90 seconds", want: 1.5, wantOK: true},
		{name: "decade is not seconds", text: "Fashion of the 1920s", wantOK: false},
		{name: "century is not seconds", text: "A history of the 1800s railroads", wantOK: false},
		{name: "short decade is not seconds", text: "80s synth pop", wantOK: false},
		{name: "single letter units are not units", text: "a 5m clip, 30s max", wantOK: false},
		{name: "decade before a real duration", text: "the 1960s in 2 minutes", want: 2, wantOK: true},
		{name: "word starting with min is not a unit", text: "3 minimal sets", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDuration(tc.text)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}
