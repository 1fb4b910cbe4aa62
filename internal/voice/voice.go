// Package voice turns narration text into audio through a speech
// synthesis backend, one sentence-aligned chunk at a time.
package voice

import (
	"context"
	"strings"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Settings are the delivery parameters of a synthesized voice.
type Settings struct {
	Stability  float64 `json:"stability" mapstructure:"stability"`
	Similarity float64 `json:"similarity_boost" mapstructure:"similarity"`
	Speed      float64 `json:"speed" mapstructure:"speed"`
}

// Voice is a voice identity with its delivery settings.
type Voice struct {
	ID       string
	Settings Settings
}

// Clip is the result of synthesizing one chunk.
type Clip struct {
	URL             string
	ContentType     string
	DurationSeconds float64
	// Marks are word timings relative to the start of the clip.
	Marks []models.AudioMark
}

// Synthesizer renders one chunk of text as audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, v Voice) (Clip, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, text string, v Voice) (Clip, error)

// Synthesize calls f.
func (f SynthesizerFunc) Synthesize(ctx context.Context, text string, v Voice) (Clip, error) {
	return f(ctx, text, v)
}

// DefaultStyle is used when no or an unknown style is requested.
const DefaultStyle = "default"

// Styles maps narration styles to voice settings.
var Styles = map[string]Settings{
	DefaultStyle:  {Stability: 0.5, Similarity: 0.75, Speed: 1.0},
	"energetic":   {Stability: 0.3, Similarity: 0.75, Speed: 1.1},
	"calm":        {Stability: 0.75, Similarity: 0.8, Speed: 0.92},
	"documentary": {Stability: 0.65, Similarity: 0.85, Speed: 0.97},
}

// StyleSettings returns the settings for a style name. Unknown names fall
// back to DefaultStyle.
func StyleSettings(style string) Settings {
	if s, ok := Styles[strings.ToLower(strings.TrimSpace(style))]; ok {
		return s
	}
	return Styles[DefaultStyle]
}
