package gates

import (
	"fmt"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

const (
	// MinAudioSeconds is the exclusive lower bound on a rendering's duration.
	MinAudioSeconds = 1.0
	// MaxAudioSeconds is the inclusive upper bound on a rendering's duration.
	MaxAudioSeconds = 3600.0
)

// AudioResult is the outcome of the audio-result gate.
type AudioResult struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// CheckAudio validates a synthesis result: it must carry a URL and its
// duration must lie in (1s, 3600s].
func CheckAudio(a models.AudioResult) AudioResult {
	var res AudioResult
	if a.URL == "" {
		res.Issues = append(res.Issues, "audio result has no URL")
	}
	if a.DurationSeconds <= MinAudioSeconds || a.DurationSeconds > MaxAudioSeconds {
		res.Issues = append(res.Issues, fmt.Sprintf(
			"audio duration %.1fs is outside (%.0fs, %.0fs]", a.DurationSeconds, MinAudioSeconds, MaxAudioSeconds))
	}
	res.Passed = len(res.Issues) == 0
	return res
}
