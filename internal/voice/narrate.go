package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// ErrNoText is returned when there is nothing to narrate.
var ErrNoText = errors.New("no narration text")

// Narrate synthesizes text chunk by chunk, in order. Durations are summed
// and word marks are shifted by the audio that precedes them; the first
// chunk's URL and content type describe the whole rendering. Audio
// binaries are not merged.
func Narrate(ctx context.Context, synth Synthesizer, text string, v Voice) (models.AudioResult, error) {
	chunks := SplitChunks(text, MaxChunkChars)
	if len(chunks) == 0 {
		return models.AudioResult{}, ErrNoText
	}

	var result models.AudioResult
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return models.AudioResult{}, err
		}
		clip, err := synth.Synthesize(ctx, chunk, v)
		if err != nil {
			return models.AudioResult{}, fmt.Errorf("synthesize chunk %d of %d: %w", i+1, len(chunks), err)
		}
		if i == 0 {
			result.URL = clip.URL
			result.ContentType = clip.ContentType
		}
		offset := result.DurationSeconds
		for _, m := range clip.Marks {
			result.Marks = append(result.Marks, models.AudioMark{
				Text:  m.Text,
				Start: m.Start + offset,
				End:   m.End + offset,
			})
		}
		result.DurationSeconds += clip.DurationSeconds
		result.Chunks++
	}
	return result, nil
}
