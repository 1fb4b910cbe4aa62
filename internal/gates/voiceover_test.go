package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

func TestCleanVoiceover_VisualTag(t *testing.T) {
	res := CleanVoiceover("[VISUAL: drone shot] Rome moved water across valleys for centuries.")

	require.Len(t, res.Found, 1)
	assert.Equal(t, "visual_tag", res.Found[0].Rule)
	assert.Equal(t, "[VISUAL: drone shot]", res.Found[0].Text)
	assert.Equal(t, "Rome moved water across valleys for centuries.", res.Cleaned)
	assert.False(t, res.Passed)
}

func TestCleanVoiceover_CleanTextIsUnchanged(t *testing.T) {
	text := "Rome moved water across valleys,  using nothing but gravity.\nClever, right?"
	res := CleanVoiceover(text)

	assert.True(t, res.Passed)
	assert.Empty(t, res.Found)
	assert.Equal(t, normalizeSpace(text), res.Cleaned)

	again := CleanVoiceover(res.Cleaned)
	assert.Equal(t, res.Cleaned, again.Cleaned)
}

func TestCleanVoiceover_EachOccurrenceReported(t *testing.T) {
	text := "## HOOK\n[MUSIC: upbeat] Picture this. [PAUSE] [00:15] @writer Water flowed uphill? [SFX: splash] No. [CUT TO: arches] [INTRO]"
	res := CleanVoiceover(text)

	assert.False(t, res.Passed)
	rules := make([]string, 0, len(res.Found))
	for _, f := range res.Found {
		rules = append(rules, f.Rule)
	}
	assert.ElementsMatch(t, []string{
		"effect_tag", "music_tag", "cut_tag", "timestamp_tag", "pause_tag",
		"section_header", "markdown_header", "delegation_mention",
	}, rules)
	assert.Equal(t, "Picture this. Water flowed uphill? No.", res.Cleaned)
}

func TestCleanVoiceover_LengthBounds(t *testing.T) {
	res := CleanVoiceover("Too short here")
	assert.False(t, res.Passed)
	assert.True(t, hasIssue(res.Issues, "too short"))

	res = CleanVoiceover(words(MaxVoiceoverWords + 1))
	assert.False(t, res.Passed)
	assert.True(t, hasIssue(res.Issues, "too long"))

	res = CleanVoiceover(words(MinVoiceoverWords))
	assert.True(t, res.Passed)
}

func TestCheckAudio(t *testing.T) {
	tests := []struct {
		name  string
		audio models.AudioResult
		pass  bool
	}{
		{name: "valid", audio: models.AudioResult{URL: "file:///a.mp3", DurationSeconds: 62}, pass: true},
		{name: "upper bound inclusive", audio: models.AudioResult{URL: "u", DurationSeconds: 3600}, pass: true},
		{name: "missing url", audio: models.AudioResult{DurationSeconds: 62}},
		{name: "one second excluded", audio: models.AudioResult{URL: "u", DurationSeconds: 1}},
		{name: "too long", audio: models.AudioResult{URL: "u", DurationSeconds: 3600.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckAudio(tc.audio)
			assert.Equal(t, tc.pass, res.Passed, "issues: %v", res.Issues)
		})
	}
}
