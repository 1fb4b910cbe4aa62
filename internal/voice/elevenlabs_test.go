package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alignmentFor(text string, step float64) map[string]interface{} {
	var chars []string
	var starts, ends []float64
	for i, r := range text {
		chars = append(chars, string(r))
		starts = append(starts, float64(i)*step)
		ends = append(ends, float64(i+1)*step)
	}
	return map[string]interface{}{
		"characters":                    chars,
		"character_start_times_seconds": starts,
		"character_end_times_seconds":   ends,
	}
}

func TestElevenLabs_Synthesize(t *testing.T) {
	audio := []byte("ID3-fake-mp3")
	var got ttsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-42/with-timestamps", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"audio_base64": base64.StdEncoding.EncodeToString(audio),
			"alignment":    alignmentFor("Hi there.", 0.5),
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	el := &ElevenLabs{APIKey: "secret", BaseURL: srv.URL, OutputDir: dir, PublicURL: "https://cdn.test/audio/"}

	clip, err := el.Synthesize(context.Background(), "Hi there.", Voice{ID: "voice-42", Settings: Styles["energetic"]})
	require.NoError(t, err)

	assert.Equal(t, "Hi there.", got.Text)
	assert.Equal(t, DefaultElevenLabsModel, got.ModelID)
	assert.InDelta(t, 1.1, got.VoiceSettings.Speed, 1e-9)
	assert.InDelta(t, 0.3, got.VoiceSettings.Stability, 1e-9)

	assert.Equal(t, "audio/mpeg", clip.ContentType)
	assert.InDelta(t, 4.5, clip.DurationSeconds, 1e-9)
	require.Len(t, clip.Marks, 2)
	assert.Equal(t, "Hi", clip.Marks[0].Text)
	assert.InDelta(t, 0.0, clip.Marks[0].Start, 1e-9)
	assert.InDelta(t, 1.0, clip.Marks[0].End, 1e-9)
	assert.Equal(t, "there.", clip.Marks[1].Text)
	assert.InDelta(t, 1.5, clip.Marks[1].Start, 1e-9)

	require.True(t, strings.HasPrefix(clip.URL, "https://cdn.test/audio/"))
	name := strings.TrimPrefix(clip.URL, "https://cdn.test/audio/")
	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, audio, stored)
}

func TestElevenLabs_FileURLWithoutPublicURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"audio_base64":"`+base64.StdEncoding.EncodeToString([]byte("x"))+`"}`)
	}))
	defer srv.Close()

	el := &ElevenLabs{APIKey: "k", BaseURL: srv.URL, OutputDir: t.TempDir()}
	clip, err := el.Synthesize(context.Background(), "Hi.", Voice{ID: "v"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(clip.URL, "file://"))
	assert.Zero(t, clip.DurationSeconds)
}

func TestElevenLabs_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`)
	}))
	defer srv.Close()

	el := &ElevenLabs{APIKey: "bad", BaseURL: srv.URL, OutputDir: t.TempDir()}
	_, err := el.Synthesize(context.Background(), "Hi.", Voice{ID: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")

	_, err = (&ElevenLabs{}).Synthesize(context.Background(), "Hi.", Voice{ID: "v"})
	assert.ErrorIs(t, err, ErrNoElevenLabsKey)

	_, err = (&ElevenLabs{APIKey: "k"}).Synthesize(context.Background(), "Hi.", Voice{})
	assert.Error(t, err)
}
