package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

const (
	// DefaultElevenLabsURL is the public ElevenLabs API.
	DefaultElevenLabsURL = "https://api.elevenlabs.io"
	// DefaultElevenLabsModel is the synthesis model used when none is set.
	DefaultElevenLabsModel = "eleven_multilingual_v2"

	maxSynthesisResponseBytes = 64 << 20
)

// ErrNoElevenLabsKey is returned when the ElevenLabs key is missing.
var ErrNoElevenLabsKey = errors.New("no ElevenLabs API key configured")

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API
// and stores each clip as an MP3 file.
type ElevenLabs struct {
	APIKey  string
	BaseURL string
	Model   string
	// OutputDir is where clips are written.
	OutputDir string
	// PublicURL, when set, prefixes clip file names to form their URL.
	// Otherwise clips are addressed with file:// URLs.
	PublicURL      string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// Compile-time verification that ElevenLabs implements Synthesizer.
var _ Synthesizer = (*ElevenLabs)(nil)

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
}

// Synthesize implements Synthesizer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, v Voice) (Clip, error) {
	if e.APIKey == "" {
		return Clip{}, ErrNoElevenLabsKey
	}
	if v.ID == "" {
		return Clip{}, errors.New("voice id is required")
	}

	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: e.model(),
		VoiceSettings: voiceSettings{
			Stability:       v.Settings.Stability,
			SimilarityBoost: v.Settings.Similarity,
			Speed:           v.Settings.Speed,
		},
	})
	if err != nil {
		return Clip{}, fmt.Errorf("encode synthesis request: %w", err)
	}

	endpoint := strings.TrimRight(e.baseURL(), "/") + "/v1/text-to-speech/" + v.ID + "/with-timestamps"

	requestCtx, cancel := e.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Clip{}, fmt.Errorf("create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("xi-api-key", e.APIKey)

	resp, err := e.httpClient().Do(req)
	if err != nil {
		return Clip{}, fmt.Errorf("request synthesis: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxSynthesisResponseBytes))
	if err != nil {
		return Clip{}, fmt.Errorf("read synthesis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := gjson.GetBytes(payload, "detail.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(payload))
		}
		return Clip{}, fmt.Errorf("request synthesis: %s: %s", resp.Status, msg)
	}

	parsed := gjson.ParseBytes(payload)
	audio, err := base64.StdEncoding.DecodeString(parsed.Get("audio_base64").String())
	if err != nil {
		return Clip{}, fmt.Errorf("decode audio: %w", err)
	}
	if len(audio) == 0 {
		return Clip{}, errors.New("synthesis response carried no audio")
	}

	name := uuid.New().String() + ".mp3"
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return Clip{}, fmt.Errorf("create audio dir: %w", err)
	}
	path := filepath.Join(e.OutputDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return Clip{}, fmt.Errorf("write audio: %w", err)
	}

	marks, duration := wordMarks(parsed.Get("alignment"))
	return Clip{
		URL:             e.clipURL(name, path),
		ContentType:     "audio/mpeg",
		DurationSeconds: duration,
		Marks:           marks,
	}, nil
}

// wordMarks groups the character alignment into word timings and returns
// them with the end time of the last character.
func wordMarks(alignment gjson.Result) ([]models.AudioMark, float64) {
	chars := alignment.Get("characters").Array()
	starts := alignment.Get("character_start_times_seconds").Array()
	ends := alignment.Get("character_end_times_seconds").Array()
	n := min(len(chars), len(starts), len(ends))

	var (
		marks    []models.AudioMark
		word     strings.Builder
		start    float64
		end      float64
		duration float64
	)
	for i := 0; i < n; i++ {
		c := chars[i].String()
		duration = max(duration, ends[i].Float())
		if strings.IndexFunc(c, unicode.IsSpace) >= 0 || c == "" {
			if word.Len() > 0 {
				marks = append(marks, models.AudioMark{Text: word.String(), Start: start, End: end})
				word.Reset()
			}
			continue
		}
		if word.Len() == 0 {
			start = starts[i].Float()
		}
		word.WriteString(c)
		end = ends[i].Float()
	}
	if word.Len() > 0 {
		marks = append(marks, models.AudioMark{Text: word.String(), Start: start, End: end})
	}
	return marks, duration
}

func (e *ElevenLabs) clipURL(name, path string) string {
	if e.PublicURL != "" {
		return strings.TrimRight(e.PublicURL, "/") + "/" + name
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file://" + filepath.ToSlash(path)
}

func (e *ElevenLabs) baseURL() string {
	if e.BaseURL != "" {
		return e.BaseURL
	}
	return DefaultElevenLabsURL
}

func (e *ElevenLabs) model() string {
	if e.Model != "" {
		return e.Model
	}
	return DefaultElevenLabsModel
}

func (e *ElevenLabs) httpClient() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

func (e *ElevenLabs) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.RequestTimeout)
}
