package gates

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultWordsPerMinute is the assumed narration speaking rate.
	DefaultWordsPerMinute = 150
	// DefaultLowerTolerance scales the nominal word count into the envelope minimum.
	DefaultLowerTolerance = 0.93
	// DefaultUpperTolerance scales the nominal word count into the envelope maximum.
	DefaultUpperTolerance = 1.20
)

// epsilon absorbs float representation error before floor/ceil so that
// 1.20*150 stays 180 and does not ceil to 181.
const epsilon = 1e-9

// Envelope is the accepted [Min, Max] word-count range for a script.
type Envelope struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether words lies within the envelope, bounds included.
func (e Envelope) Contains(words int) bool {
	return words >= e.Min && words <= e.Max
}

// String returns the envelope as "[min, max]".
func (e Envelope) String() string {
	return fmt.Sprintf("[%d, %d]", e.Min, e.Max)
}

// EnvelopePolicy derives envelopes from target durations. The tolerance is
// asymmetric: under-length output is treated as the worse failure.
type EnvelopePolicy struct {
	WordsPerMinute float64 `mapstructure:"words_per_minute"`
	Lower          float64 `mapstructure:"lower_tolerance"`
	Upper          float64 `mapstructure:"upper_tolerance"`
}

// DefaultEnvelopePolicy returns the 150 wpm, -7%/+20% policy.
func DefaultEnvelopePolicy() EnvelopePolicy {
	return EnvelopePolicy{
		WordsPerMinute: DefaultWordsPerMinute,
		Lower:          DefaultLowerTolerance,
		Upper:          DefaultUpperTolerance,
	}
}

// normalized fills zero fields with defaults.
func (p EnvelopePolicy) normalized() EnvelopePolicy {
	d := DefaultEnvelopePolicy()
	if p.WordsPerMinute <= 0 {
		p.WordsPerMinute = d.WordsPerMinute
	}
	if p.Lower <= 0 {
		p.Lower = d.Lower
	}
	if p.Upper <= 0 {
		p.Upper = d.Upper
	}
	return p
}

// For returns the envelope for a target duration in minutes:
// [floor(Lower*wpm*D), ceil(Upper*wpm*D)].
func (p EnvelopePolicy) For(minutes float64) Envelope {
	p = p.normalized()
	nominal := p.WordsPerMinute * minutes
	return Envelope{
		Min: int(math.Floor(p.Lower*nominal + epsilon)),
		Max: int(math.Ceil(p.Upper*nominal - epsilon)),
	}
}

// EstimateMinutes converts a word count to minutes of narration, rounded
// to one decimal.
func (p EnvelopePolicy) EstimateMinutes(words int) float64 {
	p = p.normalized()
	return math.Round(float64(words)/p.WordsPerMinute*10) / 10
}

// EnvelopeFor derives an envelope with the default policy.
func EnvelopeFor(minutes float64) Envelope {
	return DefaultEnvelopePolicy().For(minutes)
}

var durationPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*-?\s*(seconds?|secs?|minutes?|mins?)\b`)

// ParseDuration extracts a target duration in minutes from free-form text
// such as "a 90 second short" or "make it a 2-minute video". The unit must
// be spelled out ("sec", "min" or longer), so decades like "1920s" never
// match. The earliest positive match wins.
func ParseDuration(text string) (float64, bool) {
	for _, loc := range durationPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] > 0 && isNumberRune(text[loc[2]-1]) {
			continue
		}
		v, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		if err != nil || v <= 0 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(text[loc[4]:loc[5]]), "sec") {
			return v / 60, true
		}
		return v, true
	}
	return 0, false
}

func isNumberRune(b byte) bool {
	return b == '.' || b == ',' || (b >= '0' && b <= '9')
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
