package gates

import (
	"fmt"
	"strings"
)

const (
	// MinVoiceoverWords is the minimum narration length after cleaning.
	MinVoiceoverWords = 5
	// MaxVoiceoverWords is the maximum narration length after cleaning.
	MaxVoiceoverWords = 10000
)

// MarkupMatch is one occurrence of forbidden markup.
type MarkupMatch struct {
	Rule string `json:"rule"`
	Text string `json:"text"`
}

// VoiceoverResult is the outcome of the voiceover gate. Cleaned is always
// populated so the caller can show what would be narrated, but Passed is
// false whenever any markup was found: the text has to be resubmitted
// clean rather than auto-fixed.
type VoiceoverResult struct {
	Passed    bool          `json:"passed"`
	Cleaned   string        `json:"cleaned"`
	Found     []MarkupMatch `json:"found,omitempty"`
	Issues    []string      `json:"issues,omitempty"`
	WordCount int           `json:"word_count"`
}

// CleanVoiceover strips MarkupRules from text and checks the residual length.
func CleanVoiceover(text string) VoiceoverResult {
	return CleanVoiceoverWith(text, MarkupRules)
}

// CleanVoiceoverWith is CleanVoiceover with a custom rule table.
func CleanVoiceoverWith(text string, rules []Rule) VoiceoverResult {
	var res VoiceoverResult

	cleaned := text
	for _, r := range rules {
		matches := r.Pattern.FindAllString(cleaned, -1)
		if len(matches) == 0 {
			continue
		}
		for _, m := range matches {
			res.Found = append(res.Found, MarkupMatch{Rule: r.Name, Text: strings.TrimSpace(m)})
			res.Issues = append(res.Issues, fmt.Sprintf("%s found: %q", r.Issue, strings.TrimSpace(m)))
		}
		cleaned = r.Pattern.ReplaceAllString(cleaned, " ")
	}

	res.Cleaned = normalizeSpace(cleaned)
	res.WordCount = WordCount(res.Cleaned)

	if res.WordCount < MinVoiceoverWords {
		res.Issues = append(res.Issues, fmt.Sprintf("voiceover text is too short after cleaning: %d words, at least %d required", res.WordCount, MinVoiceoverWords))
	}
	if res.WordCount > MaxVoiceoverWords {
		res.Issues = append(res.Issues, fmt.Sprintf("voiceover text is too long after cleaning: %d words, at most %d allowed", res.WordCount, MaxVoiceoverWords))
	}

	res.Passed = len(res.Issues) == 0
	return res
}

// normalizeSpace collapses whitespace runs into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
