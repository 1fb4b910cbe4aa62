package gates

import (
	"fmt"
	"strings"
)

// MinScriptWords is the absolute minimum length of a final script.
const MinScriptWords = 10

// nearBoundFraction is how close to an envelope bound a script may get
// before a warning is attached.
const nearBoundFraction = 0.03

// ScriptResult is the outcome of the script gate.
type ScriptResult struct {
	Passed           bool     `json:"passed"`
	Issues           []string `json:"issues,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	WordCount        int      `json:"word_count"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
}

// ScriptGate checks final scripts against an envelope and a meta-commentary
// rule table.
type ScriptGate struct {
	Policy EnvelopePolicy
	Rules  []Rule
}

// NewScriptGate returns a gate using the given policy and MetaRules.
func NewScriptGate(policy EnvelopePolicy) *ScriptGate {
	return &ScriptGate{Policy: policy, Rules: MetaRules}
}

// Check validates script against envelope. A nil envelope means the target
// duration is not known yet, which is itself an issue.
func (g *ScriptGate) Check(script string, envelope *Envelope) ScriptResult {
	words := WordCount(script)
	res := ScriptResult{
		WordCount:        words,
		EstimatedMinutes: g.Policy.EstimateMinutes(words),
	}

	if words < MinScriptWords {
		res.Issues = append(res.Issues,
			fmt.Sprintf("script is too short: %d words, at least %d required", words, MinScriptWords))
	}

	if envelope == nil {
		res.Issues = append(res.Issues, "target duration unknown; ask the user how long the video should be first")
	} else {
		switch {
		case words < envelope.Min:
			res.Issues = append(res.Issues, fmt.Sprintf(
				"script is too short: %d words, target envelope is %s (add %d words)",
				words, envelope, envelope.Min-words))
		case words > envelope.Max:
			res.Issues = append(res.Issues, fmt.Sprintf(
				"script is too long: %d words, target envelope is %s (cut %d words)",
				words, envelope, words-envelope.Max))
		default:
			margin := int(float64(envelope.Max) * nearBoundFraction)
			if words-envelope.Min <= margin {
				res.Warnings = append(res.Warnings, fmt.Sprintf("script is close to the minimum length (%d of %d words)", words, envelope.Min))
			} else if envelope.Max-words <= margin {
				res.Warnings = append(res.Warnings, fmt.Sprintf("script is close to the maximum length (%d of %d words)", words, envelope.Max))
			}
		}
	}

	for _, r := range g.Rules {
		if m := r.Pattern.FindString(script); m != "" {
			res.Issues = append(res.Issues, fmt.Sprintf("%s (found %q)", r.Issue, strings.TrimSpace(m)))
		}
	}

	for _, r := range MarkupRules {
		if r.Pattern.MatchString(script) {
			res.Warnings = append(res.Warnings, "script contains stage directions or markup that must be removed before voiceover")
			break
		}
	}

	res.Passed = len(res.Issues) == 0
	return res
}

// CheckScript runs the script gate with the default policy.
func CheckScript(script string, envelope *Envelope) ScriptResult {
	return NewScriptGate(DefaultEnvelopePolicy()).Check(script, envelope)
}
