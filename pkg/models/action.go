package models

import "encoding/json"

// ActionName identifies an action a worker may request.
type ActionName string

const (
	ActionSearch              ActionName = "search"
	ActionDelegate            ActionName = "delegate"
	ActionMutateScript        ActionName = "mutate_script"
	ActionRequestHumanInput   ActionName = "request_human_input"
	ActionFinalize            ActionName = "finalize"
	ActionSynthesizeVoiceover ActionName = "synthesize_voiceover"
)

// Actions lists every action name.
var Actions = []ActionName{
	ActionSearch,
	ActionDelegate,
	ActionMutateScript,
	ActionRequestHumanInput,
	ActionFinalize,
	ActionSynthesizeVoiceover,
}

// Valid returns true if the action name is known.
func (a ActionName) Valid() bool {
	for _, n := range Actions {
		if n == a {
			return true
		}
	}
	return false
}

// Action is one action requested by a worker. Input holds the raw JSON
// arguments as produced by the reasoning backend and is decoded by the
// dispatcher.
type Action struct {
	ID    string          `json:"id,omitempty"`
	Name  ActionName      `json:"name"`
	Input json.RawMessage `json:"input"`
}

// SearchInput is the argument of a search action.
type SearchInput struct {
	Query string `json:"query"`
	Count int    `json:"count,omitempty"`
}

// DelegateInput is the argument of a delegate action.
type DelegateInput struct {
	To      string    `json:"to"`
	Message string    `json:"message"`
	Kind    EventKind `json:"kind,omitempty"`
}

// MutateScriptInput is the argument of a mutate_script action.
type MutateScriptInput struct {
	Section string `json:"section"`
	Content string `json:"content,omitempty"`
	Op      string `json:"op"`
}

// HumanInputInput is the argument of a request_human_input action.
type HumanInputInput struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// FinalizeInput is the argument of a finalize action.
type FinalizeInput struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Script           string `json:"script"`
	DurationEstimate string `json:"duration_estimate"`
}

// VoiceoverInput is the argument of a synthesize_voiceover action.
type VoiceoverInput struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}
