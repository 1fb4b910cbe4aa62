package models

import "time"

// EventKind tags the intent of an event.
type EventKind string

const (
	EventInfo     EventKind = "info"
	EventQuestion EventKind = "question"
	EventTask     EventKind = "task"
	EventResult   EventKind = "result"
	EventFeedback EventKind = "feedback"
	EventApproval EventKind = "approval"
)

// Valid returns true if the kind is a known value.
func (k EventKind) Valid() bool {
	switch k {
	case EventInfo, EventQuestion, EventTask, EventResult, EventFeedback, EventApproval:
		return true
	default:
		return false
	}
}

// Event is one immutable entry of a session's conversation log.
type Event struct {
	// ID is assigned by the bus on append.
	ID string `json:"id"`
	// Timestamp is assigned by the bus on append.
	Timestamp time.Time `json:"timestamp"`
	// From is the sending role, "system" or "user".
	From Role `json:"from"`
	// To is the recipient role, "all" or "user".
	To Role `json:"to"`
	// Body is the message text.
	Body string `json:"body"`
	// Kind tags the intent of the message.
	Kind EventKind `json:"kind"`
	// Payload carries optional structured data.
	Payload *Payload `json:"payload,omitempty"`
}

// Payload is structured data attached to an event.
type Payload struct {
	// Options are the choices offered with a question.
	Options []string `json:"options,omitempty"`
	// Audio describes a finished voiceover rendering.
	Audio *AudioResult `json:"audio,omitempty"`
	// Final describes the accepted final script.
	Final *FinalScript `json:"final,omitempty"`
}

// FinalScript is the accepted final artifact of a session.
type FinalScript struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Script           string  `json:"script"`
	DurationEstimate string  `json:"duration_estimate"`
	WordCount        int     `json:"word_count"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
}

// AudioMark is the timing of one spoken word in a rendering.
type AudioMark struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AudioResult describes a synthesized voiceover.
type AudioResult struct {
	URL             string      `json:"url"`
	ContentType     string      `json:"content_type"`
	DurationSeconds float64     `json:"duration_seconds"`
	Chunks          int         `json:"chunks"`
	Marks           []AudioMark `json:"marks,omitempty"`
}
