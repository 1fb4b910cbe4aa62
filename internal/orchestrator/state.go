package orchestrator

import (
	"errors"

	"github.com/ShayCichocki/scriptroom/internal/gates"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

var (
	// ErrSessionActive is returned by Start on a session that already has a topic.
	ErrSessionActive = errors.New("session already started")
	// ErrNotStarted is returned by Respond before Start.
	ErrNotStarted = errors.New("session not started")
	// ErrNotRunning is returned by Respond once the session has finished or was stopped.
	ErrNotRunning = errors.New("session is not running")
	// ErrEmptyInput is returned for an empty topic or reply.
	ErrEmptyInput = errors.New("input is empty")
)

// StopReason indicates why the last run of the loop returned.
type StopReason string

const (
	// StopReasonNone indicates the loop has not run yet.
	StopReasonNone StopReason = ""
	// StopReasonAwaitingHuman indicates a question is waiting for the user.
	StopReasonAwaitingHuman StopReason = "awaiting_human"
	// StopReasonQuiescent indicates the coordinator had nothing left to do.
	StopReasonQuiescent StopReason = "quiescent"
	// StopReasonBudgetExhausted indicates the step budget ran out.
	StopReasonBudgetExhausted StopReason = "budget_exhausted"
	// StopReasonComplete indicates the voiceover finished or failed for good.
	StopReasonComplete StopReason = "complete"
	// StopReasonStopped indicates an operator stopped the session.
	StopReasonStopped StopReason = "stopped"
	// StopReasonCanceled indicates the caller's context was canceled.
	StopReasonCanceled StopReason = "canceled"
)

// Question is a pending request for human input.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// State is a read-only snapshot of a session.
type State struct {
	Topic         string              `json:"topic"`
	Running       bool                `json:"running"`
	Phase         models.Phase        `json:"phase"`
	AwaitingHuman bool                `json:"awaiting_human"`
	Question      *Question           `json:"question,omitempty"`
	TargetMinutes *float64            `json:"target_minutes,omitempty"`
	Envelope      *gates.Envelope     `json:"envelope,omitempty"`
	Steps         int                 `json:"steps"`
	StepBudget    int                 `json:"step_budget"`
	Final         *models.FinalScript `json:"final,omitempty"`
	Audio         *models.AudioResult `json:"audio,omitempty"`
	WordCount     int                 `json:"word_count"`
	Sections      int                 `json:"sections"`
	LastStop      StopReason          `json:"last_stop,omitempty"`
}

// Started reports whether the session has a topic.
func (s State) Started() bool {
	return s.Topic != ""
}

// session is the mutable state behind State. Guarded by Orchestrator.mu.
type session struct {
	topic         string
	running       bool
	stopped       bool
	phase         models.Phase
	awaitingHuman bool
	question      *Question
	targetMinutes *float64
	final         *models.FinalScript
	audio         *models.AudioResult
	lastStop      StopReason
}

func newSession() session {
	return session{phase: models.PhaseIdle}
}
