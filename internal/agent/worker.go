package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// DefaultMemoryTurns is the number of memory turns a worker keeps.
const DefaultMemoryTurns = 10

// ScriptSource provides the current script snapshot.
type ScriptSource interface {
	Snapshot() bus.Script
}

// Output is the result of one worker turn.
type Output struct {
	Text    string
	Actions []models.Action
	// Err is set when the backend failed; Text then describes the failure
	// and Actions is empty.
	Err error
}

// Worker wraps one role profile and its short-term memory.
type Worker struct {
	profile  models.Profile
	roster   []models.Profile
	backend  Backend
	script   ScriptSource
	maxTurns int

	mu     sync.Mutex
	memory []Turn
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithMemoryTurns sets the memory capacity. Values below 1 are ignored.
func WithMemoryTurns(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxTurns = n
		}
	}
}

// NewWorker creates a worker for profile. roster lists the other roles.
func NewWorker(profile models.Profile, roster []models.Profile, backend Backend, script ScriptSource, opts ...WorkerOption) *Worker {
	w := &Worker{
		profile:  profile,
		roster:   roster,
		backend:  backend,
		script:   script,
		maxTurns: DefaultMemoryTurns,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Role returns the worker's role.
func (w *Worker) Role() models.Role {
	return w.profile.ID
}

// Profile returns the worker's profile.
func (w *Worker) Profile() models.Profile {
	return w.profile
}

// Act runs one turn. It never returns an error: backend failures are
// reported through Output.Err with a descriptive Text and no actions.
func (w *Worker) Act(ctx context.Context, instruction string, recent []models.Event) Output {
	w.mu.Lock()
	memory := make([]Turn, len(w.memory))
	copy(memory, w.memory)
	w.mu.Unlock()

	var script bus.Script
	if w.script != nil {
		script = w.script.Snapshot()
	}

	req := Request{
		Role:        w.profile.ID,
		System:      w.profile.Instructions,
		Roster:      w.roster,
		Script:      script,
		Recent:      recent,
		Memory:      memory,
		Instruction: instruction,
		Tools:       w.profile.Capabilities,
	}

	reply, err := w.backend.Infer(ctx, req)
	if err != nil {
		w.remember(Turn{Speaker: SpeakerInstruction, Text: instruction})
		return Output{
			Text: fmt.Sprintf("%s could not respond: %v", w.profile.Name, err),
			Err:  err,
		}
	}

	w.remember(
		Turn{Speaker: SpeakerInstruction, Text: instruction},
		Turn{Speaker: SpeakerWorker, Text: memoryText(reply)},
	)
	return Output{Text: reply.Text, Actions: reply.Actions}
}

// memoryText is what the worker remembers of its own reply. Replies made
// only of actions are summarized so the memory keeps alternating.
func memoryText(r Reply) string {
	if text := strings.TrimSpace(r.Text); text != "" {
		return text
	}
	if len(r.Actions) == 0 {
		return "(no reply)"
	}
	names := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		names[i] = string(a.Name)
	}
	return "(requested: " + strings.Join(names, ", ") + ")"
}

func (w *Worker) remember(turns ...Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.memory = append(w.memory, turns...)
	if over := len(w.memory) - w.maxTurns; over > 0 {
		w.memory = append([]Turn(nil), w.memory[over:]...)
	}
}

// Memory returns a copy of the worker's memory, oldest first.
func (w *Worker) Memory() []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Turn, len(w.memory))
	copy(out, w.memory)
	return out
}

// Forget clears the worker's memory.
func (w *Worker) Forget() {
	w.mu.Lock()
	w.memory = nil
	w.mu.Unlock()
}
