package bus

import "github.com/ShayCichocki/scriptroom/pkg/models"

// Kind is the type of an outward notification.
type Kind string

const (
	// KindMessage carries a newly appended event.
	KindMessage Kind = "message"
	// KindScript carries a full script snapshot after a mutation.
	KindScript Kind = "script"
	// KindThinking reports a worker becoming busy or idle.
	KindThinking Kind = "thinking"
	// KindPhase reports a phase transition.
	KindPhase Kind = "phase"
)

// Thinking describes a worker's busy state.
type Thinking struct {
	Agent   models.Role `json:"agent"`
	Active  bool        `json:"active"`
	Context string      `json:"context,omitempty"`
}

// PhaseChange describes a phase transition.
type PhaseChange struct {
	Name        models.Phase `json:"name"`
	Description string       `json:"description"`
}

// Notification is one entry of the outward stream. Exactly one of the
// pointer fields is set, matching Kind. Seq increases by one per
// notification and is never reused within a bus.
type Notification struct {
	Seq      uint64        `json:"seq"`
	Kind     Kind          `json:"kind"`
	Event    *models.Event `json:"event,omitempty"`
	Script   Script        `json:"script,omitempty"`
	Thinking *Thinking     `json:"thinking,omitempty"`
	Phase    *PhaseChange  `json:"phase,omitempty"`
}

// Observer receives notifications synchronously, in publication order.
// Observers must not call publishing methods of the bus they observe.
type Observer interface {
	Notify(n Notification) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(n Notification) error

// Notify calls f(n).
func (f ObserverFunc) Notify(n Notification) error {
	return f(n)
}
