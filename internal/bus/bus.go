// Package bus is the per-session event log and script store. It is the
// single source of observable truth: every change is published to the
// registered observers synchronously and in order.
package bus

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"goa.design/clue/log"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Bus is an append-only event log plus the script under construction.
//
// Two locks are used: pubMu serializes publication so observers see
// notifications in exactly the order state changed, and mu guards the data
// so observers may read (Tail, Snapshot) while being notified.
type Bus struct {
	pubMu sync.Mutex

	mu        sync.RWMutex
	events    []models.Event
	script    Script
	seq       uint64
	observers map[uint64]Observer
	nextObs   uint64

	logCtx context.Context
	now    func() time.Time
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogContext sets the context used to log observer failures.
func WithLogContext(ctx context.Context) Option {
	return func(b *Bus) { b.logCtx = ctx }
}

// WithClock overrides the timestamp source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		script:    make(Script),
		observers: make(map[uint64]Observer),
		logCtx:    context.Background(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers an observer and returns a function removing it.
func (b *Bus) Subscribe(o Observer) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextObs
	b.nextObs++
	b.observers[id] = o
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.observers, id)
		b.mu.Unlock()
	}
}

// Append stores ev, assigning its ID and timestamp, and publishes it.
func (b *Bus) Append(ev models.Event) models.Event {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	ev.ID = uuid.New().String()
	ev.Timestamp = b.now()
	if ev.Kind == "" {
		ev.Kind = models.EventInfo
	}

	b.mu.Lock()
	b.events = append(b.events, ev)
	n := b.nextNotification(KindMessage)
	b.mu.Unlock()

	stored := ev
	n.Event = &stored
	b.publish(n)
	return ev
}

// Tail returns the n most recent events, oldest first. n <= 0 returns all.
func (b *Bus) Tail(n int) []models.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if n > 0 && len(b.events) > n {
		start = len(b.events) - n
	}
	out := make([]models.Event, len(b.events)-start)
	copy(out, b.events[start:])
	return out
}

// Len returns the number of events in the log.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// Snapshot returns a copy of the current script.
func (b *Bus) Snapshot() Script {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.script.Clone()
}

// MutateScript applies op to a section and publishes the new snapshot.
func (b *Bus) MutateScript(section, content string, op ScriptOp) (Script, error) {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
	if section == "" {
		return nil, fmt.Errorf("script section name is required")
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	b.script.apply(section, content, op)
	snap := b.script.Clone()
	n := b.nextNotification(KindScript)
	b.mu.Unlock()

	n.Script = snap.Clone()
	b.publish(n)
	return snap, nil
}

// SetThinking publishes a worker's busy state.
func (b *Bus) SetThinking(agent models.Role, active bool, snippet string) {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	n := b.nextNotification(KindThinking)
	b.mu.Unlock()

	n.Thinking = &Thinking{Agent: agent, Active: active, Context: snippet}
	b.publish(n)
}

// PublishPhase publishes a phase transition.
func (b *Bus) PublishPhase(phase models.Phase) {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	n := b.nextNotification(KindPhase)
	b.mu.Unlock()

	n.Phase = &PhaseChange{Name: phase, Description: phase.Description()}
	b.publish(n)
}

// Clear empties the log and the script and publishes the empty snapshot.
// Observers stay subscribed.
func (b *Bus) Clear() {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	b.events = nil
	b.script = make(Script)
	n := b.nextNotification(KindScript)
	b.mu.Unlock()

	n.Script = make(Script)
	b.publish(n)
}

// nextNotification allocates a sequence number. Must be called with mu held.
func (b *Bus) nextNotification(kind Kind) Notification {
	b.seq++
	return Notification{Seq: b.seq, Kind: kind}
}

// publish fans n out to every observer. Must be called with pubMu held.
// A failing or panicking observer is logged and skipped.
func (b *Bus) publish(n Notification) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		observers = append(observers, b.observers[id])
	}
	b.mu.RUnlock()

	for _, o := range observers {
		b.notify(o, n)
	}
}

func (b *Bus) notify(o Observer, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(b.logCtx, fmt.Errorf("observer panic: %v", r),
				log.KV{K: "msg", V: "bus observer panicked"},
				log.KV{K: "seq", V: n.Seq},
				log.KV{K: "kind", V: string(n.Kind)})
		}
	}()
	if err := o.Notify(n); err != nil {
		log.Error(b.logCtx, err,
			log.KV{K: "msg", V: "bus observer failed"},
			log.KV{K: "seq", V: n.Seq},
			log.KV{K: "kind", V: string(n.Kind)})
	}
}
