package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"goa.design/clue/log"

	"github.com/ShayCichocki/scriptroom/internal/agent"
	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/gates"
	"github.com/ShayCichocki/scriptroom/internal/research"
	"github.com/ShayCichocki/scriptroom/internal/roles"
	"github.com/ShayCichocki/scriptroom/internal/telemetry"
	"github.com/ShayCichocki/scriptroom/internal/voice"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Orchestrator is the control loop of one production session. It owns the
// session's bus, script and workers.
type Orchestrator struct {
	id       string
	bus      *bus.Bus
	roles    *roles.Set
	workers  map[models.Role]*agent.Worker
	searcher research.Searcher
	synth    voice.Synthesizer
	voiceID  string
	policy   gates.EnvelopePolicy
	gate     *gates.ScriptGate
	budget   *StepBudget
	metrics  *telemetry.Metrics
	pace     time.Duration
	recent   int

	// runMu serializes Start, Respond and Reset.
	runMu sync.Mutex

	mu     sync.RWMutex
	st     session
	cancel context.CancelFunc
}

// New creates an Orchestrator whose workers reason through backend.
func New(backend agent.Backend, opts ...Option) (*Orchestrator, error) {
	if backend == nil {
		return nil, errors.New("reasoning backend is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	set := o.roles
	if set == nil {
		var err error
		if set, err = roles.Default(); err != nil {
			return nil, fmt.Errorf("load roles: %w", err)
		}
	}
	b := o.bus
	if b == nil {
		b = bus.New()
	}
	metrics := o.metrics
	if metrics == nil {
		metrics = telemetry.Noop()
	}

	orc := &Orchestrator{
		id:       o.sessionID,
		bus:      b,
		roles:    set,
		workers:  make(map[models.Role]*agent.Worker, len(models.Roles)),
		searcher: o.searcher,
		synth:    o.synthesizer,
		voiceID:  o.voiceID,
		policy:   o.policy,
		gate:     gates.NewScriptGate(o.policy),
		budget:   NewStepBudget(o.stepBudget),
		metrics:  metrics,
		pace:     o.paceDelay,
		recent:   o.recentEvents,
		st:       newSession(),
	}

	var wopts []agent.WorkerOption
	if o.memoryTurns > 0 {
		wopts = append(wopts, agent.WithMemoryTurns(o.memoryTurns))
	}
	for _, p := range set.All() {
		orc.workers[p.ID] = agent.NewWorker(p, set.Roster(p.ID), backend, b, wopts...)
	}
	return orc, nil
}

// ID returns the session identifier, if one was configured.
func (o *Orchestrator) ID() string {
	return o.id
}

// Bus returns the session's event bus for subscribing observers.
func (o *Orchestrator) Bus() *bus.Bus {
	return o.bus
}

// Worker returns the worker of a role.
func (o *Orchestrator) Worker(r models.Role) (*agent.Worker, bool) {
	w, ok := o.workers[r]
	return w, ok
}

// Start begins a session on topic. brief carries any extra context from
// the user. It runs the loop until it halts and returns the resulting state.
func (o *Orchestrator) Start(ctx context.Context, topic, brief string) (State, error) {
	topic = strings.TrimSpace(topic)
	brief = strings.TrimSpace(brief)
	if topic == "" {
		return o.State(), fmt.Errorf("topic: %w", ErrEmptyInput)
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	if o.st.topic != "" {
		o.mu.Unlock()
		return o.State(), ErrSessionActive
	}
	o.st.topic = topic
	o.st.running = true
	o.mu.Unlock()

	body := "Topic: " + topic
	if brief != "" {
		body += "\n\n" + brief
	}
	o.bus.Append(models.Event{
		From: models.RoleUser,
		To:   models.RoleProducer,
		Kind: models.EventTask,
		Body: body,
	})
	o.inferDuration(brief)
	o.setPhase(models.PhaseClarifying)

	log.Info(ctx, log.KV{K: "msg", V: "session started"}, log.KV{K: "session", V: o.id}, log.KV{K: "topic", V: topic})

	o.run(ctx, &frame{
		role:        models.RoleProducer,
		instruction: "A new production request has arrived.\n\n" + body,
	})
	return o.State(), nil
}

// Respond delivers a message from the user, resuming a suspended loop.
func (o *Orchestrator) Respond(ctx context.Context, message string) (State, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return o.State(), fmt.Errorf("reply: %w", ErrEmptyInput)
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	switch {
	case o.st.topic == "":
		o.mu.Unlock()
		return o.State(), ErrNotStarted
	case !o.st.running:
		o.mu.Unlock()
		return o.State(), ErrNotRunning
	}
	question := o.st.question
	o.st.awaitingHuman = false
	o.st.question = nil
	o.mu.Unlock()

	kind := models.EventInfo
	trigger := "The user says: " + message
	if question != nil {
		kind = models.EventResult
		trigger = fmt.Sprintf("You asked the user: %s\nThey answered: %s", question.Text, message)
	}
	o.bus.Append(models.Event{
		From: models.RoleUser,
		To:   models.RoleProducer,
		Kind: kind,
		Body: message,
	})
	o.inferDuration(message)

	o.run(ctx, &frame{role: models.RoleProducer, instruction: trigger})
	return o.State(), nil
}

// State returns a snapshot of the session. It never waits for a running loop.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	st := o.st
	o.mu.RUnlock()

	script := o.bus.Snapshot()
	used, limit := o.budget.Usage()

	s := State{
		Topic:         st.topic,
		Running:       st.running,
		Phase:         st.phase,
		AwaitingHuman: st.awaitingHuman,
		Steps:         used,
		StepBudget:    limit,
		WordCount:     script.WordCount(),
		Sections:      len(script),
		LastStop:      st.lastStop,
	}
	if st.question != nil {
		q := *st.question
		q.Options = append([]string(nil), q.Options...)
		s.Question = &q
	}
	if st.targetMinutes != nil {
		m := *st.targetMinutes
		env := o.policy.For(m)
		s.TargetMinutes = &m
		s.Envelope = &env
	}
	if st.final != nil {
		f := *st.final
		s.Final = &f
	}
	if st.audio != nil {
		a := *st.audio
		a.Marks = append([]models.AudioMark(nil), a.Marks...)
		s.Audio = &a
	}
	return s
}

// Reset clears the log, the script, the session state and every worker's
// memory. Observers stay subscribed to the bus. A running loop is canceled
// first.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	o.st = newSession()
	o.mu.Unlock()

	o.budget.Reset()
	for _, w := range o.workers {
		w.Forget()
	}
	o.bus.Clear()
	o.bus.PublishPhase(models.PhaseIdle)
}

// Stop halts the session. A loop in progress stops before its next worker
// turn and any in-flight backend call is canceled. Stop is safe to call
// from another goroutine. Stopping a session that is not running only
// cancels in-flight work; its outcome is kept.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	wasRunning := o.st.running
	if wasRunning {
		o.st.running = false
		o.st.stopped = true
		o.st.awaitingHuman = false
		o.st.lastStop = StopReasonStopped
	}
	cancel := o.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wasRunning {
		o.bus.Append(models.Event{
			From: models.RoleSystem,
			To:   models.RoleAll,
			Kind: models.EventInfo,
			Body: "Session stopped by the operator.",
		})
	}
}

// frame is one unit of work on the loop's stack: either a worker turn to
// run or the remaining actions of a finished turn to dispatch.
type frame struct {
	role        models.Role
	instruction string
	// paced frames wait for the pace delay before running.
	paced bool

	actions []models.Action
	next    int
	// changed records a state change since the last delegation.
	changed bool
}

func (f *frame) dispatching() bool {
	return f.actions != nil
}

// followUp is the coordinator turn queued after a delegated worker.
func followUp(target models.Role) *frame {
	return &frame{
		role:        models.RoleProducer,
		instruction: fmt.Sprintf("@%s has finished their turn. Review the conversation and decide the next step.", target),
		paced:       true,
	}
}

func (o *Orchestrator) run(ctx context.Context, first *frame) {
	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
	}()

	reason := o.loop(ctx, []*frame{first})

	o.mu.Lock()
	if !o.st.stopped {
		o.st.lastStop = reason
	}
	o.mu.Unlock()

	used, limit := o.budget.Usage()
	log.Info(ctx,
		log.KV{K: "msg", V: "loop halted"},
		log.KV{K: "session", V: o.id},
		log.KV{K: "reason", V: string(reason)},
		log.KV{K: "steps", V: used},
		log.KV{K: "budget", V: limit},
	)
}

// loop runs frames until the stack empties or the session halts. A
// delegation pushes the remaining actions of the current turn, then the
// coordinator follow-up, then the target turn, so the target runs first
// and the siblings resume after the coordinator has reacted.
func (o *Orchestrator) loop(ctx context.Context, stack []*frame) StopReason {
	for len(stack) > 0 {
		if reason, halted := o.halted(ctx); halted {
			return reason
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.dispatching() {
			if f.paced && !o.pause(ctx) {
				continue
			}
			if !o.budget.Take() {
				used, _ := o.budget.Usage()
				log.Warn(ctx, log.KV{K: "msg", V: "step budget exhausted"}, log.KV{K: "session", V: o.id}, log.KV{K: "steps", V: used})
				return StopReasonBudgetExhausted
			}
			if o.budget.Status() == BudgetWarning {
				log.Debugf(ctx, "session %s: step budget nearly exhausted", o.id)
			}
			out := o.invoke(ctx, f)
			if len(out.Actions) > 0 {
				stack = append(stack, &frame{role: f.role, actions: out.Actions})
			}
			continue
		}

		delegated := false
		for f.next < len(f.actions) {
			act := f.actions[f.next]
			f.next++

			res := o.apply(ctx, f.role, act)
			if res.halt != StopReasonNone {
				return res.halt
			}
			if res.target == "" {
				f.changed = f.changed || res.changed
				continue
			}

			f.changed = false
			stack = append(stack, f)
			if res.target != models.RoleProducer {
				stack = append(stack, followUp(res.target))
			}
			stack = append(stack, &frame{role: res.target, instruction: res.instruction})
			delegated = true
			break
		}
		if !delegated && f.role == models.RoleProducer && f.changed {
			stack = append(stack, &frame{
				role:        models.RoleProducer,
				instruction: "Your last actions have been applied. Review the results and decide the next step.",
			})
		}
	}
	return StopReasonQuiescent
}

func (o *Orchestrator) halted(ctx context.Context) (StopReason, bool) {
	o.mu.RLock()
	st := o.st
	o.mu.RUnlock()

	switch {
	case st.stopped:
		return StopReasonStopped, true
	case !st.running:
		return StopReasonComplete, true
	case st.awaitingHuman:
		return StopReasonAwaitingHuman, true
	case ctx.Err() != nil:
		return StopReasonCanceled, true
	}
	return StopReasonNone, false
}

// pause waits for the pace delay. It returns false if ctx ends first.
func (o *Orchestrator) pause(ctx context.Context) bool {
	if o.pace <= 0 {
		return true
	}
	t := time.NewTimer(o.pace)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// invoke runs one worker turn and records its reply.
func (o *Orchestrator) invoke(ctx context.Context, f *frame) agent.Output {
	w := o.workers[f.role]

	instruction := f.instruction
	if f.role == models.RoleProducer {
		instruction = o.briefing(instruction)
	}

	o.metrics.Step(ctx, string(f.role))
	o.bus.SetThinking(f.role, true, snippet(f.instruction))
	out := w.Act(ctx, instruction, o.bus.Tail(o.recent))
	o.bus.SetThinking(f.role, false, "")

	if out.Err != nil {
		o.metrics.BackendFailed(ctx, "reasoning")
		log.Error(ctx, out.Err, log.KV{K: "msg", V: "worker turn failed"}, log.KV{K: "session", V: o.id}, log.KV{K: "role", V: string(f.role)})
		o.bus.Append(models.Event{
			From: models.RoleSystem,
			To:   models.RoleAll,
			Kind: models.EventFeedback,
			Body: out.Text,
		})
		return out
	}

	if text := strings.TrimSpace(out.Text); text != "" {
		to, kind := models.RoleProducer, models.EventResult
		if f.role == models.RoleProducer {
			to, kind = models.RoleAll, models.EventInfo
		}
		o.bus.Append(models.Event{From: f.role, To: to, Kind: kind, Body: text})
	}
	return out
}

func (o *Orchestrator) setPhase(p models.Phase) {
	o.mu.Lock()
	if o.st.phase == p {
		o.mu.Unlock()
		return
	}
	o.st.phase = p
	o.mu.Unlock()

	o.bus.PublishPhase(p)
}

// inferDuration records the first target duration found in user text.
// A known duration is never replaced.
func (o *Orchestrator) inferDuration(text string) {
	minutes, ok := gates.ParseDuration(text)
	if !ok {
		return
	}

	o.mu.Lock()
	if o.st.targetMinutes != nil {
		o.mu.Unlock()
		return
	}
	o.st.targetMinutes = &minutes
	o.mu.Unlock()

	env := o.policy.For(minutes)
	o.bus.Append(models.Event{
		From: models.RoleSystem,
		To:   models.RoleAll,
		Kind: models.EventInfo,
		Body: fmt.Sprintf("Target duration set to %s minutes: the script must be %d to %d words.",
			formatMinutes(minutes), env.Min, env.Max),
	})
}

// envelope returns the active envelope, or nil while the duration is unknown.
func (o *Orchestrator) envelope() *gates.Envelope {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.st.targetMinutes == nil {
		return nil
	}
	env := o.policy.For(*o.st.targetMinutes)
	return &env
}

// complete ends the session after the voiceover step.
func (o *Orchestrator) complete() {
	o.mu.Lock()
	o.st.running = false
	o.mu.Unlock()
	o.setPhase(models.PhaseCompleted)
}

const maxSnippetRunes = 120

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxSnippetRunes {
		return string(r[:maxSnippetRunes]) + "..."
	}
	return s
}
