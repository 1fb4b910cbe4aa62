package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"goa.design/clue/log"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/gates"
	"github.com/ShayCichocki/scriptroom/internal/research"
	"github.com/ShayCichocki/scriptroom/internal/voice"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// outcome is the effect of one dispatched action on the loop.
type outcome struct {
	// changed is set when the coordinator should look again.
	changed bool
	// halt ends the loop when set.
	halt StopReason
	// target is a worker to run next with instruction.
	target      models.Role
	instruction string
}

// apply dispatches one action requested by from.
func (o *Orchestrator) apply(ctx context.Context, from models.Role, act models.Action) outcome {
	o.metrics.Action(ctx, string(act.Name))

	if !act.Name.Valid() {
		return o.malformed(ctx, from, act, fmt.Errorf("unknown action %q", act.Name))
	}
	if w, ok := o.workers[from]; !ok || !w.Profile().Can(act.Name) {
		return o.reject(from, fmt.Sprintf("@%s is not allowed to use %s.", from, act.Name))
	}

	switch act.Name {
	case models.ActionSearch:
		return o.search(ctx, from, act)
	case models.ActionDelegate:
		return o.delegate(ctx, from, act)
	case models.ActionMutateScript:
		return o.mutateScript(ctx, from, act)
	case models.ActionRequestHumanInput:
		return o.requestHumanInput(ctx, from, act)
	case models.ActionFinalize:
		return o.finalize(ctx, from, act)
	case models.ActionSynthesizeVoiceover:
		return o.synthesizeVoiceover(ctx, from, act)
	}
	return outcome{}
}

func decode(act models.Action, v any) error {
	if len(act.Input) == 0 {
		return errors.New("missing arguments")
	}
	if err := json.Unmarshal(act.Input, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// malformed skips an action the backend produced with unusable arguments.
func (o *Orchestrator) malformed(ctx context.Context, from models.Role, act models.Action, err error) outcome {
	log.Warn(ctx,
		log.KV{K: "msg", V: "skipped malformed action"},
		log.KV{K: "session", V: o.id},
		log.KV{K: "role", V: string(from)},
		log.KV{K: "action", V: string(act.Name)},
		log.KV{K: "err", V: err.Error()},
	)
	return o.reject(from, fmt.Sprintf("Skipped malformed %s action: %v.", act.Name, err))
}

// reject tells from why its request was not carried out.
func (o *Orchestrator) reject(from models.Role, body string) outcome {
	o.bus.Append(models.Event{
		From: models.RoleSystem,
		To:   from,
		Kind: models.EventFeedback,
		Body: body,
	})
	return outcome{changed: true}
}

func (o *Orchestrator) search(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.SearchInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return o.malformed(ctx, from, act, errors.New("query is required"))
	}
	if o.searcher == nil {
		return o.reject(from, "Web search is not configured. Continue with what the team already knows.")
	}

	results, err := o.searcher.Search(ctx, query, research.ClampCount(in.Count))
	if err != nil {
		o.metrics.BackendFailed(ctx, "search")
		log.Error(ctx, err, log.KV{K: "msg", V: "search failed"}, log.KV{K: "session", V: o.id}, log.KV{K: "query", V: query})
		return o.reject(from, fmt.Sprintf("Search for %q failed: %v", query, err))
	}

	o.bus.Append(models.Event{
		From: models.RoleSystem,
		To:   from,
		Kind: models.EventResult,
		Body: research.Format(query, results),
	})
	return outcome{changed: true}
}

func (o *Orchestrator) delegate(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.DelegateInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}
	message := strings.TrimSpace(in.Message)
	if strings.TrimSpace(in.To) == "" || message == "" {
		return o.malformed(ctx, from, act, errors.New("to and message are required"))
	}

	target := models.ParseRole(in.To)
	kind := in.Kind
	if !kind.Valid() {
		kind = models.EventTask
	}

	switch {
	case target.IsHuman():
		return o.ask(from, message, nil)

	case target == models.RoleAll:
		o.bus.Append(models.Event{From: from, To: models.RoleAll, Kind: models.EventInfo, Body: message})
		return outcome{}

	case !target.Valid():
		return o.reject(from, fmt.Sprintf("Unknown role %q. Address one of: %s.", in.To, roster()))
	}

	o.bus.Append(models.Event{From: from, To: target, Kind: kind, Body: message})
	if phase, ok := models.PhaseFor(target); ok {
		o.setPhase(phase)
	}
	return outcome{
		target:      target,
		instruction: fmt.Sprintf("@%s asks you: %s", from, message),
	}
}

func roster() string {
	names := make([]string, 0, len(models.Roles)+1)
	for _, r := range models.Roles {
		names = append(names, "@"+string(r))
	}
	names = append(names, "@"+string(models.RoleUser))
	return strings.Join(names, ", ")
}

func (o *Orchestrator) mutateScript(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.MutateScriptInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}
	section := strings.TrimSpace(in.Section)
	if section == "" {
		return o.malformed(ctx, from, act, errors.New("section is required"))
	}
	op, err := bus.ParseScriptOp(in.Op)
	if err != nil {
		return o.malformed(ctx, from, act, err)
	}
	if op != bus.OpDelete && strings.TrimSpace(in.Content) == "" {
		return o.malformed(ctx, from, act, errors.New("content is required"))
	}

	snap, err := o.bus.MutateScript(section, in.Content, op)
	if err != nil {
		return o.malformed(ctx, from, act, err)
	}

	var sb strings.Builder
	if op == bus.OpDelete {
		fmt.Fprintf(&sb, "Removed section %q.", section)
	} else {
		fmt.Fprintf(&sb, "Wrote section %q: %d words.", section, snap.SectionWords(section))
	}
	total := snap.WordCount()
	fmt.Fprintf(&sb, " Script total: %d words across %d sections.", total, len(snap))
	if env := o.envelope(); env != nil {
		fmt.Fprintf(&sb, " Target envelope %s.", env)
	}

	o.bus.Append(models.Event{
		From: from,
		To:   models.RoleAll,
		Kind: models.EventInfo,
		Body: sb.String(),
	})
	return outcome{changed: true}
}

func (o *Orchestrator) requestHumanInput(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.HumanInputInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return o.malformed(ctx, from, act, errors.New("question is required"))
	}
	return o.ask(from, question, in.Options)
}

// ask suspends the loop on a question to the user.
func (o *Orchestrator) ask(from models.Role, question string, options []string) outcome {
	ev := models.Event{
		From: from,
		To:   models.RoleUser,
		Kind: models.EventQuestion,
		Body: question,
	}
	if len(options) > 0 {
		ev.Payload = &models.Payload{Options: append([]string(nil), options...)}
	}

	o.mu.Lock()
	o.st.awaitingHuman = true
	o.st.question = &Question{Text: question, Options: append([]string(nil), options...)}
	o.mu.Unlock()

	o.bus.Append(ev)
	return outcome{halt: StopReasonAwaitingHuman}
}

func (o *Orchestrator) finalize(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.FinalizeInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}

	o.mu.RLock()
	approved := o.st.final != nil
	topic := o.st.topic
	o.mu.RUnlock()
	if approved {
		return o.reject(from, "A final script is already approved and cannot be replaced.")
	}

	script := strings.TrimSpace(in.Script)
	if script == "" {
		script = o.bus.Snapshot().Text()
	}

	res := o.gate.Check(script, o.envelope())
	if !res.Passed {
		o.metrics.GateRejected(ctx, "script")
		return o.reject(from, listing(
			fmt.Sprintf("Final script rejected (%d words, about %.1f min):", res.WordCount, res.EstimatedMinutes),
			res.Issues))
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = topic
	}
	final := &models.FinalScript{
		Title:            title,
		Description:      strings.TrimSpace(in.Description),
		Script:           script,
		DurationEstimate: strings.TrimSpace(in.DurationEstimate),
		WordCount:        res.WordCount,
		EstimatedMinutes: res.EstimatedMinutes,
	}

	o.mu.Lock()
	o.st.final = final
	o.mu.Unlock()

	stored := *final
	body := fmt.Sprintf("Final script approved: %q (%d words, about %.1f min).", title, res.WordCount, res.EstimatedMinutes)
	if len(res.Warnings) > 0 {
		body = listing(body+" Notes:", res.Warnings)
	}
	o.bus.Append(models.Event{
		From:    models.RoleSystem,
		To:      models.RoleAll,
		Kind:    models.EventApproval,
		Body:    body,
		Payload: &models.Payload{Final: &stored},
	})
	return outcome{changed: true}
}

func (o *Orchestrator) synthesizeVoiceover(ctx context.Context, from models.Role, act models.Action) outcome {
	var in models.VoiceoverInput
	if err := decode(act, &in); err != nil {
		return o.malformed(ctx, from, act, err)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		o.mu.RLock()
		if o.st.final != nil {
			text = o.st.final.Script
		}
		o.mu.RUnlock()
	}
	if text == "" {
		text = o.bus.Snapshot().Text()
	}

	o.setPhase(models.PhaseVoiceover)

	cleaned := gates.CleanVoiceover(text)
	if !cleaned.Passed {
		o.metrics.GateRejected(ctx, "voiceover")
		return o.reject(from, listing("Voiceover text rejected. Send clean narration with no markup:", cleaned.Issues))
	}

	if o.synth == nil {
		return o.fail(ctx, errors.New("speech synthesis is not configured"))
	}

	v := voice.Voice{ID: o.voiceID, Settings: voice.StyleSettings(in.Style)}
	audio, err := voice.Narrate(ctx, o.synth, cleaned.Cleaned, v)
	if err != nil {
		return o.fail(ctx, err)
	}
	if check := gates.CheckAudio(audio); !check.Passed {
		o.metrics.GateRejected(ctx, "audio")
		return o.fail(ctx, errors.New(strings.Join(check.Issues, "; ")))
	}

	o.mu.Lock()
	o.st.audio = &audio
	o.mu.Unlock()

	stored := audio
	o.bus.Append(models.Event{
		From: models.RoleSystem,
		To:   models.RoleAll,
		Kind: models.EventApproval,
		Body: fmt.Sprintf("Voiceover ready: %s (%.1f seconds, %d chunks).",
			audio.URL, audio.DurationSeconds, audio.Chunks),
		Payload: &models.Payload{Audio: &stored},
	})
	o.complete()
	return outcome{halt: StopReasonComplete}
}

// fail ends the session after a voiceover that cannot be produced.
func (o *Orchestrator) fail(ctx context.Context, err error) outcome {
	o.metrics.BackendFailed(ctx, "synthesis")
	log.Error(ctx, err, log.KV{K: "msg", V: "voiceover failed"}, log.KV{K: "session", V: o.id})
	o.bus.Append(models.Event{
		From: models.RoleSystem,
		To:   models.RoleAll,
		Kind: models.EventFeedback,
		Body: fmt.Sprintf("Voiceover failed: %v. The session has ended.", err),
	})
	o.complete()
	return outcome{halt: StopReasonComplete}
}

func listing(head string, items []string) string {
	var sb strings.Builder
	sb.WriteString(head)
	for _, it := range items {
		sb.WriteString("\n- ")
		sb.WriteString(it)
	}
	return sb.String()
}
