package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/ShayCichocki/scriptroom/internal/agent"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// producerOnly answers producer turns from a queue and everything else
// with an empty reply.
type producerOnly struct {
	mu      sync.Mutex
	replies []agent.Reply
}

func (p *producerOnly) Infer(_ context.Context, req agent.Request) (agent.Reply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if req.Role != models.RoleProducer || len(p.replies) == 0 {
		return agent.Reply{}, nil
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r, nil
}

func askAction(question string) models.Action {
	raw, _ := json.Marshal(models.HumanInputInput{Question: question})
	return models.Action{Name: models.ActionRequestHumanInput, Input: raw}
}

func newPlainSession(t *testing.T, replies ...agent.Reply) *orchestrator.Orchestrator {
	t.Helper()
	o, err := orchestrator.New(&producerOnly{replies: replies}, orchestrator.WithPaceDelay(0))
	if err != nil {
		t.Fatalf("orchestrator.New() error = %v", err)
	}
	return o
}

func TestRunPlain_AnswersQuestionsAndStops(t *testing.T) {
	o := newPlainSession(t, agent.Reply{Actions: []models.Action{askAction("How long should the video be?")}})

	in := strings.NewReader("2 minutes\n/state\n/stop\n")
	var out bytes.Buffer

	st, err := runPlain(context.Background(), o, "How tides work", "", in, &out, func() {})
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if st.LastStop != orchestrator.StopReasonStopped {
		t.Errorf("LastStop = %q, want %q", st.LastStop, orchestrator.StopReasonStopped)
	}
	if st.TargetMinutes == nil || *st.TargetMinutes != 2 {
		t.Errorf("TargetMinutes = %v, want 2", st.TargetMinutes)
	}

	got := out.String()
	for _, want := range []string{
		"Question for you: How long should the video be?",
		"Target duration set to 2 minutes",
		`"topic": "How tides work"`,
		"Session stopped by the operator.",
		"Session stopped.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestRunPlain_ResetStartsNewTopic(t *testing.T) {
	o := newPlainSession(t)
	resets := 0

	in := strings.NewReader("/reset\nThe history of tea\n")
	var out bytes.Buffer

	st, err := runPlain(context.Background(), o, "How tides work", "", in, &out, func() { resets++ })
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if resets != 1 {
		t.Errorf("resets = %d, want 1", resets)
	}
	if st.Topic != "The history of tea" {
		t.Errorf("Topic = %q, want the new topic", st.Topic)
	}
	if !strings.Contains(out.String(), "New topic> ") {
		t.Errorf("output should prompt for a new topic:\n%s", out.String())
	}
}

func TestRunPlain_EOFLeavesSessionRunning(t *testing.T) {
	o := newPlainSession(t)

	st, err := runPlain(context.Background(), o, "How tides work", "", strings.NewReader(""), &bytes.Buffer{}, func() {})
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if !st.Running {
		t.Error("EOF should leave the session running")
	}
	if st.LastStop != orchestrator.StopReasonQuiescent {
		t.Errorf("LastStop = %q, want %q", st.LastStop, orchestrator.StopReasonQuiescent)
	}
}

func TestRunPlain_EmptyTopic(t *testing.T) {
	o := newPlainSession(t)

	_, err := runPlain(context.Background(), o, "  ", "", strings.NewReader(""), &bytes.Buffer{}, func() {})
	if err == nil {
		t.Fatal("runPlain() should fail on an empty topic")
	}
}
