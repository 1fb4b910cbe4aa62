package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

func TestRenderer(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, false)

	ev := models.Event{From: models.RoleProducer, To: models.RoleWriter, Body: "Draft the intro.", Kind: models.EventTask, Timestamp: time.Now()}
	if err := r.Notify(bus.Notification{Kind: bus.KindMessage, Event: &ev}); err != nil {
		t.Fatal(err)
	}
	if err := r.Notify(bus.Notification{Kind: bus.KindPhase, Phase: &bus.PhaseChange{Name: models.PhaseWriting, Description: models.PhaseWriting.Description()}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Notify(bus.Notification{Kind: bus.KindThinking, Thinking: &bus.Thinking{Agent: models.RoleWriter, Active: true}}); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"@producer → @writer", "Draft the intro.", "Writing the script"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "is thinking") {
		t.Error("thinking should only be shown in verbose mode")
	}

	out.Reset()
	verbose := newRenderer(&out, true)
	verbose.Notify(bus.Notification{Kind: bus.KindThinking, Thinking: &bus.Thinking{Agent: models.RoleWriter, Active: true}})
	if !strings.Contains(out.String(), "@writer is thinking") {
		t.Errorf("verbose output = %q", out.String())
	}
}

func TestPrintFinal(t *testing.T) {
	var out bytes.Buffer
	printFinal(&out, orchestrator.State{})
	if out.Len() != 0 {
		t.Error("nothing should be printed without a final script")
	}

	printFinal(&out, orchestrator.State{
		Final: &models.FinalScript{Title: "Tides", Script: "The moon pulls.", WordCount: 3, EstimatedMinutes: 0.02},
		Audio: &models.AudioResult{URL: "file:///tmp/a.mp3", DurationSeconds: 1.5},
	})
	for _, want := range []string{"Tides", "3 words", "The moon pulls.", "Voiceover: file:///tmp/a.mp3 (1.5 seconds)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
