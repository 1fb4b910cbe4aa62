package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/internal/tui"
)

// renderer prints the notification stream of a session as plain lines.
type renderer struct {
	out     io.Writer
	verbose bool
}

// Compile-time verification that renderer implements bus.Observer.
var _ bus.Observer = (*renderer)(nil)

func newRenderer(out io.Writer, verbose bool) *renderer {
	return &renderer{out: out, verbose: verbose}
}

// Notify implements bus.Observer.
func (r *renderer) Notify(n bus.Notification) error {
	switch n.Kind {
	case bus.KindMessage:
		if n.Event == nil {
			return nil
		}
		_, err := fmt.Fprintf(r.out, "\n%s\n", tui.EventLine(*n.Event))
		return err
	case bus.KindPhase:
		if n.Phase == nil {
			return nil
		}
		_, err := color.New(color.FgCyan, color.Bold).Fprintf(r.out, "\n── %s ──\n", n.Phase.Description)
		return err
	case bus.KindThinking:
		if !r.verbose || n.Thinking == nil || !n.Thinking.Active {
			return nil
		}
		_, err := fmt.Fprintf(r.out, "%s %s\n", tui.Handle(n.Thinking.Agent), color.New(color.Faint).Sprint("is thinking..."))
		return err
	}
	return nil
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// printStop reports why a run returned.
func printStop(w io.Writer, st orchestrator.State) {
	summary := tui.StopSummary(st)
	if summary == "" {
		return
	}
	switch st.LastStop {
	case orchestrator.StopReasonComplete:
		printStatus(w, "✓", summary, color.FgGreen)
	case orchestrator.StopReasonAwaitingHuman:
		printStatus(w, "?", summary, color.FgYellow)
		if st.Question != nil {
			for i, o := range st.Question.Options {
				fmt.Fprintf(w, "  %d. %s\n", i+1, o)
			}
		}
	case orchestrator.StopReasonBudgetExhausted, orchestrator.StopReasonStopped, orchestrator.StopReasonCanceled:
		printStatus(w, "⚠", summary, color.FgYellow)
	default:
		printStatus(w, "•", summary, color.FgBlue)
	}
}

// printFinal prints the approved script of a session.
func printFinal(w io.Writer, st orchestrator.State) {
	if st.Final == nil {
		return
	}
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(st.Final.Title))
	if st.Final.Description != "" {
		fmt.Fprintln(w, st.Final.Description)
	}
	fmt.Fprintf(w, "%d words, about %.1f minutes\n\n", st.Final.WordCount, st.Final.EstimatedMinutes)
	fmt.Fprintln(w, strings.TrimSpace(st.Final.Script))
	if st.Audio != nil {
		fmt.Fprintf(w, "\nVoiceover: %s (%.1f seconds)\n", st.Audio.URL, st.Audio.DurationSeconds)
	}
}
