package orchestrator

import (
	"fmt"
	"strconv"
	"strings"
)

// briefing prefixes a coordinator instruction with the session status the
// coordinator needs to pick the next transition.
func (o *Orchestrator) briefing(trigger string) string {
	st := o.State()

	var sb strings.Builder
	sb.WriteString(trigger)
	sb.WriteString("\n\n## Session status\n")
	fmt.Fprintf(&sb, "Topic: %s\n", st.Topic)
	fmt.Fprintf(&sb, "Phase: %s (%s)\n", st.Phase, st.Phase.Description())
	fmt.Fprintf(&sb, "Script sections: %d\n", st.Sections)

	if st.Envelope != nil {
		fmt.Fprintf(&sb, "Target duration: %s minutes. Word envelope: %s. Current script: %d words",
			formatMinutes(*st.TargetMinutes), st.Envelope, st.WordCount)
		switch {
		case st.WordCount < st.Envelope.Min:
			fmt.Fprintf(&sb, " (%d short).\n", st.Envelope.Min-st.WordCount)
		case st.WordCount > st.Envelope.Max:
			fmt.Fprintf(&sb, " (%d over).\n", st.WordCount-st.Envelope.Max)
		default:
			sb.WriteString(" (within range).\n")
		}
	} else {
		sb.WriteString("Target duration: unknown. Ask the user how long the video should be before any writing starts.\n")
	}

	if st.Final != nil {
		fmt.Fprintf(&sb, "Final script: approved (%q). Next: have the voiceover prepared and synthesized.\n", st.Final.Title)
	}
	fmt.Fprintf(&sb, "Steps used: %d of %d\n", st.Steps, st.StepBudget)
	return sb.String()
}

// formatMinutes renders 1 as "1" and 1.5 as "1.5".
func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
