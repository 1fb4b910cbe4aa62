package agent

import (
	"fmt"
	"strings"
)

// Prompt renders the per-turn context of r as the text of the final user
// message: team roster, script snapshot, recent events and instruction.
// The system instructions and memory are sent separately.
func (r Request) Prompt() string {
	var sb strings.Builder

	if len(r.Roster) > 0 {
		sb.WriteString("## Team\n")
		for _, p := range r.Roster {
			fmt.Fprintf(&sb, "- @%s (%s)", p.ID, p.Name)
			if len(p.Capabilities) > 0 {
				caps := make([]string, len(p.Capabilities))
				for i, c := range p.Capabilities {
					caps[i] = string(c)
				}
				fmt.Fprintf(&sb, ": %s", strings.Join(caps, ", "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Current script\n")
	if len(r.Script) == 0 {
		sb.WriteString("(empty)\n")
	} else {
		for _, name := range r.Script.Sections() {
			fmt.Fprintf(&sb, "### %s (%d words)\n%s\n", name, r.Script.SectionWords(name), r.Script[name])
		}
		fmt.Fprintf(&sb, "Total: %d words\n", r.Script.WordCount())
	}
	sb.WriteString("\n")

	if len(r.Recent) > 0 {
		sb.WriteString("## Recent conversation\n")
		for _, ev := range r.Recent {
			fmt.Fprintf(&sb, "[%s -> %s] (%s) %s\n", ev.From, ev.To, ev.Kind, ev.Body)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Your instruction\n")
	sb.WriteString(r.Instruction)
	return sb.String()
}
