package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// ScriptPanel shows the session status and the script outline.
type ScriptPanel struct {
	state  orchestrator.State
	script bus.Script
	width  int
	height int

	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	shortStyle lipgloss.Style
	okStyle    lipgloss.Style
	overStyle  lipgloss.Style
}

// NewScriptPanel creates an empty panel.
func NewScriptPanel() *ScriptPanel {
	return &ScriptPanel{
		script: make(bus.Script),
		width:  36,
		height: 20,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),
		labelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		shortStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		overStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// SetState replaces the status snapshot.
func (p *ScriptPanel) SetState(st orchestrator.State) {
	p.state = st
}

// SetPhase updates the phase ahead of the next full snapshot.
func (p *ScriptPanel) SetPhase(phase models.Phase) {
	p.state.Phase = phase
}

// SetScript replaces the script snapshot.
func (p *ScriptPanel) SetScript(s bus.Script) {
	p.script = s.Clone()
	p.state.WordCount = s.WordCount()
	p.state.Sections = len(s)
}

// SetSize updates the panel dimensions.
func (p *ScriptPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *ScriptPanel) View() string {
	var b strings.Builder
	st := p.state

	b.WriteString(p.titleStyle.Render("Production"))
	b.WriteString("\n")
	p.row(&b, "Topic", truncate(st.Topic, p.width-12))
	phase := st.Phase
	if phase == "" {
		phase = models.PhaseIdle
	}
	p.row(&b, "Phase", phase.Description())

	words := strconv.Itoa(st.WordCount)
	if st.Envelope != nil {
		p.row(&b, "Length", strconv.FormatFloat(*st.TargetMinutes, 'f', -1, 64)+" min "+st.Envelope.String())
		switch {
		case st.WordCount < st.Envelope.Min:
			words = p.shortStyle.Render(words)
		case st.WordCount > st.Envelope.Max:
			words = p.overStyle.Render(words)
		default:
			words = p.okStyle.Render(words)
		}
	} else {
		p.row(&b, "Length", "not set")
	}
	p.row(&b, "Words", words)
	if st.StepBudget > 0 {
		p.row(&b, "Steps", fmt.Sprintf("%d/%d", st.Steps, st.StepBudget))
	}
	if st.Final != nil {
		p.row(&b, "Final", p.okStyle.Render(truncate(st.Final.Title, p.width-12)))
	}
	if st.Audio != nil {
		p.row(&b, "Audio", p.okStyle.Render(fmt.Sprintf("%.1fs", st.Audio.DurationSeconds)))
	}

	b.WriteString("\n")
	b.WriteString(p.titleStyle.Render("Sections"))
	b.WriteString("\n")
	if len(p.script) == 0 {
		b.WriteString(dimStyle.Render("  No sections yet"))
	}
	for _, name := range p.script.Sections() {
		fmt.Fprintf(&b, "  %s %s\n",
			truncate(name, p.width-14),
			p.labelStyle.Render(fmt.Sprintf("(%d)", p.script.SectionWords(name))))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(p.width - 2).
		Height(p.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (p *ScriptPanel) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, " %s %s\n", p.labelStyle.Render(fmt.Sprintf("%-7s", label)), value)
}
