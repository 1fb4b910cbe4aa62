package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// filterAll shows every participant.
const filterAll = "all"

// ConversationPanel is a filterable, scrollable view of the session log.
// Workers that are currently thinking get one live line at the bottom
// instead of a log entry.
type ConversationPanel struct {
	events        []models.Event
	filter        string
	filterOptions []string
	filterIndex   int
	scrollOffset  int
	autoScroll    bool
	width         int
	height        int
	focused       bool
	maxEvents     int

	thinking map[models.Role]string

	titleStyle  lipgloss.Style
	filterStyle lipgloss.Style
}

// NewConversationPanel creates an empty panel.
func NewConversationPanel() *ConversationPanel {
	return &ConversationPanel{
		filter:        filterAll,
		filterOptions: []string{filterAll},
		autoScroll:    true,
		maxEvents:     1000,
		width:         80,
		height:        20,
		thinking:      make(map[models.Role]string),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1),

		filterStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
	}
}

// AddEvent appends an event to the panel.
func (p *ConversationPanel) AddEvent(ev models.Event) {
	p.events = append(p.events, ev)
	if len(p.events) > p.maxEvents {
		p.events = p.events[len(p.events)-p.maxEvents:]
	}
	p.addFilterOption(ev.From)
	if p.autoScroll {
		p.scrollToBottom()
	}
}

// SetThinking shows or clears a worker's live line.
func (p *ConversationPanel) SetThinking(r models.Role, active bool, snippet string) {
	if !active {
		delete(p.thinking, r)
		return
	}
	p.thinking[r] = snippet
}

// Clear drops every event and live line.
func (p *ConversationPanel) Clear() {
	p.events = nil
	p.thinking = make(map[models.Role]string)
	p.scrollOffset = 0
}

func (p *ConversationPanel) addFilterOption(r models.Role) {
	if r == "" {
		return
	}
	for _, opt := range p.filterOptions {
		if opt == string(r) {
			return
		}
	}
	p.filterOptions = append(p.filterOptions, string(r))
}

// SetSize updates the panel dimensions.
func (p *ConversationPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	if p.autoScroll {
		p.scrollToBottom()
	}
}

// SetFocused sets whether this panel has keyboard focus.
func (p *ConversationPanel) SetFocused(focused bool) {
	p.focused = focused
}

// Update handles scrolling and filter keys while focused.
func (p *ConversationPanel) Update(msg tea.Msg) (*ConversationPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "up", "k":
		if p.scrollOffset > 0 {
			p.scrollOffset--
			p.autoScroll = false
		}
	case "down", "j":
		if p.scrollOffset < p.maxOffset() {
			p.scrollOffset++
		}
	case "f":
		p.filterIndex = (p.filterIndex + 1) % len(p.filterOptions)
		p.filter = p.filterOptions[p.filterIndex]
		p.scrollToBottom()
	case "g":
		p.scrollOffset = 0
		p.autoScroll = false
	case "G":
		p.autoScroll = true
		p.scrollToBottom()
	}
	return p, nil
}

// visibleLines is the number of content lines inside the border.
func (p *ConversationPanel) visibleLines() int {
	lines := p.height - 4 - len(p.thinking)
	if len(p.thinking) > 0 {
		lines--
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}

func (p *ConversationPanel) maxOffset() int {
	n := len(p.lines()) - p.visibleLines()
	if n < 0 {
		return 0
	}
	return n
}

func (p *ConversationPanel) scrollToBottom() {
	p.scrollOffset = p.maxOffset()
}

// filtered returns the events matching the current filter.
func (p *ConversationPanel) filtered() []models.Event {
	if p.filter == filterAll {
		return p.events
	}
	var out []models.Event
	for _, ev := range p.events {
		if string(ev.From) == p.filter || string(ev.To) == p.filter {
			out = append(out, ev)
		}
	}
	return out
}

// lines renders the filtered events, wrapped to the panel width.
func (p *ConversationPanel) lines() []string {
	width := p.width - 6
	if width < 20 {
		width = 20
	}
	var out []string
	for _, ev := range p.filtered() {
		out = append(out, EventHeader(ev))
		body := kindStyle(ev.Kind).Width(width).Render(bodyText(ev))
		for _, l := range strings.Split(body, "\n") {
			out = append(out, "  "+l)
		}
	}
	return out
}

// View renders the panel.
func (p *ConversationPanel) View() string {
	var b strings.Builder

	title := "Conversation"
	if p.focused {
		title = "[Conversation]"
	}
	b.WriteString(p.titleStyle.Render(title))
	filterText := fmt.Sprintf(" [%s]", p.filter)
	if p.autoScroll {
		filterText += " (auto)"
	}
	b.WriteString(p.filterStyle.Render(filterText))
	b.WriteString("\n")

	lines := p.lines()
	visible := p.visibleLines()
	if len(lines) == 0 {
		b.WriteString(dimStyle.Render("  Nothing said yet"))
		b.WriteString("\n")
	} else {
		start := p.scrollOffset
		if start > len(lines) {
			start = len(lines)
		}
		end := start + visible
		if end > len(lines) {
			end = len(lines)
		}
		for _, l := range lines[start:end] {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}

	if len(p.thinking) > 0 {
		b.WriteString(dimStyle.Render("─── thinking ───"))
		b.WriteString("\n")
		roles := make([]string, 0, len(p.thinking))
		for r := range p.thinking {
			roles = append(roles, string(r))
		}
		sort.Strings(roles)
		for _, r := range roles {
			line := Handle(models.Role(r)) + " " + dimStyle.Render(truncate(p.thinking[models.Role(r)], p.width-20))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	borderColor := lipgloss.Color("240")
	if p.focused {
		borderColor = lipgloss.Color("63")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(p.width - 2).
		Height(p.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

// EventCount returns the number of stored events.
func (p *ConversationPanel) EventCount() int {
	return len(p.events)
}
