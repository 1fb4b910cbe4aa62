package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/scriptroom/internal/bus"
	"github.com/ShayCichocki/scriptroom/internal/orchestrator"
)

// sidePanelWidth is the width of the production panel; it is hidden on
// terminals narrower than minSideLayout.
const (
	sidePanelWidth = 38
	minSideLayout  = 100
)

// Session is the part of an orchestrator the studio drives.
type Session interface {
	Start(ctx context.Context, topic, brief string) (orchestrator.State, error)
	Respond(ctx context.Context, message string) (orchestrator.State, error)
	State() orchestrator.State
}

// NotificationMsg carries one bus notification into the program.
type NotificationMsg struct {
	Notification bus.Notification
}

// RunDoneMsg is sent when a Start or Respond call returns.
type RunDoneMsg struct {
	State orchestrator.State
	Err   error
}

// Studio is the full-screen view of one production session: the
// conversation, the production status and an input for replies.
type Studio struct {
	ctx   context.Context
	sess  Session
	topic string
	brief string

	conversation *ConversationPanel
	production   *ScriptPanel
	input        *InputField

	width        int
	height       int
	inputFocused bool
	busy         bool
	done         bool
	quitting     bool
	status       string
	err          error

	statusStyle lipgloss.Style
	errStyle    lipgloss.Style
	hintStyle   lipgloss.Style
}

// NewStudio creates a studio that starts topic on sess when the program
// initializes. An empty topic attaches to an already started session.
func NewStudio(ctx context.Context, sess Session, topic, brief string) *Studio {
	s := &Studio{
		ctx:          ctx,
		sess:         sess,
		topic:        topic,
		brief:        brief,
		conversation: NewConversationPanel(),
		production:   NewScriptPanel(),
		input:        NewInputField(),
		inputFocused: true,
		width:        120,
		height:       40,

		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		errStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Padding(0, 1),
		hintStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1),
	}
	s.production.SetState(sess.State())
	if topic != "" {
		s.busy = true
		s.status = "Briefing the producer..."
		s.input.SetPlaceholder(placeholderBusy)
	}
	s.layout()
	return s
}

// Init implements tea.Model.
func (s *Studio) Init() tea.Cmd {
	if s.topic == "" {
		return s.input.Focus()
	}
	return tea.Batch(s.input.Focus(), s.startCmd())
}

func (s *Studio) startCmd() tea.Cmd {
	return s.run(func() (orchestrator.State, error) {
		return s.sess.Start(s.ctx, s.topic, s.brief)
	})
}

// Update implements tea.Model.
func (s *Studio) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.layout()
		return s, nil

	case SubmitMsg:
		switch {
		case s.done:
			return s, nil
		case s.busy:
			s.input.SetValue(msg.Text)
			s.status = "The team is still working. Your message is kept until they pause."
			return s, nil
		}
		s.busy = true
		s.err = nil
		s.status = "Sent."
		s.input.SetPlaceholder(placeholderBusy)
		return s, s.run(func() (orchestrator.State, error) {
			return s.sess.Respond(s.ctx, msg.Text)
		})

	case NotificationMsg:
		s.apply(msg.Notification)
		return s, nil

	case RunDoneMsg:
		s.busy = false
		s.err = msg.Err
		s.production.SetState(msg.State)
		s.status = StopSummary(msg.State)
		switch {
		case msg.State.Started() && !msg.State.Running:
			s.done = true
			s.input.SetPlaceholder(placeholderDone)
		case msg.State.AwaitingHuman:
			s.input.SetPlaceholder(placeholderQuestion)
		default:
			s.input.SetPlaceholder(placeholderIdle)
		}
		return s, nil
	}

	return s, nil
}

func (s *Studio) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		s.quitting = true
		return s, tea.Quit

	case "q":
		if s.done || !s.inputFocused {
			s.quitting = true
			return s, tea.Quit
		}

	case "tab", "shift+tab":
		s.inputFocused = !s.inputFocused
		s.conversation.SetFocused(!s.inputFocused)
		if s.inputFocused {
			return s, s.input.Focus()
		}
		s.input.Blur()
		return s, nil

	case "esc":
		if !s.inputFocused {
			s.inputFocused = true
			s.conversation.SetFocused(false)
			return s, s.input.Focus()
		}
		return s, nil
	}

	if s.inputFocused {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	var cmd tea.Cmd
	s.conversation, cmd = s.conversation.Update(msg)
	return s, cmd
}

// apply folds a bus notification into the panels.
func (s *Studio) apply(n bus.Notification) {
	switch n.Kind {
	case bus.KindMessage:
		if n.Event != nil {
			s.conversation.AddEvent(*n.Event)
		}
	case bus.KindScript:
		s.production.SetScript(n.Script)
	case bus.KindThinking:
		if n.Thinking != nil {
			s.conversation.SetThinking(n.Thinking.Agent, n.Thinking.Active, n.Thinking.Context)
		}
	case bus.KindPhase:
		if n.Phase != nil {
			s.production.SetPhase(n.Phase.Name)
		}
	}
	s.production.SetState(s.sess.State())
}

func (s *Studio) run(fn func() (orchestrator.State, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn()
		return RunDoneMsg{State: st, Err: err}
	}
}

// layout sizes the panels to the terminal.
func (s *Studio) layout() {
	// status line + input box + hints
	panelHeight := s.height - 5
	if panelHeight < 6 {
		panelHeight = 6
	}
	convWidth := s.width
	if s.width >= minSideLayout {
		convWidth = s.width - sidePanelWidth
		s.production.SetSize(sidePanelWidth, panelHeight)
	}
	s.conversation.SetSize(convWidth, panelHeight)
	s.input.SetWidth(s.width)
}

// View implements tea.Model.
func (s *Studio) View() string {
	if s.quitting {
		return ""
	}

	panels := s.conversation.View()
	if s.width >= minSideLayout {
		panels = lipgloss.JoinHorizontal(lipgloss.Top, panels, s.production.View())
	}

	status := s.statusStyle.Render(s.status)
	if s.err != nil {
		status = s.errStyle.Render(s.err.Error())
	}
	hints := s.hintStyle.Render("tab: switch focus  ↑/↓: scroll  f: filter  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, panels, status, s.input.View(), hints)
}

// Done reports whether the session has finished.
func (s *Studio) Done() bool {
	return s.done
}

// StopSummary describes why the last run returned.
func StopSummary(st orchestrator.State) string {
	switch st.LastStop {
	case orchestrator.StopReasonAwaitingHuman:
		if st.Question != nil {
			return "Question for you: " + st.Question.Text
		}
		return "The team is waiting for your answer."
	case orchestrator.StopReasonBudgetExhausted:
		return fmt.Sprintf("Step budget used up (%d/%d). Reset the session to continue.", st.Steps, st.StepBudget)
	case orchestrator.StopReasonComplete:
		if st.Audio != nil {
			return "Production complete. Voiceover: " + st.Audio.URL
		}
		return "Production complete."
	case orchestrator.StopReasonStopped:
		return "Session stopped."
	case orchestrator.StopReasonCanceled:
		return "Run canceled."
	case orchestrator.StopReasonQuiescent:
		return "The team is waiting for direction."
	default:
		return ""
	}
}

// NewStudioProgram creates the Bubbletea program for a studio.
func NewStudioProgram(ctx context.Context, sess Session, topic, brief string) (*tea.Program, *Studio) {
	studio := NewStudio(ctx, sess, topic, brief)
	p := tea.NewProgram(studio, tea.WithAltScreen(), tea.WithContext(ctx))
	return p, studio
}

// Forward returns a bus observer that delivers notifications to p.
func Forward(p *tea.Program) bus.Observer {
	return bus.ObserverFunc(func(n bus.Notification) error {
		p.Send(NotificationMsg{Notification: n})
		return nil
	})
}
