package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// roleColors gives every participant a stable color.
var roleColors = map[models.Role]lipgloss.Color{
	models.RoleProducer:    lipgloss.Color("39"),  // Blue
	models.RoleResearcher:  lipgloss.Color("34"),  // Green
	models.RoleWriter:      lipgloss.Color("214"), // Orange
	models.RoleCritic:      lipgloss.Color("170"), // Magenta
	models.RoleFactChecker: lipgloss.Color("43"),  // Teal
	models.RoleCreative:    lipgloss.Color("219"), // Pink
	models.RoleVoiceover:   lipgloss.Color("141"), // Violet
	models.RoleUser:        lipgloss.Color("15"),
	models.RoleSystem:      lipgloss.Color("244"),
	models.RoleAll:         lipgloss.Color("244"),
}

var (
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	arrowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	approvalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// RoleStyle returns the style used to print a participant's handle.
func RoleStyle(r models.Role) lipgloss.Style {
	c, ok := roleColors[r]
	if !ok {
		c = lipgloss.Color("252")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// Handle renders "@role" in the role's color.
func Handle(r models.Role) string {
	return RoleStyle(r).Render("@" + string(r))
}

// EventHeader renders the "15:04:05 @from → @to" prefix of an event.
func EventHeader(ev models.Event) string {
	return fmt.Sprintf("%s %s %s %s",
		timeStyle.Render(ev.Timestamp.Format("15:04:05")),
		Handle(ev.From),
		arrowStyle.Render("→"),
		Handle(ev.To))
}

// EventBody renders the body of an event styled by its kind.
func EventBody(ev models.Event) string {
	return kindStyle(ev.Kind).Render(bodyText(ev))
}

// bodyText is the plain body of an event with any question options listed.
func bodyText(ev models.Event) string {
	body := strings.TrimSpace(ev.Body)
	if ev.Kind == models.EventQuestion && ev.Payload != nil {
		for i, o := range ev.Payload.Options {
			body += fmt.Sprintf("\n  %d. %s", i+1, o)
		}
	}
	return body
}

func kindStyle(k models.EventKind) lipgloss.Style {
	switch k {
	case models.EventQuestion:
		return questionStyle
	case models.EventFeedback:
		return feedbackStyle
	case models.EventApproval:
		return approvalStyle
	default:
		return bodyStyle
	}
}

// EventLine renders an event as a header line followed by its body.
func EventLine(ev models.Event) string {
	return EventHeader(ev) + "\n" + EventBody(ev)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
