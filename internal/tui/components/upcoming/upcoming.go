// Package upcoming shows the doses and appointments of the coming days in
// a scrollable viewport.
package upcoming

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(8)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	events   []service.Event
	loaded   bool
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded {
		return "Loading..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetEvents(events []service.Event) {
	m.events = events
	m.loaded = true
	m.render()
}

func (m *Model) render() {
	m.viewport.SetContent(Render(m.events))
}

// Render lists events grouped by day.
func Render(events []service.Event) string {
	if len(events) == 0 {
		return "Nothing coming up."
	}
	var b strings.Builder
	lastDay := ""
	for _, e := range events {
		if day := e.At.Format("Mon " + constants.DateFormat); day != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(dayStyle.Render(day) + "\n")
			lastDay = day
		}
		detail := e.Detail
		if e.Kind == notifier.KindMedication {
			detail = strings.TrimSpace(fmt.Sprintf("%s %s", e.Slot, e.Detail))
		}
		b.WriteString(fmt.Sprintf("  %s%s %s\n",
			timeStyle.Render(e.At.Format(constants.TimeFormat)),
			titleStyle.Render(e.Title),
			detailStyle.Render(detail)))
	}
	return b.String()
}
