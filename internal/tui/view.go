package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/board"
)

var tabTitles = []string{"Today", "Upcoming", "Medications"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(board.Render(m.board, m.cursor))
	case StateUpcoming:
		content = docStyle.Render(m.upcoming.View())
	case StateMedications:
		content = docStyle.Render(m.medList.View())
	case StateEditing:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = StateMedications
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	var lines []string
	if m.err != nil {
		lines = append(lines, dangerStyle.Render("Error: "+m.err.Error()))
	} else if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	if m.warning != "" {
		lines = append(lines, warningStyle.Render("⚠ "+m.warning))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.toDelete != nil {
		name = m.toDelete.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+name+" and cancel its reminders?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
