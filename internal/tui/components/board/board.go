// Package board renders the today view: each medication due today with the
// adherence status of its slots, followed by today's appointments.
package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/TheVortexX/OncoTrack-sub000/internal/adherence"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(22)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	statusStyles = map[adherence.Status]lipgloss.Style{
		adherence.Taken:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		adherence.Late:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		adherence.Missed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		adherence.Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}

	statusMarks = map[adherence.Status]string{
		adherence.Taken:   "✓",
		adherence.Late:    "!",
		adherence.Missed:  "✗",
		adherence.Pending: "·",
	}
)

// Cursor points at one slot cell of the board.
type Cursor struct {
	Row, Col int
}

// NoCursor renders the board without a selection.
var NoCursor = Cursor{Row: -1, Col: -1}

// Status renders a single status with its colour and mark.
func Status(s adherence.Status) string {
	return statusStyles[s].Render(statusMarks[s] + " " + s.String())
}

// Render draws b. The cell at cur is highlighted.
func Render(b service.Board, cur Cursor) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Today " + b.Now.Format(constants.DateFormat+" "+constants.TimeFormat)))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("morning %s · afternoon %s · evening %s",
		b.SlotTimes.Morning, b.SlotTimes.Afternoon, b.SlotTimes.Evening)))
	sb.WriteString("\n\n")

	if len(b.Rows) == 0 {
		sb.WriteString(dimStyle.Render("No medications due today."))
		sb.WriteString("\n")
	}
	for i, row := range b.Rows {
		sb.WriteString(nameStyle.Render(truncate(row.Medication.Name, 20)))
		for j, st := range row.Slots {
			cell := fmt.Sprintf("%-9s %s", st.Slot, Status(st.Status))
			if cur.Row == i && cur.Col == j {
				cell = cursorStyle.Render("›") + cell
			} else {
				cell = " " + cell
			}
			sb.WriteString("  " + cell)
		}
		if dose := row.Medication.FormatDosage(); dose != "" {
			sb.WriteString("  " + dimStyle.Render(dose))
		}
		sb.WriteString("\n")
	}

	if len(b.Appointments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Appointments"))
		sb.WriteString("\n")
		for _, a := range b.Appointments {
			sb.WriteString(Appointment(a, b.Now))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(Summary(b.Counts))
	return sb.String()
}

// Appointment renders one appointment line in now's zone.
func Appointment(a models.Appointment, now time.Time) string {
	loc := now.Location()
	line := fmt.Sprintf("  %s-%s  %s",
		a.Start.In(loc).Format(constants.TimeFormat),
		a.End.In(loc).Format(constants.TimeFormat),
		a.Title)
	if a.Location != "" {
		line += dimStyle.Render(" @ " + a.Location)
	}
	if a.End.Before(now) {
		return dimStyle.Render(line)
	}
	return line
}

// Summary is the one-line tally of the day.
func Summary(c adherence.Counts) string {
	if c.Total() == 0 {
		return dimStyle.Render("Nothing to take today.")
	}
	return fmt.Sprintf("%s  %s  %s  %s",
		statusStyles[adherence.Taken].Render(fmt.Sprintf("%d taken", c.Taken)),
		statusStyles[adherence.Late].Render(fmt.Sprintf("%d late", c.Late)),
		statusStyles[adherence.Missed].Render(fmt.Sprintf("%d missed", c.Missed)),
		statusStyles[adherence.Pending].Render(fmt.Sprintf("%d pending", c.Pending)),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
