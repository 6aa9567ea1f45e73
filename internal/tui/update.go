package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/medlist"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/forms"
)

type boardMsg struct {
	board service.Board
}

type eventsMsg struct {
	events []service.Event
}

type medsMsg struct {
	meds []models.Medication
}

type checkMsg struct {
	warning string
}

type actionDoneMsg struct {
	status string
}

type resyncMsg struct {
	failed int
	err    error
}

type errMsg struct {
	err error
}

type tickMsg time.Time

func (m Model) loadBoard() tea.Cmd {
	return func() tea.Msg {
		b, err := m.svc.TodayBoard(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		return boardMsg{b}
	}
}

func (m Model) loadEvents() tea.Cmd {
	return func() tea.Msg {
		events, err := m.svc.Upcoming(m.ctx, m.userID, UpcomingDays)
		if err != nil {
			return errMsg{err}
		}
		return eventsMsg{events}
	}
}

func (m Model) loadMeds() tea.Cmd {
	return func() tea.Msg {
		meds, err := m.svc.ListMedications(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		return medsMsg{meds}
	}
}

func (m Model) runCheck() tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Check(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		if !res.HasConflicts() {
			return checkMsg{}
		}
		return checkMsg{warning: fmt.Sprintf("%d data issue(s) found, run 'oncotrack doctor' for details", len(res.Conflicts))}
	}
}

func (m Model) reload() tea.Cmd {
	return tea.Batch(m.loadBoard(), m.loadEvents(), m.loadMeds(), m.runCheck())
}

func (m Model) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) take(med models.Medication, slot models.Slot) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.svc.LogIntake(m.ctx, m.userID, med.ID, slot)
		if err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Logged %s %s dose at %s", med.Name, slot, entry.LoggedAt.In(m.today().Location()).Format(constants.TimeFormat))}
	}
}

func (m Model) reschedule() tea.Cmd {
	return func() tea.Msg {
		results, err := m.svc.RescheduleAll(m.ctx, m.userID)
		if err != nil {
			return errMsg{err}
		}
		counts := map[lifecycle.Status]int{}
		for _, r := range results {
			counts[r.Status]++
		}
		return actionDoneMsg{status: fmt.Sprintf("Scheduled %d, skipped %d, failed %d",
			counts[lifecycle.StatusScheduled], counts[lifecycle.StatusSkipped], counts[lifecycle.StatusFailed])}
	}
}

// resync is the start-up reschedule. Unlike reschedule it stays quiet
// unless something failed.
func (m Model) resync() tea.Cmd {
	return func() tea.Msg {
		results, err := m.svc.RescheduleAll(m.ctx, m.userID)
		return resyncMsg{failed: len(lifecycle.Failed(results)), err: err}
	}
}

func (m Model) save(med models.Medication, isNew bool) tea.Cmd {
	return func() tea.Msg {
		if isNew {
			saved, err := m.svc.AddMedication(m.ctx, m.userID, med)
			if err != nil {
				return errMsg{err}
			}
			return actionDoneMsg{status: "Added medication: " + saved.Name}
		}
		saved, err := m.svc.EditMedication(m.ctx, m.userID, med)
		if err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: "Updated medication: " + saved.Name}
	}
}

func (m Model) remove(med models.Medication) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteMedication(m.ctx, m.userID, med.ID); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: "Deleted medication: " + med.Name}
	}
}

func (m Model) today() time.Time {
	if !m.board.Now.IsZero() {
		return m.board.Now
	}
	return m.now()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		contentHeight := msg.Height - v - 4
		m.upcoming.SetSize(msg.Width-h, contentHeight)
		m.medList.SetSize(msg.Width-h, contentHeight)
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width - h)
		}
		return m, nil

	case boardMsg:
		m.board = msg.board
		m.moveCursor(0, 0)
		return m, nil

	case eventsMsg:
		m.upcoming.SetEvents(msg.events)
		return m, nil

	case medsMsg:
		m.medList.SetMedications(msg.meds)
		return m, nil

	case checkMsg:
		m.warning = msg.warning
		return m, nil

	case actionDoneMsg:
		m.status = msg.status
		m.err = nil
		return m, m.reload()

	case resyncMsg:
		if msg.err != nil {
			m.err = msg.err
		} else if msg.failed > 0 {
			m.status = fmt.Sprintf("%d reminder(s) could not be scheduled, press r to retry", msg.failed)
		}
		return m, m.reload()

	case errMsg:
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadBoard(), m.loadEvents(), m.tick())

	case medlist.AddMedicationMsg:
		m.startForm(models.Medication{})
		return m, m.form.Init()

	case medlist.EditMedicationMsg:
		med := msg.Medication
		m.startForm(med)
		return m, m.form.Init()

	case medlist.DeleteMedicationMsg:
		med := msg.Medication
		m.toDelete = &med
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateEditing:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.state == StateMedications && m.medList.Filtering() {
			var cmd tea.Cmd
			m.medList, cmd = m.medList.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.reload()
		}
	}

	switch m.state {
	case StateToday:
		return m.updateToday(msg)
	case StateUpcoming:
		var cmd tea.Cmd
		m.upcoming, cmd = m.upcoming.Update(msg)
		return m, cmd
	case StateMedications:
		var cmd tea.Cmd
		m.medList, cmd = m.medList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateToday(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Up):
		m.moveCursor(-1, 0)
	case key.Matches(km, m.keys.Down):
		m.moveCursor(1, 0)
	case key.Matches(km, m.keys.Left):
		m.moveCursor(0, -1)
	case key.Matches(km, m.keys.Right):
		m.moveCursor(0, 1)
	case key.Matches(km, m.keys.Take):
		if med, slot, ok := m.selected(); ok {
			return m, m.take(med, slot)
		}
	case key.Matches(km, m.keys.Reschedule):
		return m, m.reschedule()
	}
	return m, nil
}

// startForm opens the medication form. A zero med means add.
func (m *Model) startForm(med models.Medication) {
	m.medForm = forms.FromMedication(med, m.today())
	m.editing = &med
	m.form = forms.NewMedicationForm(m.medForm)
	if m.width > 0 {
		h, _ := docStyle.GetFrameSize()
		m.form = m.form.WithWidth(m.width - h)
	}
	m.state = StateEditing
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		base := *m.editing
		fields := m.medForm
		m.closeForm()
		med, err := fields.Apply(base)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.save(med, base.ID == "")
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.medForm = nil
	m.editing = nil
	m.state = StateMedications
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Confirm):
		med := *m.toDelete
		m.toDelete = nil
		m.state = StateMedications
		return m, m.remove(med)
	case key.Matches(km, m.keys.Cancel):
		m.toDelete = nil
		m.state = StateMedications
	}
	return m, nil
}
