package medlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

type AddMedicationMsg struct{}

type EditMedicationMsg struct {
	Medication models.Medication
}

type DeleteMedicationMsg struct {
	Medication models.Medication
}

type Item struct {
	Medication models.Medication
}

func (i Item) Title() string { return i.Medication.Name }

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | %s", i.Medication.Frequency, i.Medication.FormatSlots())
	if dose := i.Medication.FormatDosage(); dose != "" {
		desc = dose + " | " + desc
	}
	if !i.Medication.HasReminders() {
		desc += " | no reminders"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Medication.Name }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(meds []models.Medication, width, height int) Model {
	l := list.New(items(meds), list.NewDefaultDelegate(), width, height)
	l.Title = "Medications"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(meds []models.Medication) []list.Item {
	out := make([]list.Item, len(meds))
	for i, m := range meds {
		out[i] = Item{Medication: m}
	}
	return out
}

func (m *Model) SetMedications(meds []models.Medication) {
	m.list.SetItems(items(meds))
}

// Selected returns the highlighted medication.
func (m Model) Selected() (models.Medication, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Medication, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMedicationMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if med, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditMedicationMsg{Medication: med} }
			}
		case key.Matches(msg, m.keys.Delete):
			if med, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMedicationMsg{Medication: med} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No medications yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
