// Package tui is the interactive today board built on bubbletea.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/board"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/medlist"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/upcoming"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/forms"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateUpcoming
	StateMedications
	StateEditing
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

// UpcomingDays is how far ahead the upcoming tab looks.
const UpcomingDays = 7

// RefreshInterval is how often the board is recomputed while idle.
const RefreshInterval = time.Minute

type Model struct {
	ctx     context.Context
	svc     *service.Service
	userID  string
	now     func() time.Time
	refresh time.Duration

	state    SessionState
	keys     KeyMap
	help     help.Model
	board    service.Board
	cursor   board.Cursor
	upcoming upcoming.Model
	medList  medlist.Model

	form     *huh.Form
	medForm  *forms.MedicationForm
	editing  *models.Medication
	toDelete *models.Medication
	status   string
	err      error
	warning  string
	quitting bool
	width    int
	height   int
}

type Option func(*Model)

func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithRefreshInterval sets the tick period. Zero disables ticking.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) { m.refresh = d }
}

func NewModel(ctx context.Context, svc *service.Service, userID string, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		svc:      svc,
		userID:   userID,
		now:      time.Now,
		refresh:  RefreshInterval,
		state:    StateToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		cursor:   board.Cursor{},
		upcoming: upcoming.New(0, 0),
		medList:  medlist.New(nil, 0, 0),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday {
		keys = append(keys, m.keys.Take, m.keys.Reschedule)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	var actions []key.Binding
	switch m.state {
	case StateToday:
		actions = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right, m.keys.Take, m.keys.Reschedule}
	case StateMedications:
		keys := medlist.DefaultKeyMap()
		actions = []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	return [][]key.Binding{global, actions}
}

// Init re-derives every reminder before the first load, so alerts lost
// while the app was closed are queued again.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.resync(), m.tick())
}

// selected returns the medication and slot under the cursor.
func (m Model) selected() (models.Medication, models.Slot, bool) {
	if m.cursor.Row < 0 || m.cursor.Row >= len(m.board.Rows) {
		return models.Medication{}, "", false
	}
	row := m.board.Rows[m.cursor.Row]
	if m.cursor.Col < 0 || m.cursor.Col >= len(row.Slots) {
		return models.Medication{}, "", false
	}
	return row.Medication, row.Slots[m.cursor.Col].Slot, true
}

// moveCursor shifts the cursor and keeps it on a real cell.
func (m *Model) moveCursor(dRow, dCol int) {
	if len(m.board.Rows) == 0 {
		m.cursor = board.Cursor{}
		return
	}
	row := clamp(m.cursor.Row+dRow, 0, len(m.board.Rows)-1)
	col := clamp(m.cursor.Col+dCol, 0, len(m.board.Rows[row].Slots)-1)
	m.cursor = board.Cursor{Row: row, Col: col}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
