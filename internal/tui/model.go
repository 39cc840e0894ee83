// Package tui is the interactive protocols dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/dashboard"
	"github.com/julianstephens/momentum/internal/tui/components/protocols"
)

// loadedMsg reports the end of a Load
type loadedMsg struct {
	err error
}

// toggledMsg reports the end of a Persist
type toggledMsg struct {
	change dashboard.Change
	err    error
}

type Model struct {
	ctx       context.Context
	ctrl      *dashboard.ToggleController
	state     constants.SessionState
	keys      KeyMap
	help      help.Model
	spinner   spinner.Model
	protocols protocols.Model
	snapshot  dashboard.Snapshot
	form      *huh.Form
	alert     string
	loading   bool
	inFlight  int
	quitting  bool
	width     int
	height    int
}

func NewModel(ctx context.Context, ctrl *dashboard.ToggleController) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = momentumStyle

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		state:     constants.StateDashboard,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		protocols: protocols.New(0, 0),
		loading:   true,
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

func (m Model) persist(change dashboard.Change) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return toggledMsg{change: change, err: ctrl.Persist(ctx, change)}
	}
}

// sync copies the controller's current state into the view
func (m *Model) sync() {
	m.snapshot = m.ctrl.Snapshot()
	m.protocols.SetItems(m.snapshot.Items)
}

func (m *Model) openAlert(message string) tea.Cmd {
	m.alert = message
	m.state = constants.StateAlert
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Check-in failed").
				Description(message).
				Next(true).
				NextLabel("OK"),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

func (m *Model) closeAlert() {
	m.state = constants.StateDashboard
	m.form = nil
	m.alert = ""
}

func (m *Model) resize() {
	// header, section borders, optimization note, and help
	reserved := 16
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.protocols.SetSize(m.width-6, h)
	m.help.Width = m.width
}
