package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/tui/components/protocols"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.sync()
		if msg.err != nil {
			logger.Debug("Dashboard load failed", "error", msg.err)
		}
		return m, nil

	case toggledMsg:
		m.inFlight--
		m.sync()
		if msg.err != nil {
			return m, m.openAlert(msg.change.Alert(msg.err))
		}
		return m, nil

	case protocols.ToggleMsg:
		// Apply is synchronous so the row flips before the store answers.
		change := m.ctrl.Apply(msg.ID)
		m.inFlight++
		m.sync()
		return m, m.persist(change)

	case protocols.RefreshMsg:
		m.loading = true
		m.sync()
		return m, tea.Batch(m.spinner.Tick, m.load())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == constants.StateAlert {
		if msg, ok := msg.(tea.KeyMsg); ok {
			if key.Matches(msg, m.keys.Quit) {
				m.quitting = true
				return m, tea.Quit
			}
			if key.Matches(msg, m.keys.Dismiss) {
				m.closeAlert()
				return m, nil
			}
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		if m.form.State != huh.StateNormal {
			m.closeAlert()
			return m, nil
		}
		return m, tea.Batch(cmds...)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.protocols, cmd = m.protocols.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}
