package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/momentum/internal/constants"
)

const optimizationNote = "Atomic Habits rule for today: make the next action obvious and easy. " +
	"Reduce friction until \"starting\" feels inevitable."

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == constants.StateAlert && m.form != nil {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				dangerStyle.Render("⚠ Could not sync"),
				"",
				m.form.View(),
				"",
				labelStyle.Render("[enter] OK  [esc] dismiss"),
			),
		)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		"",
		m.viewProtocols(),
		m.viewOptimization(),
		m.help.View(m.keys),
	))
}

func (m Model) viewHeader() string {
	left := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("LIFE OPERATING SYSTEM"),
		titleStyle.Render("Dashboard"),
		labelStyle.Render("Protocols for "+m.snapshot.Day),
	)
	right := lipgloss.JoinVertical(lipgloss.Right,
		labelStyle.Render("MOMENTUM"),
		momentumStyle.Render(fmt.Sprintf("%d%%", m.snapshot.Momentum)),
		labelStyle.Render(fmt.Sprintf("%d/%d executed", m.snapshot.Completed, m.snapshot.Total)),
	)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 4 {
		gap = 4
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
}

func (m Model) viewProtocols() string {
	heading := titleStyle.Render("PROTOCOLS") + "  " + labelStyle.Render("[r] refresh")

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " " + statusStyle.Render(constants.StatusLoading)
	case m.snapshot.Status != "":
		status = statusStyle.Render(m.snapshot.Status)
	}

	parts := []string{heading}
	if status != "" {
		parts = append(parts, "", status)
	}
	if list := m.protocols.View(); list != "" {
		parts = append(parts, "", list)
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewOptimization() string {
	width := m.width - 8
	if width < 20 {
		width = 60
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("OPTIMIZATION"),
		lipgloss.NewStyle().Width(width).Render(optimizationNote),
	))
}
