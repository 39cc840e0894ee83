package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/momentum/internal/dashboard"
)

// Run starts the dashboard and blocks until the user quits
func Run(ctx context.Context, ctrl *dashboard.ToggleController) error {
	p := tea.NewProgram(NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
