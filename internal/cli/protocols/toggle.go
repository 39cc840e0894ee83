package protocols

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/models"
)

type ToggleCmd struct {
	Protocol string `arg:"" help:"Protocol name or id."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctrl := ctx.Controller()
	if err := ctrl.Load(bg); err != nil {
		return err
	}

	habit, err := findHabit(ctrl.Habits(), c.Protocol)
	if err != nil {
		return err
	}

	change := ctrl.Apply(habit.ID)
	if err := ctrl.Persist(bg, change); err != nil {
		return change.AlertError(err)
	}

	fmt.Fprintf(ctx.Writer(), "%s: %s (momentum %d%%)\n", habit.Name, change.Target(), ctrl.Momentum())
	return nil
}

// findHabit matches an exact id first, then a case-insensitive name
func findHabit(habits []models.Habit, query string) (models.Habit, error) {
	for _, h := range habits {
		if h.ID == query {
			return h, nil
		}
	}

	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(query)) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("protocol %q not found", query)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("protocol name %q matches %d protocols, use the id (see 'momentum list --ids')", query, len(matches))
	}
}
