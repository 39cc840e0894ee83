package protocols

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/models"
)

type HabitCmd struct {
	Add HabitAddCmd `cmd:"" help:"Add a new protocol."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Protocol name."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.New("protocol name cannot be empty")
	}

	bg := context.Background()
	habits, err := ctx.Store.ListHabits(bg)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, name) {
			return fmt.Errorf("protocol with name %q already exists", name)
		}
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: ctx.Clock(),
	}
	if err := ctx.Store.AddHabit(bg, habit); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Writer(), "Added protocol: %s\n", name)
	return nil
}
