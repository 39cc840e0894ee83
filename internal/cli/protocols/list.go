package protocols

import (
	"context"
	"fmt"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/dashboard"
)

type ListCmd struct {
	IDs bool `help:"Show protocol ids."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	ctrl := ctx.Controller()
	if err := ctrl.Load(context.Background()); err != nil {
		return err
	}

	printSnapshot(ctx, ctrl.Snapshot(), c.IDs)
	return nil
}

func printSnapshot(ctx *cli.Context, snap dashboard.Snapshot, ids bool) {
	out := ctx.Writer()
	fmt.Fprintf(out, "Protocols for %s\n", snap.Day)
	if snap.Status != "" {
		fmt.Fprintln(out, snap.Status)
	}
	for _, it := range snap.Items {
		if ids {
			fmt.Fprintf(out, "  [%-8s] %s (%s)\n", it.State, it.Habit.Name, it.Habit.ID)
		} else {
			fmt.Fprintf(out, "  [%-8s] %s\n", it.State, it.Habit.Name)
		}
	}
	fmt.Fprintf(out, "MOMENTUM %d%% (%d/%d executed)\n", snap.Momentum, snap.Completed, snap.Total)
}
