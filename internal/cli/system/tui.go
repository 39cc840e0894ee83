package system

import (
	"context"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	return tui.Run(context.Background(), ctx.Controller())
}
