package system

import (
	"fmt"

	"github.com/julianstephens/momentum/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Store.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(ctx.Writer(), "No migrations to apply. Database is up to date.")
	} else {
		fmt.Fprintf(ctx.Writer(), "Successfully applied %d migration(s).\n", count)
	}
	return nil
}
