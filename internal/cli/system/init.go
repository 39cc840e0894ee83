package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Writer(), "Initialized momentum storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite storage")
	}

	dbPath := ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	fmt.Fprintf(ctx.Writer(), "Deleted existing database at: %s\n", dbPath)
	return nil
}
