package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/momentum/internal/cli"
)

type DebugCmd struct {
	DBPath DebugDBPathCmd `cmd:"" help:"Show database path."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Fprintln(ctx.Writer(), string(jsonBytes))
	return nil
}
