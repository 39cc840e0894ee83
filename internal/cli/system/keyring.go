package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/keyring"
	"github.com/julianstephens/momentum/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsPostgres(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	out := ctx.Writer()
	err := postgres.ValidateConnString(cmd.ConnectionString)
	switch {
	case errors.Is(err, postgres.ErrEmbeddedCredentials):
		// The keyring is encrypted, so a password is allowed here.
		fmt.Fprintln(out, "⚠️  Connection string contains a password; it will be kept only in the OS keyring.")
	case err != nil:
		return err
	}

	if err := ctx.Keyring.Set(cmd.ConnectionString); err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ Connection string stored in OS keyring")
	fmt.Fprintf(out, "  Use it with --config=postgres or database: postgres in %s\n", constants.DefaultSettingsFile)
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := ctx.Keyring.Get()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string found in keyring, use 'momentum keyring set' to store one")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Writer(), maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := ctx.Keyring.Delete()
	if errors.Is(err, keyring.ErrNotFound) {
		return errors.New("no connection string found in keyring")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Writer(), "✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	out := ctx.Writer()
	status := ctx.Keyring.Check()
	if !status.Available {
		fmt.Fprintln(out, "❌ OS keyring is not available on this system")
		return keyring.ErrUnavailable
	}

	fmt.Fprintln(out, "✓ OS keyring is available")
	if status.Stored {
		fmt.Fprintln(out, "✓ Connection string is stored in keyring")
	} else {
		fmt.Fprintln(out, "ℹ No connection string stored in keyring")
	}
	return nil
}

// maskPassword hides the password of a URI or key=value connection string
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err != nil || u.User == nil {
			return connStr
		}
		if _, ok := u.User.Password(); !ok {
			return connStr
		}
		u.User = url.UserPassword(u.User.Username(), "****")
		return strings.Replace(u.String(), "%2A%2A%2A%2A", "****", 1)
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
