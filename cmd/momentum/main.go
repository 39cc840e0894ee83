package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/cli/protocols"
	"github.com/julianstephens/momentum/internal/cli/system"
	"github.com/julianstephens/momentum/internal/config"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/keyring"
	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/storage/postgres"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
	"github.com/julianstephens/momentum/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path, PostgreSQL connection string without a password, or 'postgres' to read the connection string from MOMENTUM_DB_CONNECTION or the OS keyring." env:"MOMENTUM_CONFIG"`
	Settings string `help:"Settings file path." type:"string" default:"~/.config/momentum/config.yaml"`
	Timezone string `help:"IANA timezone that defines the day boundary." env:"MOMENTUM_TIMEZONE"`
	Debug    bool   `help:"Log to stderr at debug level."`

	Tui     system.TuiCmd       `cmd:"" help:"Launch the protocols dashboard." default:"1"`
	Init    system.InitCmd      `cmd:"" help:"Initialize momentum storage."`
	Migrate system.MigrateCmd   `cmd:"" help:"Run database migrations."`
	List    protocols.ListCmd   `cmd:"" help:"Show today's protocols and momentum."`
	Toggle  protocols.ToggleCmd `cmd:"" help:"Toggle today's check-in for a protocol."`
	Habit   protocols.HabitCmd  `cmd:"" help:"Manage protocols."`
	Keyring system.KeyringCmd   `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Doctor  system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	DebugDB system.DebugCmd     `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	// .env is optional; its values feed the env-backed flags below
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily protocols dashboard with momentum tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Settings)
	if err != nil {
		errors.Fatal(err)
	}

	settingsPath, err := config.ExpandHome(CLI.Settings)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Debug,
		ConfigDir: filepath.Dir(settingsPath),
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	tz := cfg.Timezone
	if CLI.Timezone != "" {
		tz = CLI.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Location: loc,
		Keyring:  keyring.Default(),
		Out:      os.Stdout,
	}

	command := ctx.Command()
	if !strings.HasPrefix(command, "keyring") {
		store, err := openStore(command, cfg, loc, appCtx.Keyring)
		if err != nil {
			errors.Fatal(err)
		}
		appCtx.Store = store
	}

	err = ctx.Run(appCtx)
	if appCtx.Store != nil {
		if cerr := appCtx.Store.Close(); cerr != nil {
			logger.Warn("Failed to close storage", "error", cerr)
		}
	}
	errors.Fatal(err)
}

// openStore resolves the backend and loads it. Commands that prepare or
// inspect the schema themselves receive an unloaded store.
func openStore(command string, cfg *config.Config, loc *time.Location, secrets config.SecretSource) (storage.Provider, error) {
	value := cfg.Database
	if CLI.Config != "" {
		value = CLI.Config
	}

	db, err := config.ResolveDatabase(value, secrets)
	if err != nil {
		return nil, err
	}

	var store storage.Provider
	switch db.Backend {
	case config.Postgres:
		store = postgres.New(db.Target, loc)
	default:
		store = sqlite.NewStore(db.Target, loc)
	}
	logger.Debug("Resolved storage", "backend", db.Backend, "path", store.GetConfigPath())

	switch {
	case command == "init", command == "migrate", command == "doctor", strings.HasPrefix(command, "debug"):
		return store, nil
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}
