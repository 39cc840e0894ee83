// Package config loads the optional YAML settings file and resolves which
// database backend to open.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/keyring"
	"github.com/julianstephens/momentum/internal/storage/postgres"
)

// PostgresFromSecrets selects PostgreSQL with the connection string taken
// from the environment or the OS keyring.
const PostgresFromSecrets = "postgres"

// Config is the settings file. Every key is optional.
type Config struct {
	Database string `yaml:"database"`
	Debug    bool   `yaml:"debug"`
	Timezone string `yaml:"timezone"`
	LogLevel string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Database: constants.DefaultConfigPath,
		Timezone: "Local",
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads the settings file at path. A missing file yields the defaults.
// ${VAR} references are replaced with the environment value, or "" if unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = constants.DefaultConfigPath
	}
	return cfg, nil
}

func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Backend identifies a storage implementation
type Backend string

const (
	SQLite   Backend = "sqlite"
	Postgres Backend = "postgres"
)

// Database is a resolved storage target
type Database struct {
	Backend Backend
	// Target is a file path for SQLite and a connection string for PostgreSQL.
	Target string
}

// SecretSource yields a stored connection string
type SecretSource interface {
	Get() (string, error)
}

// ResolveDatabase turns the configured database value into a backend.
// An explicit PostgreSQL URL must not carry a password. The literal
// "postgres" reads the connection string from the environment first and
// then from secrets, where a password is allowed.
func ResolveDatabase(value string, secrets SecretSource) (Database, error) {
	switch {
	case value == PostgresFromSecrets:
		connStr, err := lookupSecret(secrets)
		if err != nil {
			return Database{}, err
		}
		return Database{Backend: Postgres, Target: connStr}, nil
	case postgres.IsPostgres(value):
		if err := postgres.ValidateConnString(value); err != nil {
			return Database{}, fmt.Errorf("%w (store it with 'momentum keyring set' or export %s, then pass --config=postgres)",
				err, constants.ConnectionEnvVar)
		}
		return Database{Backend: Postgres, Target: value}, nil
	default:
		if value == "" {
			value = constants.DefaultConfigPath
		}
		path, err := ExpandHome(value)
		if err != nil {
			return Database{}, err
		}
		return Database{Backend: SQLite, Target: path}, nil
	}
}

var errNoConnection = fmt.Errorf("no connection string: set %s or run 'momentum keyring set'", constants.ConnectionEnvVar)

func lookupSecret(secrets SecretSource) (string, error) {
	if v := os.Getenv(constants.ConnectionEnvVar); v != "" {
		if !postgres.IsPostgres(v) {
			return "", fmt.Errorf("%s is not a PostgreSQL connection string", constants.ConnectionEnvVar)
		}
		return v, nil
	}
	if secrets == nil {
		return "", errNoConnection
	}
	v, err := secrets.Get()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", errNoConnection
	}
	if err != nil {
		return "", err
	}
	if !postgres.IsPostgres(v) {
		return "", errors.New("keyring entry is not a PostgreSQL connection string")
	}
	return v, nil
}
