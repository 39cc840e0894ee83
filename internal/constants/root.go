package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName             = "momentum"
	DefaultKeyringUser  = "database-connection"
	DefaultConfigPath   = "~/.config/momentum/momentum.db"
	DefaultSettingsFile = "~/.config/momentum/config.yaml"
	ConnectionEnvVar    = "MOMENTUM_DB_CONNECTION"
	Version             = "v0.1.0"

	// DateFormat is the day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Protocol status labels
	StatusExecuted = "EXECUTED"
	StatusPending  = "PENDING"

	// Dashboard status messages
	StatusLoading   = "Loading protocols…"
	StatusNoHabits  = "No protocols yet. Add some with 'momentum habit add'."
	StatusErrPrefix = "Error: "

	// Toggle failure alerts
	AlertInsertFailed = "Could not save check-in: "
	AlertDeleteFailed = "Could not remove check-in: "

	// Postgres connection pool
	PostgresMaxOpenConns    = 10
	PostgresMaxIdleConns    = 10
	PostgresConnMaxLifetime = 5 * time.Minute
)

// Session States
const (
	StateDashboard SessionState = iota
	StateAlert
)
