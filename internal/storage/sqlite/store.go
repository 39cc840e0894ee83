package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/migration"
	"github.com/julianstephens/momentum/migrations"
)

// timestampFormat is fixed width and always written in UTC, so lexical
// comparison of stored values matches chronological order.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	path string
	loc  *time.Location
	db   *sql.DB
}

// NewStore returns a store for the database file at path. Day windows are
// computed in loc, or time.Local when loc is nil.
func NewStore(path string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		path: path,
		loc:  loc,
	}
}

func (s *Store) dsn() string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + s.path + "?" + q.Encode()
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'momentum init' first")
	}

	if err := s.open(); err != nil {
		return err
	}
	return s.runner().Validate()
}

// Migrate applies pending schema migrations and returns how many ran
func (s *Store) Migrate() (int, error) {
	if s.db == nil {
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	return s.runner().Apply(func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	})
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The embedded directory is fixed at build time.
		panic(fmt.Sprintf("sqlite migrations missing: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite)
}

// MigrationRunner exposes the schema runner for diagnostics. The store must
// be loaded first.
func (s *Store) MigrationRunner() *migration.Runner {
	return s.runner()
}

// GetDB returns the open handle, or nil before Init or Load
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// parseTimestamp only accepts timestampFormat. Any other layout would not
// sort correctly against the day window bounds.
func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is not in canonical UTC form: %w", v, err)
	}
	return t, nil
}
