package system

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/migration"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
	"github.com/julianstephens/momentum/internal/utils"
)

// sqlStore is satisfied by the database/sql backed stores
type sqlStore interface {
	GetDB() *sql.DB
	MigrationRunner() *migration.Runner
}

// canonicalTimestampGlob matches the fixed-width UTC text the SQLite store writes
var canonicalTimestampGlob = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]T[0-9][0-9]:[0-9][0-9]:[0-9][0-9]." +
	strings.Repeat("[0-9]", 9) + "Z"

const dayGlob = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]"

type DoctorCmd struct{}

type doctorCheck struct {
	name    string
	needsDB bool
	run     func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	w := ctx.Writer()
	fmt.Fprintln(w, "Running diagnostics...")
	fmt.Fprintf(w, "Today is %s (%s)\n", ctx.Today(), locationName(ctx))
	fmt.Fprintln(w)

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		report(w, "Database reachable", err)
		hasError = true
	} else {
		report(w, "Database reachable", nil)
		dbReachable = true
	}

	checks := []doctorCheck{
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
		{name: "Check-in duplicates", needsDB: true, run: checkCheckinDuplicates},
		{name: "Date formats", needsDB: true, run: checkDayFormats},
		{name: "Timestamp integrity", needsDB: true, run: checkTimestampIntegrity},
	}
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Fprintf(w, "⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		report(w, c.name, err)
		if err != nil {
			hasError = true
		}
	}

	fmt.Fprintln(w)
	if hasError {
		fmt.Fprintln(w, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(w, "All diagnostics passed!")
	return nil
}

func report(w io.Writer, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "❌ %s: FAIL\n", name)
		fmt.Fprintf(w, "   Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "✓ %s: OK\n", name)
}

func openDB(ctx *cli.Context) (*sql.DB, *migration.Runner, bool) {
	s, ok := ctx.Store.(sqlStore)
	if !ok || s.GetDB() == nil {
		return nil, nil, false
	}
	return s.GetDB(), s.MigrationRunner(), true
}

func checkDBReachable(ctx *cli.Context) error {
	loadErr := ctx.Store.Load()

	db, _, ok := openDB(ctx)
	if !ok {
		if loadErr != nil {
			return fmt.Errorf("failed to load database: %w", loadErr)
		}
		// In-memory storage has no connection to test
		return nil
	}

	// A schema mismatch still leaves a usable connection; the schema
	// checks report it.
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		if loadErr != nil {
			return fmt.Errorf("failed to load database: %w", loadErr)
		}
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func versions(ctx *cli.Context) (int, int, bool, error) {
	_, runner, ok := openDB(ctx)
	if !ok {
		return 0, 0, false, nil
	}

	current, err := runner.CurrentVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if !ok || err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := versions(ctx)
	if !ok || err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Clock()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format("2006-01-02T15:04:05Z07:00"))
	}
	if _, _, err := utils.DayWindow(ctx.Today(), ctx.Location); err != nil {
		return fmt.Errorf("today's key %q is invalid in %s: %w", ctx.Today(), locationName(ctx), err)
	}
	return nil
}

func locationName(ctx *cli.Context) string {
	if ctx.Location == nil {
		return "Local"
	}
	return ctx.Location.String()
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.ListHabits(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list habits: %w", err)
	}

	names := make(map[string]string, len(habits))
	for _, h := range habits {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("habit %s has an empty name", h.ID)
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if other, ok := names[key]; ok {
			return fmt.Errorf("habits %s and %s share the name %q", other, h.ID, h.Name)
		}
		names[key] = h.ID
	}

	db, _, ok := openDB(ctx)
	if !ok {
		return nil
	}

	// Check-ins referencing non-existent habits
	var orphanedCount int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM checkins c
		LEFT JOIN habits h ON c.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphanedCount)
	if err != nil {
		return fmt.Errorf("failed to check orphaned check-ins: %w", err)
	}
	if orphanedCount > 0 {
		return fmt.Errorf("found %d orphaned check-ins (referencing non-existent habits)", orphanedCount)
	}
	return nil
}

func checkCheckinDuplicates(ctx *cli.Context) error {
	db, _, ok := openDB(ctx)
	if !ok {
		return nil
	}

	var duplicateCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, day
			FROM checkins
			GROUP BY habit_id, day
			HAVING COUNT(*) > 1
		) AS dups
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate check-ins: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d habit+day combinations with duplicate check-ins", duplicateCount)
	}
	return nil
}

func checkDayFormats(ctx *cli.Context) error {
	// PostgreSQL stores day as DATE
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok || s.GetDB() == nil {
		return nil
	}

	var invalidCount int
	err := s.GetDB().QueryRow(`SELECT COUNT(*) FROM checkins WHERE day NOT GLOB ?`, dayGlob).Scan(&invalidCount)
	if err != nil {
		return fmt.Errorf("failed to check check-in days: %w", err)
	}
	if invalidCount > 0 {
		return fmt.Errorf("found %d check-ins with invalid day format", invalidCount)
	}
	return nil
}

// checkTimestampIntegrity finds rows that the day window filters would
// misplace. PostgreSQL columns are typed and always pass.
func checkTimestampIntegrity(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok || s.GetDB() == nil {
		return nil
	}
	db := s.GetDB()

	var badCheckins, badHabits int
	err := db.QueryRow(`SELECT COUNT(*) FROM checkins WHERE completed_at NOT GLOB ?`, canonicalTimestampGlob).Scan(&badCheckins)
	if err != nil {
		return fmt.Errorf("failed to check check-in timestamps: %w", err)
	}
	err = db.QueryRow(`SELECT COUNT(*) FROM habits WHERE created_at NOT GLOB ?`, canonicalTimestampGlob).Scan(&badHabits)
	if err != nil {
		return fmt.Errorf("failed to check habit timestamps: %w", err)
	}

	if badCheckins > 0 || badHabits > 0 {
		return fmt.Errorf("found %d check-ins and %d habits with non-canonical timestamps (expected UTC like 2006-01-02T15:04:05.000000000Z)", badCheckins, badHabits)
	}
	return nil
}
