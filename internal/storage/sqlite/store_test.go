package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "momentum.db"), testLoc)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addHabit(t *testing.T, store *Store, id, name string, createdAt time.Time) {
	t.Helper()
	if err := store.AddHabit(context.Background(), models.Habit{ID: id, Name: name, CreatedAt: createdAt}); err != nil {
		t.Fatalf("failed to add habit %s: %v", id, err)
	}
}

func sortedIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"), nil)
	if err := store.Load(); err == nil {
		t.Error("Load() on a missing database should fail")
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "momentum.db")
	store := NewStore(path, testLoc)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	reopened := NewStore(path, testLoc)
	defer reopened.Close()
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load after Init failed: %v", err)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", reopened.GetConfigPath(), path)
	}
}

func TestListHabitsEmpty(t *testing.T) {
	store := setupTestStore(t)

	habits, err := store.ListHabits(context.Background())
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", habits)
	}
}

func TestListHabitsOrderedByCreatedAt(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, testLoc)

	// Inserted out of order, across zones
	addHabit(t, store, "c", "Journal", base.Add(48*time.Hour))
	addHabit(t, store, "a", "Meditate", base.In(time.UTC))
	addHabit(t, store, "b", "Read", base.Add(90*time.Minute))

	habits, err := store.ListHabits(context.Background())
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(habits) != len(want) {
		t.Fatalf("expected %d habits, got %d", len(want), len(habits))
	}
	for i, h := range habits {
		if h.ID != want[i] {
			t.Errorf("habit %d = %s, want %s", i, h.ID, want[i])
		}
		if i > 0 && h.CreatedAt.Before(habits[i-1].CreatedAt) {
			t.Errorf("habit %d created before habit %d", i, i-1)
		}
	}
	if !habits[0].CreatedAt.Equal(base) {
		t.Errorf("created_at round trip = %v, want %v", habits[0].CreatedAt, base)
	}
}

func TestAddHabitEmptyName(t *testing.T) {
	store := setupTestStore(t)
	err := store.AddHabit(context.Background(), models.Habit{ID: "x", Name: "  "})
	if !errors.IsRemote(err) {
		t.Errorf("expected RemoteError, got %v", err)
	}
}

func TestListTodayCheckinHabitIDsWindow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	day := "2026-10-14"

	addHabit(t, store, "start", "Start", time.Now())
	addHabit(t, store, "end", "End", time.Now())
	addHabit(t, store, "before", "Before", time.Now())
	addHabit(t, store, "after", "After", time.Now())
	addHabit(t, store, "late", "Late", time.Now())

	checkins := map[string]time.Time{
		"start":  time.Date(2026, 10, 14, 0, 0, 0, 0, testLoc),
		"end":    time.Date(2026, 10, 14, 23, 59, 59, 0, testLoc),
		"before": time.Date(2026, 10, 13, 23, 59, 59, 0, testLoc),
		"after":  time.Date(2026, 10, 15, 0, 0, 0, 0, testLoc),
		"late":   time.Date(2026, 10, 14, 23, 59, 59, 500_000_000, testLoc),
	}
	for id, at := range checkins {
		if err := store.InsertCheckin(ctx, id, at); err != nil {
			t.Fatalf("InsertCheckin(%s) failed: %v", id, err)
		}
	}

	ids, err := store.ListTodayCheckinHabitIDs(ctx, day)
	if err != nil {
		t.Fatalf("ListTodayCheckinHabitIDs failed: %v", err)
	}

	got := sortedIDs(ids)
	want := []string{"end", "start"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ListTodayCheckinHabitIDs(%s) = %v, want %v", day, got, want)
	}
}

func TestListTodayCheckinHabitIDsInvalidDay(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.ListTodayCheckinHabitIDs(context.Background(), "not-a-day")
	if !errors.IsRemote(err) {
		t.Errorf("expected RemoteError, got %v", err)
	}
}

func TestInsertCheckinOnePerDay(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	addHabit(t, store, "1", "Meditate", time.Now())

	first := time.Date(2026, 10, 14, 7, 0, 0, 0, testLoc)
	second := first.Add(3 * time.Hour)
	for _, at := range []time.Time{first, second} {
		if err := store.InsertCheckin(ctx, "1", at); err != nil {
			t.Fatalf("InsertCheckin failed: %v", err)
		}
	}

	var count int
	if err := store.db.QueryRow("SELECT count(*) FROM checkins WHERE habit_id = ?", "1").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 check-in row for the day, got %d", count)
	}

	// A different local day is a separate row
	if err := store.InsertCheckin(ctx, "1", first.Add(24*time.Hour)); err != nil {
		t.Fatalf("InsertCheckin failed: %v", err)
	}
	if err := store.db.QueryRow("SELECT count(*) FROM checkins WHERE habit_id = ?", "1").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 check-in rows across days, got %d", count)
	}
}

func TestInsertCheckinUnknownHabit(t *testing.T) {
	store := setupTestStore(t)
	err := store.InsertCheckin(context.Background(), "ghost", time.Now())
	if !errors.IsRemote(err) {
		t.Errorf("expected RemoteError for unknown habit, got %v", err)
	}
}

func TestDeleteTodayCheckins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	day := "2026-10-14"

	addHabit(t, store, "1", "Meditate", time.Now())
	addHabit(t, store, "2", "Read", time.Now())

	today := time.Date(2026, 10, 14, 12, 0, 0, 0, testLoc)
	yesterday := today.Add(-24 * time.Hour)
	for _, c := range []struct {
		id string
		at time.Time
	}{{"1", today}, {"1", yesterday}, {"2", today}} {
		if err := store.InsertCheckin(ctx, c.id, c.at); err != nil {
			t.Fatalf("InsertCheckin failed: %v", err)
		}
	}

	if err := store.DeleteTodayCheckins(ctx, "1", day); err != nil {
		t.Fatalf("DeleteTodayCheckins failed: %v", err)
	}

	ids, err := store.ListTodayCheckinHabitIDs(ctx, day)
	if err != nil {
		t.Fatalf("ListTodayCheckinHabitIDs failed: %v", err)
	}
	if got := sortedIDs(ids); len(got) != 1 || got[0] != "2" {
		t.Errorf("after delete got %v, want [2]", got)
	}

	prev, err := store.ListTodayCheckinHabitIDs(ctx, "2026-10-13")
	if err != nil {
		t.Fatalf("ListTodayCheckinHabitIDs failed: %v", err)
	}
	if _, ok := prev["1"]; !ok {
		t.Error("delete removed a check-in outside the day window")
	}

	// Deleting when nothing matches is not an error
	if err := store.DeleteTodayCheckins(ctx, "1", day); err != nil {
		t.Errorf("second DeleteTodayCheckins failed: %v", err)
	}
}

func TestClosedStoreReturnsRemoteError(t *testing.T) {
	store := setupTestStore(t)
	store.Close()
	ctx := context.Background()

	if _, err := store.ListHabits(ctx); !errors.IsRemote(err) {
		t.Errorf("ListHabits: expected RemoteError, got %v", err)
	}
	if _, err := store.ListTodayCheckinHabitIDs(ctx, "2026-10-14"); !errors.IsRemote(err) {
		t.Errorf("ListTodayCheckinHabitIDs: expected RemoteError, got %v", err)
	}
	if err := store.InsertCheckin(ctx, "1", time.Now()); !errors.IsRemote(err) {
		t.Errorf("InsertCheckin: expected RemoteError, got %v", err)
	}
	if err := store.DeleteTodayCheckins(ctx, "1", "2026-10-14"); !errors.IsRemote(err) {
		t.Errorf("DeleteTodayCheckins: expected RemoteError, got %v", err)
	}
}

func TestParseTimestampStrict(t *testing.T) {
	for _, v := range []string{
		"2026-10-14T08:30:00+02:00",
		"2026-10-14T23:59:59Z",
		"2026-10-14 23:59:59",
	} {
		if _, err := parseTimestamp(v); err == nil {
			t.Errorf("parseTimestamp(%q) expected error, got nil", v)
		}
	}

	want := time.Date(2026, 10, 14, 23, 59, 59, 0, time.UTC)
	got, err := parseTimestamp(formatTimestamp(want))
	if err != nil {
		t.Fatalf("parseTimestamp failed: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("parseTimestamp() = %v, want %v", got, want)
	}
}

func TestListHabitsRejectsNonCanonicalTimestamp(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	addHabit(t, store, "1", "Meditate", time.Now())

	if _, err := store.GetDB().Exec(`UPDATE habits SET created_at = ?`, "2026-10-14T08:30:00+02:00"); err != nil {
		t.Fatalf("failed to rewrite created_at: %v", err)
	}

	_, err := store.ListHabits(ctx)
	if !errors.IsRemote(err) {
		t.Errorf("expected RemoteError for non-canonical created_at, got %v", err)
	}
}
