package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/utils"
)

const (
	opListHabits     = "list habits"
	opAddHabit       = "add habit"
	opListCheckins   = "list checkins"
	opInsertCheckin  = "insert checkin"
	opDeleteCheckins = "delete checkins"
)

func (s *Store) conn(op string) (*sql.DB, error) {
	if s.db == nil {
		return nil, errors.Remotef(op, "storage not loaded")
	}
	return s.db, nil
}

func (s *Store) ListHabits(ctx context.Context) ([]models.Habit, error) {
	db, err := s.conn(opListHabits)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM habits
		ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Remote(opListHabits, err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			return nil, errors.Remote(opListHabits, err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Remote(opListHabits, err)
	}

	return habits, nil
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	db, err := s.conn(opAddHabit)
	if err != nil {
		return err
	}
	if strings.TrimSpace(habit.Name) == "" {
		return errors.Remotef(opAddHabit, "habit name cannot be empty")
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now()
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO habits (id, name, created_at) VALUES ($1, $2, $3)`,
		habit.ID, habit.Name, habit.CreatedAt)
	return errors.Remote(opAddHabit, err)
}

func (s *Store) ListTodayCheckinHabitIDs(ctx context.Context, day string) (map[string]struct{}, error) {
	db, err := s.conn(opListCheckins)
	if err != nil {
		return nil, err
	}
	start, end, err := utils.DayWindow(day, s.loc)
	if err != nil {
		return nil, errors.Remote(opListCheckins, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT habit_id
		FROM checkins
		WHERE completed_at >= $1 AND completed_at <= $2`, start, end)
	if err != nil {
		return nil, errors.Remote(opListCheckins, err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Remote(opListCheckins, err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Remote(opListCheckins, err)
	}

	return ids, nil
}

// InsertCheckin is an upsert on (habit_id, day): a second completion on the
// same local day keeps the first row.
func (s *Store) InsertCheckin(ctx context.Context, habitID string, at time.Time) error {
	db, err := s.conn(opInsertCheckin)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO checkins (habit_id, completed_at, day) VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, day) DO NOTHING`,
		habitID, at, at.In(s.loc).Format(constants.DateFormat))
	return errors.Remote(opInsertCheckin, err)
}

func (s *Store) DeleteTodayCheckins(ctx context.Context, habitID, day string) error {
	db, err := s.conn(opDeleteCheckins)
	if err != nil {
		return err
	}
	start, end, err := utils.DayWindow(day, s.loc)
	if err != nil {
		return errors.Remote(opDeleteCheckins, err)
	}

	_, err = db.ExecContext(ctx, `
		DELETE FROM checkins
		WHERE habit_id = $1 AND completed_at >= $2 AND completed_at <= $3`,
		habitID, start, end)
	return errors.Remote(opDeleteCheckins, err)
}
