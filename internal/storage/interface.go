package storage

import (
	"context"
	"time"

	"github.com/julianstephens/momentum/internal/models"
)

// HabitStore is the backend the dashboard reads from and writes to. Every
// backend failure is reported as an *errors.RemoteError.
type HabitStore interface {
	// ListHabits returns all habits ordered by created_at ascending.
	ListHabits(ctx context.Context) ([]models.Habit, error)
	// ListTodayCheckinHabitIDs returns the distinct habit ids with a check-in
	// inside the day window of day (YYYY-MM-DD).
	ListTodayCheckinHabitIDs(ctx context.Context, day string) (map[string]struct{}, error)
	// InsertCheckin records a completion of habitID at the given instant.
	InsertCheckin(ctx context.Context, habitID string, at time.Time) error
	// DeleteTodayCheckins removes every check-in of habitID inside the day window.
	DeleteTodayCheckins(ctx context.Context, habitID, day string) error
}

// Provider is a HabitStore with lifecycle and admin operations
type Provider interface {
	HabitStore

	// Lifecycle
	Init() error
	Load() error
	Migrate() (int, error)
	Close() error

	// Habits are created outside the dashboard; this is the seeding path.
	AddHabit(ctx context.Context, habit models.Habit) error

	// Utils
	GetConfigPath() string
}
