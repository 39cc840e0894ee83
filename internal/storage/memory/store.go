// Package memory is an in-process HabitStore with failure injection and call
// gating, for exercising the dashboard without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/utils"
)

// Op names a store operation for failure injection and gating
type Op string

const (
	OpListHabits     Op = "list habits"
	OpAddHabit       Op = "add habit"
	OpListCheckins   Op = "list checkins"
	OpInsertCheckin  Op = "insert checkin"
	OpDeleteCheckins Op = "delete checkins"
)

// Gate holds the next call of an operation until Release is called.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered is signalled once the held call has arrived at the store
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets the held call continue
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

type Store struct {
	loc *time.Location

	mu       sync.Mutex
	habits   []models.Habit
	checkins []models.CheckIn
	failures map[Op]string
	gates    map[Op]*Gate
	calls    map[Op]int
}

func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		loc:      loc,
		failures: make(map[Op]string),
		gates:    make(map[Op]*Gate),
		calls:    make(map[Op]int),
	}
}

// Fail makes every call to op return a RemoteError with message until Recover
func (s *Store) Fail(op Op, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = message
}

func (s *Store) Recover(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, op)
}

// Hold blocks the next call to op until the returned gate is released.
// Failures are evaluated after release.
func (s *Store) Hold(op Op) *Gate {
	g := &Gate{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s.mu.Lock()
	s.gates[op] = g
	s.mu.Unlock()
	return g
}

// Calls returns how many times op has been invoked
func (s *Store) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// CheckIns returns a copy of the stored check-ins
func (s *Store) CheckIns() []models.CheckIn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CheckIn(nil), s.checkins...)
}

func (s *Store) enter(ctx context.Context, op Op) error {
	s.mu.Lock()
	s.calls[op]++
	g := s.gates[op]
	delete(s.gates, op)
	s.mu.Unlock()

	if g != nil {
		g.entered <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return errors.Remote(string(op), ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.failures[op]; ok {
		return errors.Remotef(string(op), "%s", msg)
	}
	return nil
}

// Lifecycle is a no-op in memory
func (s *Store) Init() error           { return nil }
func (s *Store) Load() error           { return nil }
func (s *Store) Migrate() (int, error) { return 0, nil }
func (s *Store) Close() error          { return nil }
func (s *Store) GetConfigPath() string { return "memory" }

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	if err := s.enter(ctx, OpAddHabit); err != nil {
		return err
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.ID == habit.ID {
			return errors.Remotef(string(OpAddHabit), "habit %s already exists", habit.ID)
		}
	}
	s.habits = append(s.habits, habit)
	return nil
}

func (s *Store) ListHabits(ctx context.Context) ([]models.Habit, error) {
	if err := s.enter(ctx, OpListHabits); err != nil {
		return nil, err
	}

	s.mu.Lock()
	habits := append([]models.Habit{}, s.habits...)
	s.mu.Unlock()

	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (s *Store) ListTodayCheckinHabitIDs(ctx context.Context, day string) (map[string]struct{}, error) {
	if err := s.enter(ctx, OpListCheckins); err != nil {
		return nil, err
	}
	start, end, err := utils.DayWindow(day, s.loc)
	if err != nil {
		return nil, errors.Remote(string(OpListCheckins), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{})
	for _, c := range s.checkins {
		if utils.InWindow(c.CompletedAt, start, end) {
			ids[c.HabitID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *Store) InsertCheckin(ctx context.Context, habitID string, at time.Time) error {
	if err := s.enter(ctx, OpInsertCheckin); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	day := at.In(s.loc).Format(constants.DateFormat)
	for _, c := range s.checkins {
		if c.HabitID == habitID && c.CompletedAt.In(s.loc).Format(constants.DateFormat) == day {
			return nil
		}
	}
	s.checkins = append(s.checkins, models.CheckIn{HabitID: habitID, CompletedAt: at})
	return nil
}

func (s *Store) DeleteTodayCheckins(ctx context.Context, habitID, day string) error {
	if err := s.enter(ctx, OpDeleteCheckins); err != nil {
		return err
	}
	start, end, err := utils.DayWindow(day, s.loc)
	if err != nil {
		return errors.Remote(string(OpDeleteCheckins), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.checkins[:0]
	for _, c := range s.checkins {
		if c.HabitID == habitID && utils.InWindow(c.CompletedAt, start, end) {
			continue
		}
		kept = append(kept, c)
	}
	s.checkins = kept
	return nil
}
