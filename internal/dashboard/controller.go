// Package dashboard holds the local projection of today's protocols and the
// optimistic check-in toggle.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

// State is a habit's completion state for the controller's day
type State int

const (
	Pending State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return constants.StatusExecuted
	}
	return constants.StatusPending
}

// Change is one optimistic transition recorded by Apply
type Change struct {
	HabitID string
	WasDone bool
}

// Target is the state the change moves the habit to
func (c Change) Target() State {
	if c.WasDone {
		return Pending
	}
	return Done
}

func (c Change) alertPrefix() string {
	if c.WasDone {
		return constants.AlertDeleteFailed
	}
	return constants.AlertInsertFailed
}

// Alert is the user-facing text for a failed persist of c
func (c Change) Alert(err error) string {
	return c.alertPrefix() + err.Error()
}

// AlertError wraps err so that its message is the Alert text
func (c Change) AlertError(err error) error {
	return fmt.Errorf("%s%w", c.alertPrefix(), err)
}

// Option configures a ToggleController
type Option func(*ToggleController)

// WithClock overrides the source of check-in timestamps
func WithClock(now func() time.Time) Option {
	return func(c *ToggleController) {
		c.now = now
	}
}

// ToggleController owns the set of habits done on one day. Local state changes
// happen under a mutex that is never held across a store call, so overlapping
// toggles of the same habit are not serialized and may race.
type ToggleController struct {
	store storage.HabitStore
	day   string
	now   func() time.Time

	mu     sync.RWMutex
	habits []models.Habit
	done   map[string]struct{}
	status string
}

// NewToggleController binds store to a single day key, used for both the
// check-in query and the delete filter.
func NewToggleController(store storage.HabitStore, day string, opts ...Option) *ToggleController {
	c := &ToggleController{
		store:  store,
		day:    day,
		now:    time.Now,
		done:   make(map[string]struct{}),
		status: constants.StatusLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ToggleController) Day() string {
	return c.day
}

// Load replaces the habit list and the done set from the store. A habit
// failure becomes the persistent status and is returned; a check-in failure
// is logged and the previous done set is kept.
func (c *ToggleController) Load(ctx context.Context) error {
	c.setStatus(constants.StatusLoading)

	habits, err := c.store.ListHabits(ctx)
	if err != nil {
		err = errors.Remote("list habits", err)
		logger.Error("Failed to load habits", "error", err)
		c.setStatus(constants.StatusErrPrefix + err.Error())
		// The done set is independent of the habit list
		c.loadCheckins(ctx)
		return err
	}

	c.mu.Lock()
	c.habits = habits
	if len(habits) > 0 {
		c.status = ""
	} else {
		c.status = constants.StatusNoHabits
	}
	c.mu.Unlock()

	c.loadCheckins(ctx)
	return nil
}

// loadCheckins replaces the done set. Failures keep the previous set.
func (c *ToggleController) loadCheckins(ctx context.Context) {
	ids, err := c.store.ListTodayCheckinHabitIDs(ctx, c.day)
	if err != nil {
		logger.Warn("Failed to load today's check-ins", "day", c.day, "error", err)
		return
	}

	c.mu.Lock()
	c.done = ids
	c.mu.Unlock()
}

// Refresh reloads with the same day key
func (c *ToggleController) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// Apply flips habitID in the local set immediately and returns the change
// for Persist.
func (c *ToggleController) Apply(habitID string) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, wasDone := c.done[habitID]
	if wasDone {
		delete(c.done, habitID)
	} else {
		c.done[habitID] = struct{}{}
	}
	return Change{HabitID: habitID, WasDone: wasDone}
}

// Persist writes change to the store. On failure the habit's membership is
// restored to what it was before Apply and the RemoteError is returned.
func (c *ToggleController) Persist(ctx context.Context, change Change) error {
	var err error
	if change.WasDone {
		err = c.store.DeleteTodayCheckins(ctx, change.HabitID, c.day)
	} else {
		err = c.store.InsertCheckin(ctx, change.HabitID, c.now())
	}
	if err == nil {
		logger.Debug("Check-in persisted", "habit", change.HabitID, "state", change.Target())
		return nil
	}

	c.revert(change)
	err = errors.Remote("toggle", err)
	logger.Warn("Toggle failed, reverted", "habit", change.HabitID, "error", err)
	return err
}

func (c *ToggleController) revert(change Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if change.WasDone {
		c.done[change.HabitID] = struct{}{}
	} else {
		delete(c.done, change.HabitID)
	}
}

// Toggle is Apply followed by Persist
func (c *ToggleController) Toggle(ctx context.Context, habitID string) error {
	return c.Persist(ctx, c.Apply(habitID))
}

func (c *ToggleController) IsDone(habitID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.done[habitID]
	return ok
}

func (c *ToggleController) State(habitID string) State {
	if c.IsDone(habitID) {
		return Done
	}
	return Pending
}

// DoneIDs returns the done set, sorted
func (c *ToggleController) DoneIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.done))
	for id := range c.done {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *ToggleController) Habits() []models.Habit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Habit(nil), c.habits...)
}

func (c *ToggleController) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *ToggleController) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Momentum is the rounded percentage of listed habits that are done
func (c *ToggleController) Momentum() int {
	return c.Snapshot().Momentum
}

// Item is one habit with its current state
type Item struct {
	Habit models.Habit
	State State
}

// Snapshot is a consistent view of the controller for rendering
type Snapshot struct {
	Day       string
	Items     []Item
	Completed int
	Total     int
	Momentum  int
	Status    string
}

func (c *ToggleController) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Day:    c.day,
		Items:  make([]Item, len(c.habits)),
		Total:  len(c.habits),
		Status: c.status,
	}
	for i, h := range c.habits {
		state := Pending
		if _, ok := c.done[h.ID]; ok {
			state = Done
			snap.Completed++
		}
		snap.Items[i] = Item{Habit: h, State: state}
	}
	snap.Momentum = momentum(snap.Completed, snap.Total)
	return snap
}

func momentum(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
