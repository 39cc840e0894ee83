package models

import "time"

// Habit represents a protocol the user tracks for daily completion
type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckIn marks a habit as completed at a specific moment
type CheckIn struct {
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
}
