package models

import "time"

// The update structs below carry partial mutations to the remote store. A nil
// pointer field is left untouched by the update; UpdatedAt is always stamped
// by the caller before the write is issued.

// MindfulnessActivityUpdate is a partial update to a mindfulness activity.
type MindfulnessActivityUpdate struct {
	Name          *string
	Activity      *string
	Alarm         *string
	Timer         *int
	IsCompleted   *bool
	IsTarget      *bool
	IsRunning     *bool
	TimeRemaining *int
	UpdatedAt     time.Time
}

// EntryUpdate is a partial update to a journal entry or a positive thought.
// ClearDeletedDate unsets DeletedDate, which a nil pointer cannot express;
// it is how a restore returns the row to its undeleted shape.
type EntryUpdate struct {
	Title            *string
	Content          *string
	Date             *string
	IsDeleted        *bool
	DeletedDate      *string
	ClearDeletedDate bool
	UpdatedAt        time.Time
}

// GoalUpdate is a partial update to a goal.
type GoalUpdate struct {
	Name        *string
	Category    *string
	Deadline    *string
	RecordDate  *string
	IsCompleted *bool
	UpdatedAt   time.Time
}

// HabitUpdate is a partial update to a habit.
type HabitUpdate struct {
	Name           *string
	Time           *string
	IsCompleted    *bool
	CompletedDates *[]string
	UpdatedAt      time.Time
}

// ResourceUpdate is a partial update to a resource.
type ResourceUpdate struct {
	Title     *string
	Type      *string
	Content   *string
	Category  *string
	UpdatedAt time.Time
}
