package models

import (
	"time"
)

// Session is proof of an authenticated identity. It is created on a successful
// credential exchange, destroyed on sign-out, and the auth service is its sole
// source of truth.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// User is an account row in the auth backend. It is owned by the auth service
// and never surfaces past it.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Profile is the per-user personalization row, distinct from the Session.
// It is created exactly once per user and only ever mutated via upsert.
type Profile struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name,omitempty" json:"name,omitempty"`
	DateOfBirth string    `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Country     string    `bson:"country,omitempty" json:"country,omitempty"`
	Language    string    `bson:"language,omitempty" json:"language,omitempty"`
	Timezone    string    `bson:"timezone,omitempty" json:"timezone,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// MoodEntry records the moods logged for one calendar day. One entry per user
// per day is a convention, not an enforced constraint. Ratings run 1 to 7,
// keyed by mood range id. Entries are append-only.
type MoodEntry struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	UserID    string         `bson:"user_id" json:"user_id"`
	Date      string         `bson:"date" json:"date"`
	Moods     map[string]int `bson:"moods" json:"moods"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

// MindfulnessActivity is a timed practice session. TimeRemaining counts down
// once per second while IsRunning; reaching zero completes the activity and
// resets TimeRemaining to Timer*60.
type MindfulnessActivity struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	Name          string    `bson:"name" json:"name"`
	Activity      string    `bson:"activity" json:"activity"`
	Alarm         string    `bson:"alarm" json:"alarm"`
	Timer         int       `bson:"timer" json:"timer"`
	IsCompleted   bool      `bson:"is_completed" json:"is_completed"`
	IsTarget      bool      `bson:"is_target" json:"is_target"`
	IsRunning     bool      `bson:"is_running" json:"is_running"`
	TimeRemaining int       `bson:"time_remaining" json:"time_remaining"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// JournalEntry is a dated rich-text entry. Content is stored and returned as
// an opaque string. Deletion is soft: IsDeleted plus DeletedDate, reversible
// until the recycle bin is emptied.
type JournalEntry struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	Date        string    `bson:"date" json:"date"`
	IsDeleted   bool      `bson:"is_deleted" json:"is_deleted"`
	DeletedDate string    `bson:"deleted_date,omitempty" json:"deleted_date,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// PositiveThought has the same shape and soft-delete lifecycle as a journal
// entry but lives in its own collection.
type PositiveThought struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	Date        string    `bson:"date" json:"date"`
	IsDeleted   bool      `bson:"is_deleted" json:"is_deleted"`
	DeletedDate string    `bson:"deleted_date,omitempty" json:"deleted_date,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Goal categories.
const (
	GoalCategoryDaily   = "Daily"
	GoalCategoryWeekly  = "Weekly"
	GoalCategoryMonthly = "Monthly"
	GoalCategoryYearly  = "Yearly"
)

// Goal is a hard-deletable target with an optional deadline.
type Goal struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Name        string    `bson:"name" json:"name"`
	Category    string    `bson:"category" json:"category"`
	Deadline    string    `bson:"deadline,omitempty" json:"deadline,omitempty"`
	RecordDate  string    `bson:"record_date" json:"record_date"`
	IsCompleted bool      `bson:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Habit is a daily self-care item. CompletedDates grows monotonically except
// when a toggle removes today's date.
type Habit struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	Name           string    `bson:"name" json:"name"`
	Time           string    `bson:"time" json:"time"`
	IsCompleted    bool      `bson:"is_completed" json:"is_completed"`
	CompletedDates []string  `bson:"completed_dates" json:"completed_dates"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// Resource types and categories.
const (
	ResourceTypeLink     = "link"
	ResourceTypeText     = "text"
	ResourceTypeImage    = "image"
	ResourceTypeDocument = "document"

	ResourceCategoryHealthcare = "healthcare"
	ResourceCategoryEmergency  = "emergency"
	ResourceCategoryMusic      = "music"
	ResourceCategoryHobbies    = "hobbies"
)

// Resource is an item in the self-help library. Defaults are seeded once when
// the user's profile is first created.
type Resource struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Type      string    `bson:"type" json:"type"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category" json:"category"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Bin entry kinds.
const (
	BinKindJournal = "journal"
	BinKindThought = "thought"
)

// BinEntry is one soft-deleted row as surfaced by the recycle bin, projected
// from either a journal entry or a positive thought.
type BinEntry struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Date        string `json:"date"`
	DeletedDate string `json:"deleted_date"`
}
