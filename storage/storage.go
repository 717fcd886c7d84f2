package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mindhaven/mindhaven/models"
)

// ErrNotFound is returned when a filtered read or mutation matches no row
// owned by the given user.
var ErrNotFound = errors.New("no matching row found")

// StoreInterface defines the set of methods the remote table store needs to
// implement. Every read and mutation is scoped to exactly one owning user id;
// mutations by id are additionally filtered by that id, so a row belonging to
// another user can never be read or changed through this interface.
type StoreInterface interface {
	// Establishes a connection to the storage backend.
	Connect(dbName, uri string) error
	// Disconnects from the storage backend.
	Disconnect() error

	// Adds a new account row to the storage backend.
	AddUser(ctx context.Context, user *models.User) (*models.User, error)
	// Finds an account row by email. Returns ErrNotFound if absent.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// Finds an account row by id. Returns ErrNotFound if absent.
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	// Replaces the password hash of an account row.
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// Finds the profile row for a user. Returns (nil, nil) when the user has
	// no profile yet; an error is reported only for a failed query.
	FindProfile(ctx context.Context, userID string) (*models.Profile, error)
	// Inserts or replaces the profile row keyed by the user id and returns
	// the confirmed row.
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// Lists a user's mood entries, most recent date first.
	ListMoodEntries(ctx context.Context, userID string) ([]models.MoodEntry, error)
	// Adds a mood entry and returns the confirmed row.
	AddMoodEntry(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error)

	// Lists a user's mindfulness activities, most recently created first.
	ListMindfulnessActivities(ctx context.Context, userID string) ([]models.MindfulnessActivity, error)
	// Adds a batch of mindfulness activities and returns the confirmed rows.
	AddMindfulnessActivities(ctx context.Context, activities []models.MindfulnessActivity) ([]models.MindfulnessActivity, error)
	// Applies a partial update to one activity and returns the confirmed row.
	UpdateMindfulnessActivity(ctx context.Context, id, userID string, update models.MindfulnessActivityUpdate) (*models.MindfulnessActivity, error)

	// Lists a user's journal entries, most recent date first.
	ListJournalEntries(ctx context.Context, userID string) ([]models.JournalEntry, error)
	// Adds a journal entry and returns the confirmed row.
	AddJournalEntry(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error)
	// Applies a partial update to one journal entry and returns the confirmed
	// row. Soft deletion and restoration both travel through here.
	UpdateJournalEntry(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.JournalEntry, error)
	// Permanently deletes the journal entries with the given ids.
	DeleteJournalEntries(ctx context.Context, userID string, ids []string) error

	// Lists a user's positive thoughts, most recent date first.
	ListPositiveThoughts(ctx context.Context, userID string) ([]models.PositiveThought, error)
	// Adds a positive thought and returns the confirmed row.
	AddPositiveThought(ctx context.Context, thought *models.PositiveThought) (*models.PositiveThought, error)
	// Applies a partial update to one positive thought and returns the
	// confirmed row.
	UpdatePositiveThought(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.PositiveThought, error)
	// Permanently deletes the positive thoughts with the given ids.
	DeletePositiveThoughts(ctx context.Context, userID string, ids []string) error

	// Lists a user's goals, most recently created first.
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	// Adds a goal and returns the confirmed row.
	AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	// Applies a partial update to one goal and returns the confirmed row.
	UpdateGoal(ctx context.Context, id, userID string, update models.GoalUpdate) (*models.Goal, error)
	// Permanently deletes one goal.
	DeleteGoal(ctx context.Context, id, userID string) error

	// Lists a user's habits, most recently created first.
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	// Adds a habit and returns the confirmed row.
	AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	// Applies a partial update to one habit and returns the confirmed row.
	UpdateHabit(ctx context.Context, id, userID string, update models.HabitUpdate) (*models.Habit, error)
	// Permanently deletes one habit.
	DeleteHabit(ctx context.Context, id, userID string) error

	// Lists a user's resources, most recently created first.
	ListResources(ctx context.Context, userID string) ([]models.Resource, error)
	// Adds a resource and returns the confirmed row.
	AddResource(ctx context.Context, resource *models.Resource) (*models.Resource, error)
	// Adds a batch of resources and returns the confirmed rows.
	AddResources(ctx context.Context, resources []models.Resource) ([]models.Resource, error)
	// Applies a partial update to one resource and returns the confirmed row.
	UpdateResource(ctx context.Context, id, userID string, update models.ResourceUpdate) (*models.Resource, error)
	// Permanently deletes one resource.
	DeleteResource(ctx context.Context, id, userID string) error
}

// NewStorage creates a new StoreInterface with a MongoDB backend,
// using the provided URI to connect to the MongoDB server.
func NewStorage(dbName, uri string) (StoreInterface, error) {
	store := NewMongoStorage()
	err := store.Connect(dbName, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
