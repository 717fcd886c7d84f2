package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/storage"
)

// MemoryStore is an in-memory storage.StoreInterface for tests. It mimics
// the remote store's observable behavior: server-assigned ids and
// timestamps, per-user row scoping, list ordering, and ErrNotFound on misses.
// FailOn injects an error into a named operation so tests can exercise the
// failure paths of write-then-confirm callers.
type MemoryStore struct {
	mu sync.Mutex

	users                 []models.User
	profiles              map[string]models.Profile
	moodEntries           []models.MoodEntry
	mindfulnessActivities []models.MindfulnessActivity
	journalEntries        []models.JournalEntry
	positiveThoughts      []models.PositiveThought
	goals                 []models.Goal
	habits                []models.Habit
	resources             []models.Resource

	// FailOn maps an operation name, e.g. "AddGoal", to the error that
	// operation should return instead of running.
	FailOn map[string]error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.Profile),
		FailOn:   make(map[string]error),
	}
}

func (m *MemoryStore) failure(op string) error {
	return m.FailOn[op]
}

// Connect is a no-op.
func (m *MemoryStore) Connect(dbName, uri string) error { return nil }

// Disconnect is a no-op.
func (m *MemoryStore) Disconnect() error { return nil }

// AddUser adds an account row, assigning an id and creation time.
func (m *MemoryStore) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := m.failure("AddUser"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	m.users = append(m.users, stored)
	return &stored, nil
}

// FindUserByEmail finds an account row by email.
func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := m.failure("FindUserByEmail"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindUserByID finds an account row by id.
func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := m.failure("FindUserByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, storage.ErrNotFound
}

// UpdateUserPassword replaces an account row's password hash.
func (m *MemoryStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	if err := m.failure("UpdateUserPassword"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return storage.ErrNotFound
}

// FindProfile returns the profile row for a user, or (nil, nil) when absent.
func (m *MemoryStore) FindProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if err := m.failure("FindProfile"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// UpsertProfile inserts or replaces the profile row keyed by the user id.
func (m *MemoryStore) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := m.failure("UpsertProfile"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *profile
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.profiles[stored.ID] = stored
	return &stored, nil
}

// ListMoodEntries lists a user's mood entries, most recent date first.
func (m *MemoryStore) ListMoodEntries(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	if err := m.failure("ListMoodEntries"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.MoodEntry
	for _, e := range m.moodEntries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// AddMoodEntry adds a mood entry, assigning an id and creation time.
func (m *MemoryStore) AddMoodEntry(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	if err := m.failure("AddMoodEntry"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *entry
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	m.moodEntries = append(m.moodEntries, stored)
	return &stored, nil
}

// ListMindfulnessActivities lists a user's activities, most recently created
// first.
func (m *MemoryStore) ListMindfulnessActivities(ctx context.Context, userID string) ([]models.MindfulnessActivity, error) {
	if err := m.failure("ListMindfulnessActivities"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.MindfulnessActivity
	for _, a := range m.mindfulnessActivities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddMindfulnessActivities adds a batch of activities.
func (m *MemoryStore) AddMindfulnessActivities(ctx context.Context, activities []models.MindfulnessActivity) ([]models.MindfulnessActivity, error) {
	if err := m.failure("AddMindfulnessActivities"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.MindfulnessActivity, 0, len(activities))
	for _, a := range activities {
		stored := a
		stored.ID = uuid.NewString()
		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt
		m.mindfulnessActivities = append(m.mindfulnessActivities, stored)
		out = append(out, stored)
	}
	return out, nil
}

// UpdateMindfulnessActivity applies a partial update to one activity.
func (m *MemoryStore) UpdateMindfulnessActivity(ctx context.Context, id, userID string, update models.MindfulnessActivityUpdate) (*models.MindfulnessActivity, error) {
	if err := m.failure("UpdateMindfulnessActivity"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.mindfulnessActivities {
		a := &m.mindfulnessActivities[i]
		if a.ID != id || a.UserID != userID {
			continue
		}
		if update.Name != nil {
			a.Name = *update.Name
		}
		if update.Activity != nil {
			a.Activity = *update.Activity
		}
		if update.Alarm != nil {
			a.Alarm = *update.Alarm
		}
		if update.Timer != nil {
			a.Timer = *update.Timer
		}
		if update.IsCompleted != nil {
			a.IsCompleted = *update.IsCompleted
		}
		if update.IsTarget != nil {
			a.IsTarget = *update.IsTarget
		}
		if update.IsRunning != nil {
			a.IsRunning = *update.IsRunning
		}
		if update.TimeRemaining != nil {
			a.TimeRemaining = *update.TimeRemaining
		}
		a.UpdatedAt = update.UpdatedAt
		confirmed := *a
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// ListJournalEntries lists a user's journal entries, most recent date first.
func (m *MemoryStore) ListJournalEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	if err := m.failure("ListJournalEntries"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.JournalEntry
	for _, e := range m.journalEntries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// AddJournalEntry adds a journal entry.
func (m *MemoryStore) AddJournalEntry(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	if err := m.failure("AddJournalEntry"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *entry
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.journalEntries = append(m.journalEntries, stored)
	return &stored, nil
}

// UpdateJournalEntry applies a partial update to one journal entry.
func (m *MemoryStore) UpdateJournalEntry(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.JournalEntry, error) {
	if err := m.failure("UpdateJournalEntry"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.journalEntries {
		e := &m.journalEntries[i]
		if e.ID != id || e.UserID != userID {
			continue
		}
		if update.Title != nil {
			e.Title = *update.Title
		}
		if update.Content != nil {
			e.Content = *update.Content
		}
		if update.Date != nil {
			e.Date = *update.Date
		}
		if update.IsDeleted != nil {
			e.IsDeleted = *update.IsDeleted
		}
		if update.DeletedDate != nil {
			e.DeletedDate = *update.DeletedDate
		}
		if update.ClearDeletedDate {
			e.DeletedDate = ""
		}
		e.UpdatedAt = update.UpdatedAt
		confirmed := *e
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// DeleteJournalEntries permanently deletes the journal entries with the
// given ids.
func (m *MemoryStore) DeleteJournalEntries(ctx context.Context, userID string, ids []string) error {
	if err := m.failure("DeleteJournalEntries"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.journalEntries[:0]
	for _, e := range m.journalEntries {
		if !(e.UserID == userID && drop[e.ID]) {
			kept = append(kept, e)
		}
	}
	m.journalEntries = kept
	return nil
}

// ListPositiveThoughts lists a user's positive thoughts, most recent date
// first.
func (m *MemoryStore) ListPositiveThoughts(ctx context.Context, userID string) ([]models.PositiveThought, error) {
	if err := m.failure("ListPositiveThoughts"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.PositiveThought
	for _, t := range m.positiveThoughts {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// AddPositiveThought adds a positive thought.
func (m *MemoryStore) AddPositiveThought(ctx context.Context, thought *models.PositiveThought) (*models.PositiveThought, error) {
	if err := m.failure("AddPositiveThought"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *thought
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.positiveThoughts = append(m.positiveThoughts, stored)
	return &stored, nil
}

// UpdatePositiveThought applies a partial update to one positive thought.
func (m *MemoryStore) UpdatePositiveThought(ctx context.Context, id, userID string, update models.EntryUpdate) (*models.PositiveThought, error) {
	if err := m.failure("UpdatePositiveThought"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.positiveThoughts {
		t := &m.positiveThoughts[i]
		if t.ID != id || t.UserID != userID {
			continue
		}
		if update.Title != nil {
			t.Title = *update.Title
		}
		if update.Content != nil {
			t.Content = *update.Content
		}
		if update.Date != nil {
			t.Date = *update.Date
		}
		if update.IsDeleted != nil {
			t.IsDeleted = *update.IsDeleted
		}
		if update.DeletedDate != nil {
			t.DeletedDate = *update.DeletedDate
		}
		if update.ClearDeletedDate {
			t.DeletedDate = ""
		}
		t.UpdatedAt = update.UpdatedAt
		confirmed := *t
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// DeletePositiveThoughts permanently deletes the positive thoughts with the
// given ids.
func (m *MemoryStore) DeletePositiveThoughts(ctx context.Context, userID string, ids []string) error {
	if err := m.failure("DeletePositiveThoughts"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.positiveThoughts[:0]
	for _, t := range m.positiveThoughts {
		if !(t.UserID == userID && drop[t.ID]) {
			kept = append(kept, t)
		}
	}
	m.positiveThoughts = kept
	return nil
}

// ListGoals lists a user's goals, most recently created first.
func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	if err := m.failure("ListGoals"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddGoal adds a goal.
func (m *MemoryStore) AddGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if err := m.failure("AddGoal"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *goal
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.goals = append(m.goals, stored)
	return &stored, nil
}

// UpdateGoal applies a partial update to one goal.
func (m *MemoryStore) UpdateGoal(ctx context.Context, id, userID string, update models.GoalUpdate) (*models.Goal, error) {
	if err := m.failure("UpdateGoal"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.goals {
		g := &m.goals[i]
		if g.ID != id || g.UserID != userID {
			continue
		}
		if update.Name != nil {
			g.Name = *update.Name
		}
		if update.Category != nil {
			g.Category = *update.Category
		}
		if update.Deadline != nil {
			g.Deadline = *update.Deadline
		}
		if update.RecordDate != nil {
			g.RecordDate = *update.RecordDate
		}
		if update.IsCompleted != nil {
			g.IsCompleted = *update.IsCompleted
		}
		g.UpdatedAt = update.UpdatedAt
		confirmed := *g
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// DeleteGoal permanently deletes one goal.
func (m *MemoryStore) DeleteGoal(ctx context.Context, id, userID string) error {
	if err := m.failure("DeleteGoal"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.goals {
		if m.goals[i].ID == id && m.goals[i].UserID == userID {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListHabits lists a user's habits, most recently created first.
func (m *MemoryStore) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	if err := m.failure("ListHabits"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Habit
	for _, h := range m.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddHabit adds a habit.
func (m *MemoryStore) AddHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	if err := m.failure("AddHabit"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *habit
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.habits = append(m.habits, stored)
	return &stored, nil
}

// UpdateHabit applies a partial update to one habit.
func (m *MemoryStore) UpdateHabit(ctx context.Context, id, userID string, update models.HabitUpdate) (*models.Habit, error) {
	if err := m.failure("UpdateHabit"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.habits {
		h := &m.habits[i]
		if h.ID != id || h.UserID != userID {
			continue
		}
		if update.Name != nil {
			h.Name = *update.Name
		}
		if update.Time != nil {
			h.Time = *update.Time
		}
		if update.IsCompleted != nil {
			h.IsCompleted = *update.IsCompleted
		}
		if update.CompletedDates != nil {
			h.CompletedDates = append([]string(nil), (*update.CompletedDates)...)
		}
		h.UpdatedAt = update.UpdatedAt
		confirmed := *h
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// DeleteHabit permanently deletes one habit.
func (m *MemoryStore) DeleteHabit(ctx context.Context, id, userID string) error {
	if err := m.failure("DeleteHabit"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.habits {
		if m.habits[i].ID == id && m.habits[i].UserID == userID {
			m.habits = append(m.habits[:i], m.habits[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListResources lists a user's resources, most recently created first.
func (m *MemoryStore) ListResources(ctx context.Context, userID string) ([]models.Resource, error) {
	if err := m.failure("ListResources"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Resource
	for _, r := range m.resources {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddResource adds a resource.
func (m *MemoryStore) AddResource(ctx context.Context, resource *models.Resource) (*models.Resource, error) {
	if err := m.failure("AddResource"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *resource
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	m.resources = append(m.resources, stored)
	return &stored, nil
}

// AddResources adds a batch of resources.
func (m *MemoryStore) AddResources(ctx context.Context, resources []models.Resource) ([]models.Resource, error) {
	if err := m.failure("AddResources"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		stored := r
		stored.ID = uuid.NewString()
		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt
		m.resources = append(m.resources, stored)
		out = append(out, stored)
	}
	return out, nil
}

// UpdateResource applies a partial update to one resource.
func (m *MemoryStore) UpdateResource(ctx context.Context, id, userID string, update models.ResourceUpdate) (*models.Resource, error) {
	if err := m.failure("UpdateResource"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.resources {
		r := &m.resources[i]
		if r.ID != id || r.UserID != userID {
			continue
		}
		if update.Title != nil {
			r.Title = *update.Title
		}
		if update.Type != nil {
			r.Type = *update.Type
		}
		if update.Content != nil {
			r.Content = *update.Content
		}
		if update.Category != nil {
			r.Category = *update.Category
		}
		r.UpdatedAt = update.UpdatedAt
		confirmed := *r
		return &confirmed, nil
	}
	return nil, storage.ErrNotFound
}

// DeleteResource permanently deletes one resource.
func (m *MemoryStore) DeleteResource(ctx context.Context, id, userID string) error {
	if err := m.failure("DeleteResource"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.resources {
		if m.resources[i].ID == id && m.resources[i].UserID == userID {
			m.resources = append(m.resources[:i], m.resources[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
