package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mindhaven/mindhaven/lib/utils"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/storage"
)

// DataCache mirrors one user's rows across the seven wellness collections.
// Every mutation is write-then-confirm: the remote store is updated first and
// only the confirmed row is folded into the local mirror, so a failed remote
// call leaves the mirror exactly as it was. The cache never retries and never
// reconciles; a reload happens only when the user changes.
type DataCache struct {
	store storage.StoreInterface
	now   func() time.Time

	mu                    sync.RWMutex
	userID                string
	loading               bool
	moodEntries           []models.MoodEntry
	mindfulnessActivities []models.MindfulnessActivity
	journalEntries        []models.JournalEntry
	positiveThoughts      []models.PositiveThought
	goals                 []models.Goal
	habits                []models.Habit
	resources             []models.Resource
}

// NewDataCache creates an empty cache over the given store. It holds no rows
// until SetUser binds it to a user.
func NewDataCache(store storage.StoreInterface) *DataCache {
	return &DataCache{
		store: store,
		now:   time.Now,
	}
}

// SetUser rebinds the cache to a user and reloads every collection, or clears
// all mirrors when the id is empty. The seven loads run concurrently; a
// collection whose load fails is logged and left empty rather than failing
// the others. SetUser is how the cache follows sign-in and sign-out.
func (c *DataCache) SetUser(ctx context.Context, userID string) {
	c.mu.Lock()
	c.userID = userID
	c.clearMirrors()
	if userID == "" {
		c.loading = false
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.mu.Unlock()

	var wg sync.WaitGroup
	loads := []struct {
		name string
		run  func() error
	}{
		{"mood entries", func() error {
			rows, err := c.store.ListMoodEntries(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.moodEntries = rows
				c.mu.Unlock()
			}
			return err
		}},
		{"mindfulness activities", func() error {
			rows, err := c.store.ListMindfulnessActivities(ctx, userID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				rows, err = c.seedDefaultActivities(ctx, userID)
				if err != nil {
					return err
				}
			}
			c.mu.Lock()
			c.mindfulnessActivities = rows
			c.mu.Unlock()
			return nil
		}},
		{"journal entries", func() error {
			rows, err := c.store.ListJournalEntries(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.journalEntries = rows
				c.mu.Unlock()
			}
			return err
		}},
		{"positive thoughts", func() error {
			rows, err := c.store.ListPositiveThoughts(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.positiveThoughts = rows
				c.mu.Unlock()
			}
			return err
		}},
		{"goals", func() error {
			rows, err := c.store.ListGoals(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.goals = rows
				c.mu.Unlock()
			}
			return err
		}},
		{"habits", func() error {
			rows, err := c.store.ListHabits(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.habits = rows
				c.mu.Unlock()
			}
			return err
		}},
		{"resources", func() error {
			rows, err := c.store.ListResources(ctx, userID)
			if err == nil {
				c.mu.Lock()
				c.resources = rows
				c.mu.Unlock()
			}
			return err
		}},
	}

	for _, load := range loads {
		wg.Add(1)
		go func(name string, run func() error) {
			defer wg.Done()
			if err := run(); err != nil {
				log.Printf("error loading %s: %v", name, err)
			}
		}(load.name, load.run)
	}
	wg.Wait()

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// clearMirrors resets every collection mirror. Called with c.mu held.
func (c *DataCache) clearMirrors() {
	c.moodEntries = nil
	c.mindfulnessActivities = nil
	c.journalEntries = nil
	c.positiveThoughts = nil
	c.goals = nil
	c.habits = nil
	c.resources = nil
}

// seedDefaultActivities inserts the two starter practice sessions a brand new
// user begins with, and returns the confirmed rows.
func (c *DataCache) seedDefaultActivities(ctx context.Context, userID string) ([]models.MindfulnessActivity, error) {
	defaults := []models.MindfulnessActivity{
		{
			UserID:        userID,
			Name:          "Morning Clarity",
			Activity:      "Meditation",
			Alarm:         "05:30",
			Timer:         20,
			IsCompleted:   false,
			IsTarget:      true,
			IsRunning:     false,
			TimeRemaining: 1200,
		},
		{
			UserID:        userID,
			Name:          "Evening Peacefulness",
			Activity:      "Meditation",
			Alarm:         "18:30",
			Timer:         20,
			IsCompleted:   false,
			IsTarget:      true,
			IsRunning:     false,
			TimeRemaining: 1200,
		},
	}
	return c.store.AddMindfulnessActivities(ctx, defaults)
}

// currentUser returns the bound user id, or "" when signed out.
func (c *DataCache) currentUser() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Loading reports whether a SetUser reload is in flight.
func (c *DataCache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// AddMoodEntry records the moods for one day. The owning user id is forced to
// the bound user; without a bound user the call is a no-op.
func (c *DataCache) AddMoodEntry(ctx context.Context, entry models.MoodEntry) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	entry.UserID = userID

	confirmed, err := c.store.AddMoodEntry(ctx, &entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.moodEntries = append([]models.MoodEntry{*confirmed}, c.moodEntries...)
	c.mu.Unlock()
	return nil
}

// AddMindfulnessActivity creates a practice session. The lifecycle fields are
// forced to their initial values regardless of what the caller passed in, and
// the countdown starts full.
func (c *DataCache) AddMindfulnessActivity(ctx context.Context, activity models.MindfulnessActivity) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	activity.UserID = userID
	activity.IsCompleted = false
	activity.IsTarget = false
	activity.IsRunning = false
	activity.TimeRemaining = activity.Timer * 60

	confirmed, err := c.store.AddMindfulnessActivities(ctx, []models.MindfulnessActivity{activity})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.mindfulnessActivities = append(confirmed, c.mindfulnessActivities...)
	c.mu.Unlock()
	return nil
}

// UpdateMindfulnessActivity applies a partial update to one activity and
// folds the confirmed row into the mirror.
func (c *DataCache) UpdateMindfulnessActivity(ctx context.Context, id string, update models.MindfulnessActivityUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdateMindfulnessActivity(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.mindfulnessActivities {
		if c.mindfulnessActivities[i].ID == id {
			c.mindfulnessActivities[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// AddJournalEntry creates an undeleted journal entry.
func (c *DataCache) AddJournalEntry(ctx context.Context, entry models.JournalEntry) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	entry.UserID = userID
	entry.IsDeleted = false
	entry.DeletedDate = ""

	confirmed, err := c.store.AddJournalEntry(ctx, &entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.journalEntries = append([]models.JournalEntry{*confirmed}, c.journalEntries...)
	c.mu.Unlock()
	return nil
}

// UpdateJournalEntry applies a partial update to one journal entry.
func (c *DataCache) UpdateJournalEntry(ctx context.Context, id string, update models.EntryUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdateJournalEntry(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.journalEntries {
		if c.journalEntries[i].ID == id {
			c.journalEntries[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// DeleteJournalEntry soft-deletes a journal entry: the row stays in the
// store, flagged deleted and stamped with today's date, until the recycle
// bin is emptied.
func (c *DataCache) DeleteJournalEntry(ctx context.Context, id string) error {
	deleted := true
	today := utils.DayString(c.now())
	return c.UpdateJournalEntry(ctx, id, models.EntryUpdate{
		IsDeleted:   &deleted,
		DeletedDate: &today,
	})
}

// RestoreJournalEntry reverses a soft deletion, returning the entry to the
// exact shape it had before it was deleted.
func (c *DataCache) RestoreJournalEntry(ctx context.Context, id string) error {
	deleted := false
	return c.UpdateJournalEntry(ctx, id, models.EntryUpdate{
		IsDeleted:        &deleted,
		ClearDeletedDate: true,
	})
}

// AddPositiveThought creates an undeleted positive thought.
func (c *DataCache) AddPositiveThought(ctx context.Context, thought models.PositiveThought) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	thought.UserID = userID
	thought.IsDeleted = false
	thought.DeletedDate = ""

	confirmed, err := c.store.AddPositiveThought(ctx, &thought)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.positiveThoughts = append([]models.PositiveThought{*confirmed}, c.positiveThoughts...)
	c.mu.Unlock()
	return nil
}

// UpdatePositiveThought applies a partial update to one positive thought.
func (c *DataCache) UpdatePositiveThought(ctx context.Context, id string, update models.EntryUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdatePositiveThought(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.positiveThoughts {
		if c.positiveThoughts[i].ID == id {
			c.positiveThoughts[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// DeletePositiveThought soft-deletes a positive thought.
func (c *DataCache) DeletePositiveThought(ctx context.Context, id string) error {
	deleted := true
	today := utils.DayString(c.now())
	return c.UpdatePositiveThought(ctx, id, models.EntryUpdate{
		IsDeleted:   &deleted,
		DeletedDate: &today,
	})
}

// RestorePositiveThought reverses a soft deletion.
func (c *DataCache) RestorePositiveThought(ctx context.Context, id string) error {
	deleted := false
	return c.UpdatePositiveThought(ctx, id, models.EntryUpdate{
		IsDeleted:        &deleted,
		ClearDeletedDate: true,
	})
}

// AddGoal creates a goal. New goals always start incomplete.
func (c *DataCache) AddGoal(ctx context.Context, goal models.Goal) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	goal.UserID = userID
	goal.IsCompleted = false

	confirmed, err := c.store.AddGoal(ctx, &goal)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.goals = append([]models.Goal{*confirmed}, c.goals...)
	c.mu.Unlock()
	return nil
}

// UpdateGoal applies a partial update to one goal.
func (c *DataCache) UpdateGoal(ctx context.Context, id string, update models.GoalUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdateGoal(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.goals {
		if c.goals[i].ID == id {
			c.goals[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// DeleteGoal permanently deletes a goal. Goals have no recycle bin.
func (c *DataCache) DeleteGoal(ctx context.Context, id string) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}

	if err := c.store.DeleteGoal(ctx, id, userID); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.goals {
		if c.goals[i].ID == id {
			c.goals = append(c.goals[:i], c.goals[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// AddHabit creates a habit. New habits start incomplete with an empty
// completion history.
func (c *DataCache) AddHabit(ctx context.Context, habit models.Habit) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	habit.UserID = userID
	habit.IsCompleted = false
	habit.CompletedDates = []string{}

	confirmed, err := c.store.AddHabit(ctx, &habit)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.habits = append([]models.Habit{*confirmed}, c.habits...)
	c.mu.Unlock()
	return nil
}

// UpdateHabit applies a partial update to one habit.
func (c *DataCache) UpdateHabit(ctx context.Context, id string, update models.HabitUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdateHabit(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.habits {
		if c.habits[i].ID == id {
			c.habits[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// ToggleHabit flips a habit's completion for today. Completing adds today to
// the completion history; un-completing removes it. Past dates are never
// touched.
func (c *DataCache) ToggleHabit(ctx context.Context, id string) error {
	c.mu.RLock()
	var habit *models.Habit
	for i := range c.habits {
		if c.habits[i].ID == id {
			h := c.habits[i]
			habit = &h
			break
		}
	}
	c.mu.RUnlock()
	if habit == nil {
		return storage.ErrNotFound
	}

	today := utils.DayString(c.now())
	completed := !habit.IsCompleted
	dates := make([]string, 0, len(habit.CompletedDates)+1)
	for _, d := range habit.CompletedDates {
		if d != today {
			dates = append(dates, d)
		}
	}
	if completed {
		dates = append(dates, today)
	}

	return c.UpdateHabit(ctx, id, models.HabitUpdate{
		IsCompleted:    &completed,
		CompletedDates: &dates,
	})
}

// DeleteHabit permanently deletes a habit.
func (c *DataCache) DeleteHabit(ctx context.Context, id string) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}

	if err := c.store.DeleteHabit(ctx, id, userID); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.habits {
		if c.habits[i].ID == id {
			c.habits = append(c.habits[:i], c.habits[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// AddResource adds an item to the self-help library.
func (c *DataCache) AddResource(ctx context.Context, resource models.Resource) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	resource.UserID = userID

	confirmed, err := c.store.AddResource(ctx, &resource)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.resources = append([]models.Resource{*confirmed}, c.resources...)
	c.mu.Unlock()
	return nil
}

// UpdateResource applies a partial update to one resource.
func (c *DataCache) UpdateResource(ctx context.Context, id string, update models.ResourceUpdate) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}
	update.UpdatedAt = c.now().UTC()

	confirmed, err := c.store.UpdateResource(ctx, id, userID, update)
	if err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.resources {
		if c.resources[i].ID == id {
			c.resources[i] = *confirmed
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// DeleteResource permanently deletes a resource.
func (c *DataCache) DeleteResource(ctx context.Context, id string) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}

	if err := c.store.DeleteResource(ctx, id, userID); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.resources {
		if c.resources[i].ID == id {
			c.resources = append(c.resources[:i], c.resources[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// DeletedEntries projects the recycle bin: every soft-deleted journal entry
// followed by every soft-deleted positive thought.
func (c *DataCache) DeletedEntries() []models.BinEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var bin []models.BinEntry
	for _, e := range c.journalEntries {
		if e.IsDeleted {
			bin = append(bin, models.BinEntry{
				Kind:        models.BinKindJournal,
				ID:          e.ID,
				Title:       e.Title,
				Content:     e.Content,
				Date:        e.Date,
				DeletedDate: e.DeletedDate,
			})
		}
	}
	for _, t := range c.positiveThoughts {
		if t.IsDeleted {
			bin = append(bin, models.BinEntry{
				Kind:        models.BinKindThought,
				ID:          t.ID,
				Title:       t.Title,
				Content:     t.Content,
				Date:        t.Date,
				DeletedDate: t.DeletedDate,
			})
		}
	}
	return bin
}

// EmptyRecycleBin permanently deletes every soft-deleted journal entry and
// positive thought. The two collections are purged independently: rows leave
// the mirror only when their remote delete succeeded, so a failed purge keeps
// its rows visible in the bin. Returns the first error encountered.
func (c *DataCache) EmptyRecycleBin(ctx context.Context) error {
	userID := c.currentUser()
	if userID == "" {
		return nil
	}

	c.mu.RLock()
	var journalIDs, thoughtIDs []string
	for _, e := range c.journalEntries {
		if e.IsDeleted {
			journalIDs = append(journalIDs, e.ID)
		}
	}
	for _, t := range c.positiveThoughts {
		if t.IsDeleted {
			thoughtIDs = append(thoughtIDs, t.ID)
		}
	}
	c.mu.RUnlock()

	var firstErr error
	if len(journalIDs) > 0 {
		if err := c.store.DeleteJournalEntries(ctx, userID, journalIDs); err != nil {
			firstErr = err
		} else {
			c.mu.Lock()
			kept := c.journalEntries[:0]
			for _, e := range c.journalEntries {
				if !e.IsDeleted {
					kept = append(kept, e)
				}
			}
			c.journalEntries = kept
			c.mu.Unlock()
		}
	}
	if len(thoughtIDs) > 0 {
		if err := c.store.DeletePositiveThoughts(ctx, userID, thoughtIDs); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			c.mu.Lock()
			kept := c.positiveThoughts[:0]
			for _, t := range c.positiveThoughts {
				if !t.IsDeleted {
					kept = append(kept, t)
				}
			}
			c.positiveThoughts = kept
			c.mu.Unlock()
		}
	}
	return firstErr
}

// Tick advances every running countdown by one second. An activity whose
// remaining time runs out is completed, stopped, and reset to a full timer.
// Each activity updates independently; one failed write is logged and does
// not stop the others.
func (c *DataCache) Tick(ctx context.Context) {
	c.mu.RLock()
	var running []models.MindfulnessActivity
	for _, a := range c.mindfulnessActivities {
		if a.IsRunning {
			running = append(running, a)
		}
	}
	c.mu.RUnlock()

	for _, a := range running {
		var update models.MindfulnessActivityUpdate
		if a.TimeRemaining <= 1 {
			stopped := false
			completed := true
			full := a.Timer * 60
			update = models.MindfulnessActivityUpdate{
				IsRunning:     &stopped,
				IsCompleted:   &completed,
				TimeRemaining: &full,
			}
		} else {
			remaining := a.TimeRemaining - 1
			update = models.MindfulnessActivityUpdate{
				TimeRemaining: &remaining,
			}
		}
		if err := c.UpdateMindfulnessActivity(ctx, a.ID, update); err != nil {
			log.Printf("error ticking activity %s: %v", a.ID, err)
		}
	}
}

// MoodEntries returns a copy of the mood entry mirror.
func (c *DataCache) MoodEntries() []models.MoodEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MoodEntry(nil), c.moodEntries...)
}

// MindfulnessActivities returns a copy of the activity mirror.
func (c *DataCache) MindfulnessActivities() []models.MindfulnessActivity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.MindfulnessActivity(nil), c.mindfulnessActivities...)
}

// JournalEntries returns the journal entries not sitting in the recycle bin.
func (c *DataCache) JournalEntries() []models.JournalEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var active []models.JournalEntry
	for _, e := range c.journalEntries {
		if !e.IsDeleted {
			active = append(active, e)
		}
	}
	return active
}

// PositiveThoughts returns the positive thoughts not sitting in the recycle
// bin.
func (c *DataCache) PositiveThoughts() []models.PositiveThought {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var active []models.PositiveThought
	for _, t := range c.positiveThoughts {
		if !t.IsDeleted {
			active = append(active, t)
		}
	}
	return active
}

// Goals returns a copy of the goal mirror.
func (c *DataCache) Goals() []models.Goal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Goal(nil), c.goals...)
}

// Habits returns a copy of the habit mirror.
func (c *DataCache) Habits() []models.Habit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Habit(nil), c.habits...)
}

// Resources returns a copy of the resource mirror.
func (c *DataCache) Resources() []models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Resource(nil), c.resources...)
}
