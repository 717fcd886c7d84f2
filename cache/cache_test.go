package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/testfixtures"
)

var testInstant = time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)

// newTestCache builds a cache over an in-memory store, pinned to a fixed
// clock and bound to user u1.
func newTestCache(t *testing.T) (*DataCache, *testfixtures.MemoryStore, *testfixtures.Clock) {
	t.Helper()
	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(testInstant)
	c := NewDataCache(store)
	c.now = clock.Now
	c.SetUser(context.Background(), "u1")
	return c, store, clock
}

func TestSetUserSeedsDefaultActivities(t *testing.T) {
	c, store, _ := newTestCache(t)

	activities := c.MindfulnessActivities()
	if !assert.Equal(t, 2, len(activities)) {
		return
	}
	for _, a := range activities {
		assert.Equal(t, "Meditation", a.Activity)
		assert.Equal(t, 20, a.Timer)
		assert.Equal(t, 1200, a.TimeRemaining)
		assert.True(t, a.IsTarget)
		assert.False(t, a.IsCompleted)
		assert.False(t, a.IsRunning)
	}

	// Rebinding the same user does not seed again
	c.SetUser(context.Background(), "u1")
	assert.Equal(t, 2, len(c.MindfulnessActivities()))

	stored, err := store.ListMindfulnessActivities(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(stored))
}

func TestSetUserEmptyClearsMirrors(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.AddGoal(context.Background(), models.Goal{Name: "Read more", Category: models.GoalCategoryWeekly})
	assert.NoError(t, err)

	c.SetUser(context.Background(), "")

	assert.Equal(t, 0, len(c.Goals()))
	assert.Equal(t, 0, len(c.MindfulnessActivities()))
	assert.False(t, c.Loading())
}

func TestFailedLoadLeavesCollectionEmpty(t *testing.T) {
	store := testfixtures.NewMemoryStore()
	_, err := store.AddGoal(context.Background(), &models.Goal{UserID: "u1", Name: "Read more"})
	assert.NoError(t, err)
	store.FailOn["ListGoals"] = errors.New("query failed")

	c := NewDataCache(store)
	c.SetUser(context.Background(), "u1")

	assert.Equal(t, 0, len(c.Goals()), "A failed load leaves its collection empty")
	assert.Equal(t, 2, len(c.MindfulnessActivities()), "Other collections still load")
}

func TestAddMindfulnessActivityForcesLifecycle(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.AddMindfulnessActivity(context.Background(), models.MindfulnessActivity{
		Name:          "Body Scan",
		Activity:      "Relaxation",
		Alarm:         "12:00",
		Timer:         10,
		IsCompleted:   true,
		IsRunning:     true,
		TimeRemaining: 7,
	})
	assert.NoError(t, err)

	activities := c.MindfulnessActivities()
	added := activities[0]
	assert.Equal(t, "Body Scan", added.Name)
	assert.False(t, added.IsCompleted)
	assert.False(t, added.IsRunning)
	assert.Equal(t, 600, added.TimeRemaining, "The countdown starts at Timer*60 no matter what was passed")
}

func TestTickDecrementsRunningCountdowns(t *testing.T) {
	c, _, _ := newTestCache(t)

	running := true
	id := c.MindfulnessActivities()[0].ID
	err := c.UpdateMindfulnessActivity(context.Background(), id, models.MindfulnessActivityUpdate{IsRunning: &running})
	assert.NoError(t, err)

	c.Tick(context.Background())
	c.Tick(context.Background())

	for _, a := range c.MindfulnessActivities() {
		if a.ID == id {
			assert.Equal(t, 1198, a.TimeRemaining)
			assert.True(t, a.IsRunning)
		} else {
			assert.Equal(t, 1200, a.TimeRemaining, "Paused activities do not tick")
		}
	}
}

func TestTickCompletesAtZero(t *testing.T) {
	c, _, _ := newTestCache(t)

	running := true
	remaining := 1
	id := c.MindfulnessActivities()[0].ID
	err := c.UpdateMindfulnessActivity(context.Background(), id, models.MindfulnessActivityUpdate{
		IsRunning:     &running,
		TimeRemaining: &remaining,
	})
	assert.NoError(t, err)

	c.Tick(context.Background())

	for _, a := range c.MindfulnessActivities() {
		if a.ID == id {
			assert.True(t, a.IsCompleted)
			assert.False(t, a.IsRunning)
			assert.Equal(t, 1200, a.TimeRemaining, "Completion resets the countdown to a full timer")
		}
	}
}

func TestJournalSoftDeleteAndRestore(t *testing.T) {
	c, _, clock := newTestCache(t)

	err := c.AddJournalEntry(context.Background(), models.JournalEntry{
		Title:   "A day",
		Content: "It went fine.",
		Date:    "2024-02-10",
	})
	assert.NoError(t, err)
	id := c.JournalEntries()[0].ID

	err = c.DeleteJournalEntry(context.Background(), id)
	assert.NoError(t, err)

	assert.Equal(t, 0, len(c.JournalEntries()), "A deleted entry leaves the active list")
	bin := c.DeletedEntries()
	if assert.Equal(t, 1, len(bin)) {
		assert.Equal(t, models.BinKindJournal, bin[0].Kind)
		assert.Equal(t, clock.Now().Format("2006-01-02"), bin[0].DeletedDate)
	}

	err = c.RestoreJournalEntry(context.Background(), id)
	assert.NoError(t, err)

	entries := c.JournalEntries()
	if assert.Equal(t, 1, len(entries)) {
		assert.Equal(t, "A day", entries[0].Title)
		assert.Equal(t, "It went fine.", entries[0].Content)
		assert.Equal(t, "", entries[0].DeletedDate)
	}
	assert.Equal(t, 0, len(c.DeletedEntries()))
}

func TestRestoreUndeletedEntryIsStable(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.AddJournalEntry(context.Background(), models.JournalEntry{
		Title:   "A day",
		Content: "It went fine.",
		Date:    "2024-02-10",
	})
	assert.NoError(t, err)
	id := c.JournalEntries()[0].ID

	// Restoring an entry nobody deleted changes nothing.
	err = c.RestoreJournalEntry(context.Background(), id)
	assert.NoError(t, err)

	entries := c.JournalEntries()
	if assert.Equal(t, 1, len(entries)) {
		assert.False(t, entries[0].IsDeleted)
		assert.Equal(t, "", entries[0].DeletedDate)
		assert.Equal(t, "A day", entries[0].Title)
	}
	assert.Equal(t, 0, len(c.DeletedEntries()))
}

func TestDeletedEntriesOrdersJournalsFirst(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.AddPositiveThought(context.Background(), models.PositiveThought{Title: "B", Content: "b", Date: "2024-02-09"})
	assert.NoError(t, err)
	err = c.AddJournalEntry(context.Background(), models.JournalEntry{Title: "A", Content: "a", Date: "2024-02-10"})
	assert.NoError(t, err)

	assert.NoError(t, c.DeletePositiveThought(context.Background(), c.PositiveThoughts()[0].ID))
	assert.NoError(t, c.DeleteJournalEntry(context.Background(), c.JournalEntries()[0].ID))

	bin := c.DeletedEntries()
	if assert.Equal(t, 2, len(bin)) {
		assert.Equal(t, models.BinKindJournal, bin[0].Kind)
		assert.Equal(t, models.BinKindThought, bin[1].Kind)
	}
}

func TestEmptyRecycleBin(t *testing.T) {
	c, store, _ := newTestCache(t)

	err := c.AddJournalEntry(context.Background(), models.JournalEntry{Title: "keep", Content: "k", Date: "2024-02-08"})
	assert.NoError(t, err)
	err = c.AddJournalEntry(context.Background(), models.JournalEntry{Title: "drop", Content: "d", Date: "2024-02-09"})
	assert.NoError(t, err)
	err = c.AddPositiveThought(context.Background(), models.PositiveThought{Title: "gone", Content: "g", Date: "2024-02-09"})
	assert.NoError(t, err)

	for _, e := range c.JournalEntries() {
		if e.Title == "drop" {
			assert.NoError(t, c.DeleteJournalEntry(context.Background(), e.ID))
		}
	}
	assert.NoError(t, c.DeletePositiveThought(context.Background(), c.PositiveThoughts()[0].ID))

	err = c.EmptyRecycleBin(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 0, len(c.DeletedEntries()))
	entries := c.JournalEntries()
	if assert.Equal(t, 1, len(entries)) {
		assert.Equal(t, "keep", entries[0].Title, "Undeleted rows survive the purge")
	}

	stored, err := store.ListJournalEntries(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(stored))
}

func TestEmptyRecycleBinPartialFailure(t *testing.T) {
	c, store, _ := newTestCache(t)

	err := c.AddJournalEntry(context.Background(), models.JournalEntry{Title: "j", Content: "j", Date: "2024-02-09"})
	assert.NoError(t, err)
	err = c.AddPositiveThought(context.Background(), models.PositiveThought{Title: "t", Content: "t", Date: "2024-02-09"})
	assert.NoError(t, err)
	assert.NoError(t, c.DeleteJournalEntry(context.Background(), c.JournalEntries()[0].ID))
	assert.NoError(t, c.DeletePositiveThought(context.Background(), c.PositiveThoughts()[0].ID))

	store.FailOn["DeletePositiveThoughts"] = errors.New("purge failed")

	err = c.EmptyRecycleBin(context.Background())
	assert.Error(t, err)

	// The journal purge landed; the thought is still in the bin
	bin := c.DeletedEntries()
	if assert.Equal(t, 1, len(bin)) {
		assert.Equal(t, models.BinKindThought, bin[0].Kind)
	}
}

func TestAddGoalForcesIncomplete(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.AddGoal(context.Background(), models.Goal{
		Name:        "Meditate daily",
		Category:    models.GoalCategoryDaily,
		IsCompleted: true,
	})
	assert.NoError(t, err)

	goals := c.Goals()
	if assert.Equal(t, 1, len(goals)) {
		assert.False(t, goals[0].IsCompleted, "New goals always start incomplete")
		assert.NotEmpty(t, goals[0].ID)
	}
}

func TestNewestRowIsFirst(t *testing.T) {
	c, _, _ := newTestCache(t)

	assert.NoError(t, c.AddGoal(context.Background(), models.Goal{Name: "older", Category: models.GoalCategoryDaily}))
	assert.NoError(t, c.AddGoal(context.Background(), models.Goal{Name: "newer", Category: models.GoalCategoryDaily}))

	goals := c.Goals()
	if assert.Equal(t, 2, len(goals)) {
		assert.Equal(t, "newer", goals[0].Name)
	}
}

func TestToggleHabit(t *testing.T) {
	c, _, clock := newTestCache(t)
	today := clock.Now().Format("2006-01-02")

	err := c.AddHabit(context.Background(), models.Habit{Name: "Morning walk", Time: "07:00"})
	assert.NoError(t, err)
	id := c.Habits()[0].ID

	assert.NoError(t, c.ToggleHabit(context.Background(), id))
	habit := c.Habits()[0]
	assert.True(t, habit.IsCompleted)
	assert.Equal(t, []string{today}, habit.CompletedDates)

	assert.NoError(t, c.ToggleHabit(context.Background(), id))
	habit = c.Habits()[0]
	assert.False(t, habit.IsCompleted)
	assert.Equal(t, 0, len(habit.CompletedDates), "Un-completing removes today's date")
}

func TestMutationFailureLeavesMirror(t *testing.T) {
	c, store, _ := newTestCache(t)

	assert.NoError(t, c.AddGoal(context.Background(), models.Goal{Name: "Read more", Category: models.GoalCategoryWeekly}))
	id := c.Goals()[0].ID

	store.FailOn["UpdateGoal"] = errors.New("write failed")
	completed := true
	err := c.UpdateGoal(context.Background(), id, models.GoalUpdate{IsCompleted: &completed})
	assert.Error(t, err)
	assert.False(t, c.Goals()[0].IsCompleted, "A failed write never reaches the mirror")

	store.FailOn["AddGoal"] = errors.New("write failed")
	err = c.AddGoal(context.Background(), models.Goal{Name: "Another", Category: models.GoalCategoryDaily})
	assert.Error(t, err)
	assert.Equal(t, 1, len(c.Goals()))
}

func TestNoUserMutationsAreNoOps(t *testing.T) {
	store := testfixtures.NewMemoryStore()
	c := NewDataCache(store)

	err := c.AddGoal(context.Background(), models.Goal{Name: "Read more", Category: models.GoalCategoryDaily})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(c.Goals()))

	stored, err := store.ListGoals(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(stored))
}
