package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/mindhaven/models"
)

// 2024-02-10 is the pinned "today" for these tests; 10:00 is the pinned
// clock.
var now = time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC)

func TestGoalReminders(t *testing.T) {
	goals := []models.Goal{
		{ID: "g1", Name: "Overdue", Deadline: "2024-02-08"},
		{ID: "g2", Name: "Due soon", Deadline: "2024-02-12"},
		{ID: "g3", Name: "Far off", Deadline: "2024-02-20"},
		{ID: "g4", Name: "Done", Deadline: "2024-02-08", IsCompleted: true},
		{ID: "g5", Name: "No deadline"},
	}

	out := Build(now, goals, nil, nil)

	if !assert.Equal(t, 2, len(out)) {
		return
	}
	assert.Equal(t, TypeGoalOverdue, out[0].Type)
	assert.Equal(t, "g1", out[0].ID)
	assert.Equal(t, "was due 2 days ago", out[0].Message)

	assert.Equal(t, TypeGoal, out[1].Type)
	assert.Equal(t, "g2", out[1].ID)
	assert.Equal(t, "due in 2 days", out[1].Message)
}

func TestGoalDueTodaySingular(t *testing.T) {
	out := Build(now, []models.Goal{
		{ID: "g1", Name: "Tomorrow", Deadline: "2024-02-11"},
		{ID: "g2", Name: "Yesterday", Deadline: "2024-02-09"},
	}, nil, nil)

	if !assert.Equal(t, 2, len(out)) {
		return
	}
	assert.Equal(t, "was due 1 day ago", out[0].Message)
	assert.Equal(t, "due in 1 day", out[1].Message)
}

func TestMindfulnessReminders(t *testing.T) {
	activities := []models.MindfulnessActivity{
		{ID: "a1", Name: "Morning Clarity", Activity: "Meditation", Alarm: "05:30", IsTarget: true},
		{ID: "a2", Name: "Evening Peacefulness", Activity: "Meditation", Alarm: "18:30", IsTarget: true},
		{ID: "a3", Name: "Done already", Activity: "Meditation", Alarm: "05:30", IsTarget: true, IsCompleted: true},
		{ID: "a4", Name: "Not a target", Activity: "Meditation", Alarm: "05:30"},
	}

	out := Build(now, nil, nil, activities)

	if !assert.Equal(t, 1, len(out)) {
		return
	}
	assert.Equal(t, "a1", out[0].ID, "Only an uncompleted target whose alarm has passed reminds")
	assert.Equal(t, TypeMindfulness, out[0].Type)
}

func TestHabitReminders(t *testing.T) {
	today := "2024-02-10"
	habits := []models.Habit{
		{ID: "h1", Name: "Morning walk", Time: "07:00"},
		{ID: "h2", Name: "Evening stretch", Time: "20:00"},
		{ID: "h3", Name: "Journal", Time: "07:00", CompletedDates: []string{today}},
		{ID: "h4", Name: "Flagged done", Time: "07:00", IsCompleted: true},
	}

	out := Build(now, nil, habits, nil)

	if !assert.Equal(t, 1, len(out)) {
		return
	}
	assert.Equal(t, "h1", out[0].ID)
	assert.Equal(t, TypeHabit, out[0].Type)
}

func TestRemindersSortedByUrgency(t *testing.T) {
	out := Build(now,
		[]models.Goal{
			{ID: "g2", Name: "Due soon", Deadline: "2024-02-12"},
			{ID: "g1", Name: "Overdue", Deadline: "2024-02-08"},
		},
		[]models.Habit{
			{ID: "h1", Name: "Morning walk", Time: "07:00"},
		},
		[]models.MindfulnessActivity{
			{ID: "a1", Name: "Morning Clarity", Activity: "Meditation", Alarm: "05:30", IsTarget: true},
		},
	)

	if !assert.Equal(t, 4, len(out)) {
		return
	}
	assert.Equal(t, TypeGoalOverdue, out[0].Type)
	assert.Equal(t, TypeGoal, out[1].Type)
	assert.Equal(t, TypeMindfulness, out[2].Type)
	assert.Equal(t, TypeHabit, out[3].Type)
}

func TestBuildEmptyInputs(t *testing.T) {
	assert.Equal(t, 0, len(Build(now, nil, nil, nil)))
}

func TestGreeting(t *testing.T) {
	day := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Good Morning", Greeting(day.Add(8*time.Hour)))
	assert.Equal(t, "Good Morning", Greeting(day.Add(11*time.Hour)))
	assert.Equal(t, "Good Afternoon", Greeting(day.Add(12*time.Hour)))
	assert.Equal(t, "Good Afternoon", Greeting(day.Add(16*time.Hour)))
	assert.Equal(t, "Good Evening", Greeting(day.Add(17*time.Hour)))
	assert.Equal(t, "Good Evening", Greeting(day.Add(23*time.Hour)))
}
