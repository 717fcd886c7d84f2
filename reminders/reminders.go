package reminders

import (
	"fmt"
	"sort"
	"time"

	"github.com/mindhaven/mindhaven/lib/utils"
	"github.com/mindhaven/mindhaven/models"
)

// Reminder types, in descending urgency.
const (
	TypeGoalOverdue = "goal-overdue"
	TypeGoal        = "goal"
	TypeMindfulness = "mindfulness"
	TypeHabit       = "habit"
)

// Reminder is one actionable nudge derived from the user's current data. It
// is computed, never stored; the same inputs at the same instant always
// produce the same reminders.
type Reminder struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// typePriority orders reminders for display, most urgent first.
var typePriority = map[string]int{
	TypeGoalOverdue: 0,
	TypeGoal:        1,
	TypeMindfulness: 2,
	TypeHabit:       3,
}

// Build derives the reminders due at the given instant. A goal reminds when
// its deadline is within three days or already passed; a targeted,
// uncompleted mindfulness activity reminds once its alarm time has arrived;
// a habit reminds once its scheduled time has arrived and it has not been
// completed today. The result is sorted by urgency, overdue goals first.
func Build(now time.Time, goals []models.Goal, habits []models.Habit, activities []models.MindfulnessActivity) []Reminder {
	today := utils.DayString(now)
	clock := now.Format("15:04")

	var out []Reminder

	for _, g := range goals {
		if g.IsCompleted || g.Deadline == "" {
			continue
		}
		days, err := daysBetween(today, g.Deadline)
		if err != nil {
			continue
		}
		switch {
		case days < 0:
			out = append(out, Reminder{
				ID:      g.ID,
				Type:    TypeGoalOverdue,
				Title:   g.Name,
				Message: fmt.Sprintf("was due %s ago", plural(-days, "day")),
				Time:    g.Deadline,
			})
		case days <= 3:
			out = append(out, Reminder{
				ID:      g.ID,
				Type:    TypeGoal,
				Title:   g.Name,
				Message: fmt.Sprintf("due in %s", plural(days, "day")),
				Time:    g.Deadline,
			})
		}
	}

	for _, a := range activities {
		if !a.IsTarget || a.IsCompleted || a.Alarm == "" || a.Alarm > clock {
			continue
		}
		out = append(out, Reminder{
			ID:      a.ID,
			Type:    TypeMindfulness,
			Title:   a.Name,
			Message: fmt.Sprintf("time for your %s practice", a.Activity),
			Time:    a.Alarm,
		})
	}

	for _, h := range habits {
		if h.IsCompleted || h.Time == "" || h.Time > clock || containsDate(h.CompletedDates, today) {
			continue
		}
		out = append(out, Reminder{
			ID:      h.ID,
			Type:    TypeHabit,
			Title:   h.Name,
			Message: "not done yet today",
			Time:    h.Time,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return typePriority[out[i].Type] < typePriority[out[j].Type]
	})
	return out
}

// Greeting returns the salutation for the given hour of day.
func Greeting(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < 12:
		return "Good Morning"
	case hour < 17:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// daysBetween returns the number of whole calendar days from one date to
// another, negative when the target is in the past. Both arguments are
// YYYY-MM-DD strings.
func daysBetween(from, to string) (int, error) {
	a, err := time.Parse("2006-01-02", from)
	if err != nil {
		return 0, err
	}
	b, err := time.Parse("2006-01-02", to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

func containsDate(dates []string, date string) bool {
	for _, d := range dates {
		if d == date {
			return true
		}
	}
	return false
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
