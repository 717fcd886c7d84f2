package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	ishell "github.com/abiosoft/ishell"
	"github.com/common-nighthawk/go-figure"

	"github.com/mindhaven/mindhaven/cache"
	"github.com/mindhaven/mindhaven/lib/utils"
	"github.com/mindhaven/mindhaven/models"
	"github.com/mindhaven/mindhaven/reminders"
	"github.com/mindhaven/mindhaven/session"
)

// guestCommands holds the commands available before sign-in.
var guestCommands []Command

// userCommands holds the commands available only to a signed in user.
var userCommands []Command

// commonCommands holds the commands available regardless of login state.
var commonCommands []Command

// shell is the interactive shell instance the commands are mounted on.
var shell *ishell.Shell

// bootstrap and data are the wired app services the commands act on.
var bootstrap *session.Bootstrap
var data *cache.DataCache

// The Command struct defines one shell command: its Name, a short Desc, and
// the Func run when it is invoked.
type Command struct {
	Name string
	Desc string
	Func func(c *ishell.Context)
}

// promptNonEmpty reads a line until the user enters something.
func promptNonEmpty(c *ishell.Context, label string) string {
	for {
		c.Print(label + ": ")
		value := strings.TrimSpace(c.ReadLine())
		if value != "" {
			return value
		}
		c.Println(label + " cannot be empty.")
	}
}

// promptLine reads a line that may be empty.
func promptLine(c *ishell.Context, label string) string {
	c.Print(label + ": ")
	return strings.TrimSpace(c.ReadLine())
}

// chooseIndex lists nothing itself; the caller prints the options first.
// Reads a 1-based index until the answer is in range, or returns -1 on an
// empty line.
func chooseIndex(c *ishell.Context, count int) int {
	for {
		c.Print("Number (or blank to cancel): ")
		line := strings.TrimSpace(c.ReadLine())
		if line == "" {
			return -1
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= count {
			return n - 1
		}
		c.Printf("Please enter a number between 1 and %d.\n", count)
	}
}

// swapToUser replaces the guest commands with the user commands.
func swapToUser() {
	for _, command := range guestCommands {
		shell.DeleteCmd(command.Name)
	}
	addCommands(shell, userCommands)
}

// swapToGuest replaces the user commands with the guest commands.
func swapToGuest() {
	for _, command := range userCommands {
		shell.DeleteCmd(command.Name)
	}
	addCommands(shell, guestCommands)
}

// promptProfile walks the user through their profile fields and saves them.
func promptProfile(c *ishell.Context, ctx context.Context) {
	profile := models.Profile{
		Name:        promptNonEmpty(c, "Enter Name"),
		DateOfBirth: promptLine(c, "Enter Date of Birth (YYYY-MM-DD, optional)"),
		Country:     promptLine(c, "Enter Country (optional)"),
		Language:    promptLine(c, "Enter Language (optional)"),
		Timezone:    promptLine(c, "Enter Timezone (optional)"),
	}
	if err := bootstrap.UpdateProfile(ctx, profile); err != nil {
		utils.PrintError(err.Error())
		return
	}
	c.Println("Profile saved.")
}

// afterSignIn drives the post-authentication screens: profile setup for a
// first-time user, then the greeting.
func afterSignIn(c *ishell.Context) {
	ctx := context.Background()

	if bootstrap.Resolve() == session.ViewProfileSetup {
		c.Println("Let's set up your profile first.")
		promptProfile(c, ctx)
	}

	if bootstrap.Resolve() == session.ViewGreeting {
		name := ""
		if p := bootstrap.Profile(); p != nil {
			name = p.Name
		}
		if name != "" {
			c.Printf("%s, %s!\n", reminders.Greeting(time.Now()), name)
		} else {
			c.Printf("%s!\n", reminders.Greeting(time.Now()))
		}
		bootstrap.CompleteGreeting()
	}

	swapToUser()
}

// InitCommands wires the shell commands to the app services and defines the
// guest, user, and common command sets.
func InitCommands(b *session.Bootstrap, d *cache.DataCache) {

	bootstrap = b
	data = d
	shell = ishell.New()

	guestCommands = []Command{
		{
			Name: "signin",
			Desc: "Sign in to your account",
			Func: func(c *ishell.Context) {
				var email, password string
				for {
					c.Print("Enter Email: ")
					email = c.ReadLine()

					if utils.ValidateEmail(email) {
						break
					}
					c.Println("Email is not valid.")
				}

				for {
					c.Print("Enter Password: ")
					password = c.ReadPassword()

					if len(password) > 0 {
						break
					}
					c.Println("Password cannot be empty.")
				}

				bootstrap.SetShowAuth(true)
				if err := bootstrap.Login(context.Background(), email, password); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Welcome, you are now signed in.")
				afterSignIn(c)
			},
		},
		{
			Name: "signup",
			Desc: "Sign up for a new account",
			Func: func(c *ishell.Context) {
				var email, password string
				for {
					c.Print("Enter Email: ")
					email = c.ReadLine()

					if utils.ValidateEmail(email) {
						break
					}
					c.Println("Email is not valid.")
				}

				for {
					c.Print("Enter Password: ")
					password = c.ReadPassword()

					if utils.ValidatePassword(password) {
						c.Print("Confirm Password: ")
						confirmPassword := c.ReadPassword()

						if password == confirmPassword {
							break
						}
						c.Println()
						c.Println("Passwords do not match. Please try again.")
						c.Println()
					} else {
						c.Println()
						c.Println("Password must be at least 8 characters and contain both letters and numbers.")
						c.Println()
					}
				}

				bootstrap.SetShowAuth(true)
				if err := bootstrap.Signup(context.Background(), email, password); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Account created successfully. You are now signed in.")
				afterSignIn(c)
			},
		},
	}

	userCommands = []Command{
		{
			Name: "mood",
			Desc: "Log today's moods",
			Func: func(c *ishell.Context) {
				moods := make(map[string]int)
				c.Println("Enter moods one per line; blank name to finish.")
				for {
					name := promptLine(c, "Mood")
					if name == "" {
						break
					}
					for {
						c.Print("Rating (1-7): ")
						rating, err := strconv.Atoi(strings.TrimSpace(c.ReadLine()))
						if err == nil && rating >= 1 && rating <= 7 {
							moods[name] = rating
							break
						}
						c.Println("Rating must be a number between 1 and 7.")
					}
				}
				if len(moods) == 0 {
					return
				}
				entry := models.MoodEntry{
					Date:  utils.DayString(time.Now()),
					Moods: moods,
				}
				if err := data.AddMoodEntry(context.Background(), entry); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Mood entry saved.")
			},
		},
		{
			Name: "moods",
			Desc: "List your recent mood entries",
			Func: func(c *ishell.Context) {
				entries := data.MoodEntries()
				if len(entries) == 0 {
					c.Println("No mood entries yet.")
					return
				}
				for _, e := range entries {
					c.Printf("%s:", e.Date)
					for name, rating := range e.Moods {
						c.Printf(" %s=%d", name, rating)
					}
					c.Println()
				}
			},
		},
		{
			Name: "mindfulness",
			Desc: "List your mindfulness activities",
			Func: func(c *ishell.Context) {
				activities := data.MindfulnessActivities()
				if len(activities) == 0 {
					c.Println("No mindfulness activities yet.")
					return
				}
				for i, a := range activities {
					status := " "
					if a.IsCompleted {
						status = "x"
					}
					running := ""
					if a.IsRunning {
						running = fmt.Sprintf(" (running, %ds left)", a.TimeRemaining)
					}
					c.Printf("%d. [%s] %s -- %s at %s, %d min%s\n", i+1, status, a.Name, a.Activity, a.Alarm, a.Timer, running)
				}
			},
		},
		{
			Name: "addmindfulness",
			Desc: "Add a mindfulness activity",
			Func: func(c *ishell.Context) {
				activity := models.MindfulnessActivity{
					Name:     promptNonEmpty(c, "Enter Name"),
					Activity: promptNonEmpty(c, "Enter Activity (e.g. Meditation)"),
					Alarm:    promptNonEmpty(c, "Enter Alarm time (HH:MM)"),
				}
				for {
					c.Print("Timer (minutes): ")
					timer, err := strconv.Atoi(strings.TrimSpace(c.ReadLine()))
					if err == nil && timer > 0 {
						activity.Timer = timer
						break
					}
					c.Println("Timer must be a positive number of minutes.")
				}
				if err := data.AddMindfulnessActivity(context.Background(), activity); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Activity added.")
			},
		},
		{
			Name: "startsession",
			Desc: "Start a mindfulness countdown",
			Func: func(c *ishell.Context) {
				activities := data.MindfulnessActivities()
				if len(activities) == 0 {
					c.Println("No mindfulness activities yet.")
					return
				}
				for i, a := range activities {
					c.Printf("%d. %s (%ds left)\n", i+1, a.Name, a.TimeRemaining)
				}
				i := chooseIndex(c, len(activities))
				if i < 0 {
					return
				}
				running := true
				err := data.UpdateMindfulnessActivity(context.Background(), activities[i].ID, models.MindfulnessActivityUpdate{IsRunning: &running})
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Countdown started.")
			},
		},
		{
			Name: "stopsession",
			Desc: "Pause a running mindfulness countdown",
			Func: func(c *ishell.Context) {
				activities := data.MindfulnessActivities()
				var running []models.MindfulnessActivity
				for _, a := range activities {
					if a.IsRunning {
						running = append(running, a)
					}
				}
				if len(running) == 0 {
					c.Println("Nothing is running.")
					return
				}
				for i, a := range running {
					c.Printf("%d. %s (%ds left)\n", i+1, a.Name, a.TimeRemaining)
				}
				i := chooseIndex(c, len(running))
				if i < 0 {
					return
				}
				stopped := false
				err := data.UpdateMindfulnessActivity(context.Background(), running[i].ID, models.MindfulnessActivityUpdate{IsRunning: &stopped})
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Countdown paused.")
			},
		},
		{
			Name: "journal",
			Desc: "List your journal entries",
			Func: func(c *ishell.Context) {
				entries := data.JournalEntries()
				if len(entries) == 0 {
					c.Println("No journal entries yet.")
					return
				}
				for i, e := range entries {
					c.Printf("%d. %s -- %s\n", i+1, e.Date, e.Title)
				}
			},
		},
		{
			Name: "addjournal",
			Desc: "Write a journal entry",
			Func: func(c *ishell.Context) {
				entry := models.JournalEntry{
					Title:   promptNonEmpty(c, "Enter Title"),
					Content: promptNonEmpty(c, "Enter Content"),
					Date:    utils.DayString(time.Now()),
				}
				if err := data.AddJournalEntry(context.Background(), entry); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Journal entry saved.")
			},
		},
		{
			Name: "deletejournal",
			Desc: "Move a journal entry to the recycle bin",
			Func: func(c *ishell.Context) {
				entries := data.JournalEntries()
				if len(entries) == 0 {
					c.Println("No journal entries yet.")
					return
				}
				for i, e := range entries {
					c.Printf("%d. %s -- %s\n", i+1, e.Date, e.Title)
				}
				i := chooseIndex(c, len(entries))
				if i < 0 {
					return
				}
				if err := data.DeleteJournalEntry(context.Background(), entries[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Moved to the recycle bin.")
			},
		},
		{
			Name: "thoughts",
			Desc: "List your positive thoughts",
			Func: func(c *ishell.Context) {
				thoughts := data.PositiveThoughts()
				if len(thoughts) == 0 {
					c.Println("No positive thoughts yet.")
					return
				}
				for i, t := range thoughts {
					c.Printf("%d. %s -- %s\n", i+1, t.Date, t.Title)
				}
			},
		},
		{
			Name: "addthought",
			Desc: "Record a positive thought",
			Func: func(c *ishell.Context) {
				thought := models.PositiveThought{
					Title:   promptNonEmpty(c, "Enter Title"),
					Content: promptNonEmpty(c, "Enter Content"),
					Date:    utils.DayString(time.Now()),
				}
				if err := data.AddPositiveThought(context.Background(), thought); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Positive thought saved.")
			},
		},
		{
			Name: "deletethought",
			Desc: "Move a positive thought to the recycle bin",
			Func: func(c *ishell.Context) {
				thoughts := data.PositiveThoughts()
				if len(thoughts) == 0 {
					c.Println("No positive thoughts yet.")
					return
				}
				for i, t := range thoughts {
					c.Printf("%d. %s -- %s\n", i+1, t.Date, t.Title)
				}
				i := chooseIndex(c, len(thoughts))
				if i < 0 {
					return
				}
				if err := data.DeletePositiveThought(context.Background(), thoughts[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Moved to the recycle bin.")
			},
		},
		{
			Name: "goals",
			Desc: "List your goals",
			Func: func(c *ishell.Context) {
				goals := data.Goals()
				if len(goals) == 0 {
					c.Println("No goals yet.")
					return
				}
				for i, g := range goals {
					status := " "
					if g.IsCompleted {
						status = "x"
					}
					deadline := ""
					if g.Deadline != "" {
						deadline = " (due " + g.Deadline + ")"
					}
					c.Printf("%d. [%s] %s -- %s%s\n", i+1, status, g.Name, g.Category, deadline)
				}
			},
		},
		{
			Name: "addgoal",
			Desc: "Add a goal",
			Func: func(c *ishell.Context) {
				goal := models.Goal{
					Name:       promptNonEmpty(c, "Enter Goal"),
					RecordDate: utils.DayString(time.Now()),
				}
				for {
					category := promptNonEmpty(c, "Enter Category (Daily/Weekly/Monthly/Yearly)")
					switch category {
					case models.GoalCategoryDaily, models.GoalCategoryWeekly, models.GoalCategoryMonthly, models.GoalCategoryYearly:
						goal.Category = category
					default:
						c.Println("Category must be one of Daily, Weekly, Monthly, Yearly.")
						continue
					}
					break
				}
				goal.Deadline = promptLine(c, "Enter Deadline (YYYY-MM-DD, optional)")
				if err := data.AddGoal(context.Background(), goal); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Goal added.")
			},
		},
		{
			Name: "completegoal",
			Desc: "Toggle a goal's completion",
			Func: func(c *ishell.Context) {
				goals := data.Goals()
				if len(goals) == 0 {
					c.Println("No goals yet.")
					return
				}
				for i, g := range goals {
					status := " "
					if g.IsCompleted {
						status = "x"
					}
					c.Printf("%d. [%s] %s\n", i+1, status, g.Name)
				}
				i := chooseIndex(c, len(goals))
				if i < 0 {
					return
				}
				completed := !goals[i].IsCompleted
				err := data.UpdateGoal(context.Background(), goals[i].ID, models.GoalUpdate{IsCompleted: &completed})
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Goal updated.")
			},
		},
		{
			Name: "deletegoal",
			Desc: "Delete a goal",
			Func: func(c *ishell.Context) {
				goals := data.Goals()
				if len(goals) == 0 {
					c.Println("No goals yet.")
					return
				}
				for i, g := range goals {
					c.Printf("%d. %s\n", i+1, g.Name)
				}
				i := chooseIndex(c, len(goals))
				if i < 0 {
					return
				}
				if err := data.DeleteGoal(context.Background(), goals[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Goal deleted.")
			},
		},
		{
			Name: "habits",
			Desc: "List your habits",
			Func: func(c *ishell.Context) {
				habits := data.Habits()
				if len(habits) == 0 {
					c.Println("No habits yet.")
					return
				}
				for i, h := range habits {
					status := " "
					if h.IsCompleted {
						status = "x"
					}
					c.Printf("%d. [%s] %s at %s (%d days completed)\n", i+1, status, h.Name, h.Time, len(h.CompletedDates))
				}
			},
		},
		{
			Name: "addhabit",
			Desc: "Add a daily habit",
			Func: func(c *ishell.Context) {
				habit := models.Habit{
					Name: promptNonEmpty(c, "Enter Habit"),
					Time: promptNonEmpty(c, "Enter Time (HH:MM)"),
				}
				if err := data.AddHabit(context.Background(), habit); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Habit added.")
			},
		},
		{
			Name: "togglehabit",
			Desc: "Toggle a habit's completion for today",
			Func: func(c *ishell.Context) {
				habits := data.Habits()
				if len(habits) == 0 {
					c.Println("No habits yet.")
					return
				}
				for i, h := range habits {
					status := " "
					if h.IsCompleted {
						status = "x"
					}
					c.Printf("%d. [%s] %s\n", i+1, status, h.Name)
				}
				i := chooseIndex(c, len(habits))
				if i < 0 {
					return
				}
				if err := data.ToggleHabit(context.Background(), habits[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Habit updated.")
			},
		},
		{
			Name: "deletehabit",
			Desc: "Delete a habit",
			Func: func(c *ishell.Context) {
				habits := data.Habits()
				if len(habits) == 0 {
					c.Println("No habits yet.")
					return
				}
				for i, h := range habits {
					c.Printf("%d. %s\n", i+1, h.Name)
				}
				i := chooseIndex(c, len(habits))
				if i < 0 {
					return
				}
				if err := data.DeleteHabit(context.Background(), habits[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Habit deleted.")
			},
		},
		{
			Name: "resources",
			Desc: "List your self-help resources",
			Func: func(c *ishell.Context) {
				resources := data.Resources()
				if len(resources) == 0 {
					c.Println("No resources yet.")
					return
				}
				for i, r := range resources {
					c.Printf("%d. [%s] %s: %s\n", i+1, r.Category, r.Title, r.Content)
				}
			},
		},
		{
			Name: "addresource",
			Desc: "Add a self-help resource",
			Func: func(c *ishell.Context) {
				resource := models.Resource{
					Title:    promptNonEmpty(c, "Enter Title"),
					Type:     promptNonEmpty(c, "Enter Type (link/text/image/document)"),
					Content:  promptNonEmpty(c, "Enter Content"),
					Category: promptNonEmpty(c, "Enter Category (healthcare/emergency/music/hobbies)"),
				}
				if err := data.AddResource(context.Background(), resource); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Resource added.")
			},
		},
		{
			Name: "deleteresource",
			Desc: "Delete a self-help resource",
			Func: func(c *ishell.Context) {
				resources := data.Resources()
				if len(resources) == 0 {
					c.Println("No resources yet.")
					return
				}
				for i, r := range resources {
					c.Printf("%d. %s\n", i+1, r.Title)
				}
				i := chooseIndex(c, len(resources))
				if i < 0 {
					return
				}
				if err := data.DeleteResource(context.Background(), resources[i].ID); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Resource deleted.")
			},
		},
		{
			Name: "bin",
			Desc: "List the recycle bin",
			Func: func(c *ishell.Context) {
				entries := data.DeletedEntries()
				if len(entries) == 0 {
					c.Println("The recycle bin is empty.")
					return
				}
				for i, e := range entries {
					c.Printf("%d. [%s] %s -- deleted %s\n", i+1, e.Kind, e.Title, e.DeletedDate)
				}
			},
		},
		{
			Name: "restore",
			Desc: "Restore an entry from the recycle bin",
			Func: func(c *ishell.Context) {
				entries := data.DeletedEntries()
				if len(entries) == 0 {
					c.Println("The recycle bin is empty.")
					return
				}
				for i, e := range entries {
					c.Printf("%d. [%s] %s -- deleted %s\n", i+1, e.Kind, e.Title, e.DeletedDate)
				}
				i := chooseIndex(c, len(entries))
				if i < 0 {
					return
				}
				var err error
				if entries[i].Kind == models.BinKindJournal {
					err = data.RestoreJournalEntry(context.Background(), entries[i].ID)
				} else {
					err = data.RestorePositiveThought(context.Background(), entries[i].ID)
				}
				if err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Entry restored.")
			},
		},
		{
			Name: "emptybin",
			Desc: "Permanently delete everything in the recycle bin",
			Func: func(c *ishell.Context) {
				for {
					c.Print("Permanently delete everything in the bin? (yes/no): ")
					response := strings.ToLower(c.ReadLine())
					if response == "no" {
						return
					}
					if response == "yes" {
						break
					}
					c.Println("Invalid response. Please type 'yes' or 'no'.")
				}
				if err := data.EmptyRecycleBin(context.Background()); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Recycle bin emptied.")
			},
		},
		{
			Name: "reminders",
			Desc: "Show what needs your attention now",
			Func: func(c *ishell.Context) {
				due := reminders.Build(time.Now(), data.Goals(), data.Habits(), data.MindfulnessActivities())
				if len(due) == 0 {
					c.Println("Nothing needs your attention right now.")
					return
				}
				for _, r := range due {
					c.Printf("- %s: %s\n", r.Title, r.Message)
				}
			},
		},
		{
			Name: "profile",
			Desc: "View or update your profile",
			Func: func(c *ishell.Context) {
				if p := bootstrap.Profile(); p != nil {
					c.Printf("Name: %s\n", p.Name)
					if p.DateOfBirth != "" {
						c.Printf("Date of Birth: %s\n", p.DateOfBirth)
					}
					if p.Country != "" {
						c.Printf("Country: %s\n", p.Country)
					}
					if p.Language != "" {
						c.Printf("Language: %s\n", p.Language)
					}
					if p.Timezone != "" {
						c.Printf("Timezone: %s\n", p.Timezone)
					}
				}
				for {
					c.Print("Update your profile? (yes/no): ")
					response := strings.ToLower(c.ReadLine())
					if response == "no" {
						return
					}
					if response == "yes" {
						break
					}
					c.Println("Invalid response. Please type 'yes' or 'no'.")
				}
				promptProfile(c, context.Background())
				bootstrap.CompleteGreeting()
			},
		},
		{
			Name: "password",
			Desc: "Change your password",
			Func: func(c *ishell.Context) {
				var newPassword string
				for {
					c.Print("Enter New Password: ")
					newPassword = c.ReadPassword()

					if utils.ValidatePassword(newPassword) {
						c.Print("Confirm New Password: ")
						confirmPassword := c.ReadPassword()

						if newPassword == confirmPassword {
							break
						}
						c.Println()
						c.Println("Passwords do not match. Please try again.")
						c.Println()
					} else {
						c.Println()
						c.Println("Password must be at least 8 characters and contain both letters and numbers.")
						c.Println()
					}
				}
				if err := bootstrap.ChangePassword(context.Background(), newPassword); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("Password updated.")
			},
		},
		{
			Name: "signout",
			Desc: "Sign out from your account",
			Func: func(c *ishell.Context) {
				if err := bootstrap.Logout(context.Background()); err != nil {
					utils.PrintError(err.Error())
					return
				}
				c.Println("You are now signed out.")
				swapToGuest()
			},
		},
	}

	commonCommands = []Command{
		{
			Name: "exit",
			Desc: "Exit the application",
			Func: func(c *ishell.Context) {
				fmt.Println("Take care!")
				os.Exit(0)
			},
		},
	}

	// The help command is created separately to avoid the cyclic dependency
	commonCommands = append(commonCommands, Command{
		Name: "help",
		Desc: "List available commands",
		Func: func(c *ishell.Context) {
			c.Println("Available commands:")
			if bootstrap.User() != nil {
				for _, command := range userCommands {
					c.Println("  |-- '" + command.Name + "' : " + command.Desc)
				}
			} else {
				for _, command := range guestCommands {
					c.Println("  |-- '" + command.Name + "' : " + command.Desc)
				}
			}
			for _, command := range commonCommands {
				c.Println("  |-- '" + command.Name + "' : " + command.Desc)
			}
			c.Println()
		},
	})
}

// addCommands mounts the given commands on the shell.
func addCommands(shell *ishell.Shell, commands []Command) {
	for _, command := range commands {
		shell.AddCmd(&ishell.Cmd{
			Name: command.Name,
			Help: "Command: " + command.Name,
			Func: command.Func,
		})
	}
}

// Execute prints the banner, mounts the command set matching the resolved
// view, and runs the shell.
func Execute() {
	shell.Println()
	figure.NewFigure("MindHaven", "basic", true).Print()
	shell.Println("Welcome to MindHaven -- your personal wellness companion. Type 'help' to see a list of commands.")

	addCommands(shell, commonCommands)
	if bootstrap.User() != nil {
		addCommands(shell, userCommands)
	} else {
		addCommands(shell, guestCommands)
	}

	shell.Run()
}
