// Package menu is the interactive text frontend of the task tracker.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"task-tracker/internal/models"
	"task-tracker/internal/repository"
	"task-tracker/internal/weather"
	"task-tracker/pkg/logger"
)

// Prompter reads one line of input after showing a prompt. *liner.State implements it.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// Tasks is the subset of the task service the menu uses.
type Tasks interface {
	Pending(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, title, description string) (models.Task, error)
	Complete(ctx context.Context, id int64) (models.Task, error)
	DeleteIncomplete(ctx context.Context) (int64, error)
	WeekdayStatistics(ctx context.Context) ([]models.WeekdayCount, error)
	CompletionTimeHistogram(ctx context.Context) (models.CompletionHistogram, error)
}

// Weather fetches the current weather for a fixed city.
type Weather interface {
	City() string
	Current(ctx context.Context) (*weather.Report, error)
}

// Menu runs the numbered options loop.
type Menu struct {
	tasks    Tasks
	weather  Weather
	in       Prompter
	out      io.Writer
	chartDir string
	barWidth int
}

// Option configures a Menu.
type Option func(*Menu)

// WithWeather enables the weather option.
func WithWeather(w Weather) Option {
	return func(m *Menu) { m.weather = w }
}

// WithChartDir sets where PDF charts are exported.
func WithChartDir(dir string) Option {
	return func(m *Menu) { m.chartDir = dir }
}

// New returns a menu reading from in and writing to out.
func New(tasks Tasks, in Prompter, out io.Writer, opts ...Option) *Menu {
	m := &Menu{tasks: tasks, in: in, out: out, chartDir: ".", barWidth: 40}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

const mainMenu = `
--- Main Menu ---
1. Show pending tasks
2. Add a new task
3. Mark a task as done
4. Delete incomplete tasks
5. Show chart of completed tasks by weekday
6. Show chart of days taken to complete tasks
7. Show current weather
8. Export charts to PDF
9. Exit
`

// Run shows the menu until the user exits. It returns an error only when input
// fails or the store becomes unusable.
func (m *Menu) Run(ctx context.Context) error {
	actions := map[string]func(context.Context) error{
		"1": m.showPending,
		"2": m.addTask,
		"3": m.markDone,
		"4": m.deleteIncomplete,
		"5": m.weekdayChart,
		"6": m.completionChart,
		"7": m.showWeather,
		"8": m.exportCharts,
	}
	for {
		fmt.Fprint(m.out, mainMenu)
		choice, err := m.in.Prompt("Choose an option (1-9): ")
		if err != nil {
			return m.inputDone(err)
		}
		choice = strings.TrimSpace(choice)
		if choice == "9" {
			fmt.Fprintln(m.out, "\nGoodbye!")
			return nil
		}
		action, ok := actions[choice]
		if !ok {
			fmt.Fprintln(m.out, "\nInvalid option. Please choose a number from 1 to 9.")
			continue
		}
		if err := action(ctx); err != nil {
			if isAbort(err) {
				return m.inputDone(err)
			}
			if fatal := m.report(ctx, err); fatal != nil {
				return fatal
			}
		}
	}
}

func isAbort(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted)
}

func (m *Menu) inputDone(err error) error {
	if isAbort(err) {
		fmt.Fprintln(m.out, "\nGoodbye!")
		return nil
	}
	return fmt.Errorf("read input: %w", err)
}

// report prints err for the user. It returns err back when the store can no
// longer be used and the loop has to stop.
func (m *Menu) report(ctx context.Context, err error) error {
	var verr *models.ValidationError
	var storageErr *repository.StorageError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(m.out, "\nError: title and description are required.")
	case errors.Is(err, repository.ErrNotFound):
		fmt.Fprintln(m.out, "\nError: that task no longer exists.")
	case errors.Is(err, repository.ErrAlreadyCompleted):
		fmt.Fprintln(m.out, "\nError: that task is already completed.")
	case errors.As(err, &storageErr):
		logger.Error(ctx, "Task store operation failed", "error", err, "op", storageErr.Op)
		if repository.IsFatal(err) {
			fmt.Fprintln(m.out, "\nFatal: the task database is unavailable.")
			return err
		}
		fmt.Fprintln(m.out, "\nError: could not access the task database. Please try again.")
	default:
		logger.Error(ctx, "Menu action failed", "error", err)
		fmt.Fprintf(m.out, "\nAn error occurred: %v\n", err)
	}
	return nil
}

func (m *Menu) printTasks(tasks []models.Task) {
	for i, t := range tasks {
		fmt.Fprintf(m.out, "%d. Title: %s\n   Description: %s\n", i+1, t.Title, t.Description)
	}
}

func (m *Menu) showPending(ctx context.Context) error {
	pending, err := m.tasks.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(m.out, "\nThere are no pending tasks.")
		return nil
	}
	fmt.Fprintln(m.out, "\nPending tasks:")
	m.printTasks(pending)
	return nil
}

func (m *Menu) addTask(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- Add a new task ---")
	title, err := m.in.Prompt("Title: ")
	if err != nil {
		return err
	}
	description, err := m.in.Prompt("Description: ")
	if err != nil {
		return err
	}
	task, err := m.tasks.Create(ctx, title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nTask added: #%d %s\n", task.ID, task.Title)
	return nil
}

func (m *Menu) markDone(ctx context.Context) error {
	fmt.Fprintln(m.out, "\n--- Mark a task as done ---")
	pending, err := m.tasks.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(m.out, "\nThere are no pending tasks to mark as done.")
		return nil
	}
	m.printTasks(pending)

	answer, err := m.in.Prompt("Number of the task to mark as done: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		fmt.Fprintln(m.out, "\nError: please enter a valid number.")
		return nil
	}
	if n < 1 || n > len(pending) {
		fmt.Fprintln(m.out, "\nError: invalid task number.")
		return nil
	}

	task, err := m.tasks.Complete(ctx, pending[n-1].ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nTask marked as done: #%d %s (%s)\n", task.ID, task.Title, daysText(task.TimeToComplete))
	return nil
}

func daysText(days *int) string {
	switch {
	case days == nil:
		return "duration unknown"
	case *days == 0:
		return "completed the same day"
	case *days == 1:
		return "took 1 day"
	default:
		return fmt.Sprintf("took %d days", *days)
	}
}

func (m *Menu) deleteIncomplete(ctx context.Context) error {
	answer, err := m.in.Prompt("\nAre you sure you want to delete all incomplete tasks? (y/n): ")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		fmt.Fprintln(m.out, "\nNo changes made.")
		return nil
	}
	n, err := m.tasks.DeleteIncomplete(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nDeleted %d incomplete task(s).\n", n)
	return nil
}

func (m *Menu) showWeather(ctx context.Context) error {
	if m.weather == nil {
		fmt.Fprintln(m.out, "\nWeather is not configured.")
		return nil
	}
	report, err := m.weather.Current(ctx)
	if err != nil {
		var statusErr *weather.StatusError
		switch {
		case errors.As(err, &statusErr):
			fmt.Fprintf(m.out, "\nCould not get the weather. Status code: %d\nDetails: %s\n", statusErr.Code, statusErr.Body)
		case errors.Is(err, weather.ErrNoAPIKey):
			fmt.Fprintln(m.out, "\nWeather is not configured: set WEATHER_API_KEY.")
		default:
			fmt.Fprintf(m.out, "\nAn error occurred: %v\n", err)
		}
		return nil
	}
	fmt.Fprintf(m.out, "\nCurrent weather in %s:\n", report.City)
	fmt.Fprintf(m.out, "Temperature: %.1f°\n", report.Temperature)
	fmt.Fprintf(m.out, "Description: %s\n", capitalize(report.Description))
	fmt.Fprintf(m.out, "Humidity: %d%%\n", report.Humidity)
	fmt.Fprintf(m.out, "Wind speed: %.1f m/s\n", report.WindSpeed)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
